package controller

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	lookups *prometheus.CounterVec
	fetches *prometheus.CounterVec
	writes  *prometheus.CounterVec
}

// newMetrics registers the controller's counters with reg. A nil reg keeps
// the counters unregistered. Counters already registered by an earlier
// controller are reused.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "player_cache_lookups_total",
		Help: "Player list cache reads by list and result (hit, miss, error).",
	}, []string{"list", "result"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "player_upstream_fetches_total",
		Help: "Player list loads from the stats feed by list and result.",
	}, []string{"list", "result"})
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "player_cache_writes_total",
		Help: "Background player list cache writes by list and result.",
	}, []string{"list", "result"})

	if reg == nil {
		return &metrics{lookups: lookups, fetches: fetches, writes: writes}, nil
	}

	var err error
	m := &metrics{}
	if m.lookups, err = register(reg, lookups); err != nil {
		return nil, err
	}
	if m.fetches, err = register(reg, fetches); err != nil {
		return nil, err
	}
	if m.writes, err = register(reg, writes); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, err
}
