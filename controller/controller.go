package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mww/stats_proxy/cache"
	"github.com/mww/stats_proxy/config"
	"github.com/mww/stats_proxy/model"
	"github.com/mww/stats_proxy/upstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// How long a background cache write may take before it is abandoned.
const cacheWriteTimeout = 10 * time.Second

// C looks up players from the cached player lists, loading a list from the
// stats feed when it is not cached. Lookups never fail: any problem loading a
// list is logged and the lookup behaves as if the list were empty.
type C interface {
	// Returns the player with the given id from the full list, or nil.
	GetPlayerByID(ctx context.Context, id string) *model.Player
	// Returns the full list of players, or an empty list.
	GetAllPlayers(ctx context.Context) []model.Player
	// Returns the players in the full list whose id is in ids.
	GetMultiplePlayersByIDs(ctx context.Context, ids []string) []model.Player
	// Returns the players in the latest list whose id is in ids.
	GetLatestPlayersByIDs(ctx context.Context, ids []string) []model.Player

	// Drops the cached copy of a list so that the next lookup reloads it.
	Invalidate(ctx context.Context, list model.ListType) error
	// Blocks until every pending background cache write has finished.
	Wait()
}

type controller struct {
	upstream upstream.Client
	cache    cache.Store
	log      logrus.FieldLogger
	metrics  *metrics

	absoluteExpiration time.Duration

	// Collapses concurrent loads of the same list into one upstream request.
	flight singleflight.Group
	// Tracks background cache writes.
	writes sync.WaitGroup
}

func New(settings *config.Settings, logger logrus.FieldLogger, upstream upstream.Client, store cache.Store, reg prometheus.Registerer) (C, error) {
	if settings == nil {
		return nil, errors.New("settings are required")
	}
	if upstream == nil || store == nil {
		return nil, errors.New("an upstream client and a cache store are required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}

	c := &controller{
		upstream:           upstream,
		cache:              store,
		log:                logger.WithField("component", "controller"),
		metrics:            m,
		absoluteExpiration: settings.AbsoluteExpiration(),
	}
	return c, nil
}

func (c *controller) Wait() {
	c.writes.Wait()
}
