package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mww/stats_proxy/model"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrCircuitOpen      = errors.New("upstream circuit is open")
)

// Client fetches rosters from the stats feed. There are no retries, a failed
// request is reported straight back to the caller.
type Client interface {
	LoadRoster(ctx context.Context, list model.ListType) (*model.Roster, error)
}

type Config struct {
	AllPlayersURL    string
	LatestPlayersURL string
	// Applied to every request, including reading the body.
	Timeout time.Duration
	// Consecutive failures before requests to an endpoint are short
	// circuited. Zero disables the breaker.
	BreakerFailures int
	// How long the breaker stays open before letting a trial request through.
	BreakerCooldown time.Duration
	Logger          logrus.FieldLogger
}

type client struct {
	urls       map[model.ListType]string
	httpClient *http.Client
	breakers   map[model.ListType]*gobreaker.CircuitBreaker
	log        logrus.FieldLogger
}

func New(cfg Config) (Client, error) {
	if cfg.AllPlayersURL == "" || cfg.LatestPlayersURL == "" {
		return nil, errors.New("both the all players and latest players urls are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "upstream")

	c := &client{
		urls: map[model.ListType]string{
			model.AllPlayers:    cfg.AllPlayersURL,
			model.LatestPlayers: cfg.LatestPlayersURL,
		},
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}

	if cfg.BreakerFailures > 0 {
		c.breakers = map[model.ListType]*gobreaker.CircuitBreaker{
			model.AllPlayers:    newBreaker(model.AllPlayers, cfg, log),
			model.LatestPlayers: newBreaker(model.LatestPlayers, cfg, log),
		}
	}
	return c, nil
}

// NewForTest returns a client with no circuit breaker that talks to the
// given urls.
func NewForTest(allURL, latestURL string) Client {
	c, err := New(Config{
		AllPlayersURL:    allURL,
		LatestPlayersURL: latestURL,
		Timeout:          5 * time.Second,
		Logger:           logrus.StandardLogger(),
	})
	if err != nil {
		panic(err)
	}
	return c
}

func newBreaker(list model.ListType, cfg Config, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	threshold := uint32(cfg.BreakerFailures)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        list.CacheKey(),
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"list": name,
				"from": from.String(),
				"to":   to.String(),
			}).Warn("upstream circuit breaker state changed")
		},
	})
}

func (c *client) LoadRoster(ctx context.Context, list model.ListType) (*model.Roster, error) {
	url, found := c.urls[list]
	if !found {
		return nil, fmt.Errorf("no url configured for %v", list)
	}

	breaker := c.breakers[list]
	if breaker == nil {
		return c.fetch(ctx, list, url)
	}

	res, err := breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, list, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, list)
	}
	if err != nil {
		return nil, err
	}
	return res.(*model.Roster), nil
}

func (c *client) fetch(ctx context.Context, list model.ListType, url string) (*model.Roster, error) {
	start := time.Now()
	log := c.log.WithFields(logrus.Fields{"list": list.CacheKey(), "url": url})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := decodedBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var roster model.Roster
	if err := json.NewDecoder(body).Decode(&roster); err != nil {
		return nil, fmt.Errorf("error parsing %v response: %w", list, err)
	}

	log.WithField("took", time.Since(start)).Debug("loaded roster")
	return &roster, nil
}
