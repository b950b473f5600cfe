package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mww/stats_proxy/cache"
	"github.com/mww/stats_proxy/model"
	"github.com/sirupsen/logrus"
)

// resolveList returns a list from the cache, or loads it from the stats feed
// on a miss. Only one load per list is in flight at a time, concurrent misses
// wait for it and share its result.
func (c *controller) resolveList(ctx context.Context, list model.ListType) ([]model.Player, error) {
	key := list.CacheKey()

	s, err := c.cache.Get(ctx, key)
	switch {
	case err == nil && s != "":
		var players []model.Player
		if err := json.Unmarshal([]byte(s), &players); err != nil {
			c.metrics.lookups.WithLabelValues(key, "error").Inc()
			return nil, fmt.Errorf("error decoding cached %s: %w", key, err)
		}
		c.metrics.lookups.WithLabelValues(key, "hit").Inc()
		return players, nil
	case err == nil, errors.Is(err, cache.ErrNotFound):
		c.metrics.lookups.WithLabelValues(key, "miss").Inc()
	default:
		c.metrics.lookups.WithLabelValues(key, "error").Inc()
		return nil, fmt.Errorf("error reading %s from cache: %w", key, err)
	}

	// The load is shared, so it must not be cancelled by whichever request
	// happened to start it.
	loadCtx := context.WithoutCancel(ctx)
	res, err, shared := c.flight.Do(key, func() (any, error) {
		return c.load(loadCtx, list)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.WithField("list", key).Debug("joined an in-flight load")
	}
	return res.([]model.Player), nil
}

// load fetches and merges a list from the stats feed and caches it in the
// background. The caller gets the list without waiting for the cache write.
func (c *controller) load(ctx context.Context, list model.ListType) ([]model.Player, error) {
	key := list.CacheKey()
	start := time.Now()

	roster, err := c.upstream.LoadRoster(ctx, list)
	if err != nil {
		c.metrics.fetches.WithLabelValues(key, "error").Inc()
		return nil, fmt.Errorf("error loading %s from upstream: %w", key, err)
	}
	c.metrics.fetches.WithLabelValues(key, "success").Inc()

	players := roster.Players()
	c.log.WithFields(logrus.Fields{
		"list":    key,
		"players": len(players),
		"took":    time.Since(start),
	}).Info("loaded player list from upstream")

	c.storeInBackground(key, players)
	return players, nil
}

// storeInBackground writes the list to the cache on its own goroutine. The
// write is attempted once and failures are only logged.
func (c *controller) storeInBackground(key string, players []model.Player) {
	data, err := json.Marshal(players)
	if err != nil {
		c.metrics.writes.WithLabelValues(key, "error").Inc()
		c.log.WithFields(logrus.Fields{"list": key, "error": err}).Error("unable to encode player list")
		return
	}

	opts := cache.EntryOptions{
		AbsoluteExpiration: c.absoluteExpiration,
		SlidingExpiration:  cache.SlidingExpiration,
	}

	c.writes.Add(1)
	go func() {
		defer c.writes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := c.cache.Set(ctx, key, string(data), opts); err != nil {
			c.metrics.writes.WithLabelValues(key, "error").Inc()
			c.log.WithFields(logrus.Fields{"list": key, "error": err}).Error("unable to cache player list")
			return
		}
		c.metrics.writes.WithLabelValues(key, "success").Inc()
	}()
}
