package controller

import (
	"context"
	"fmt"
	"slices"

	"github.com/mww/stats_proxy/model"
	"github.com/sirupsen/logrus"
)

func (c *controller) GetPlayerByID(ctx context.Context, id string) *model.Player {
	players := c.playersOrEmpty(ctx, model.AllPlayers)
	return model.FindPlayer(players, id)
}

func (c *controller) GetAllPlayers(ctx context.Context) []model.Player {
	// The list may be shared with other requests that joined the same load.
	return slices.Clone(c.playersOrEmpty(ctx, model.AllPlayers))
}

func (c *controller) GetMultiplePlayersByIDs(ctx context.Context, ids []string) []model.Player {
	if len(ids) == 0 {
		return []model.Player{}
	}
	return model.FilterPlayers(c.playersOrEmpty(ctx, model.AllPlayers), ids)
}

func (c *controller) GetLatestPlayersByIDs(ctx context.Context, ids []string) []model.Player {
	if len(ids) == 0 {
		return []model.Player{}
	}
	return model.FilterPlayers(c.playersOrEmpty(ctx, model.LatestPlayers), ids)
}

func (c *controller) Invalidate(ctx context.Context, list model.ListType) error {
	if err := c.cache.Remove(ctx, list.CacheKey()); err != nil {
		return fmt.Errorf("error invalidating %v: %w", list, err)
	}
	c.log.WithField("list", list.CacheKey()).Info("cached player list invalidated")
	return nil
}

// playersOrEmpty resolves a list and turns any failure into an empty list.
func (c *controller) playersOrEmpty(ctx context.Context, list model.ListType) []model.Player {
	players, err := c.resolveList(ctx, list)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"list":  list.CacheKey(),
			"error": err,
		}).Error("unable to load player list")
		return []model.Player{}
	}
	return players
}
