package mockcontroller

import (
	"context"

	"github.com/mww/stats_proxy/model"
	"github.com/stretchr/testify/mock"
)

type C struct {
	mock.Mock
}

func (c *C) GetPlayerByID(ctx context.Context, id string) *model.Player {
	args := c.Called(ctx, id)

	var p *model.Player
	if args.Get(0) != nil {
		p = args.Get(0).(*model.Player)
	}

	return p
}

func (c *C) GetAllPlayers(ctx context.Context) []model.Player {
	args := c.Called(ctx)

	var res []model.Player
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Player)
	}

	return res
}

func (c *C) GetMultiplePlayersByIDs(ctx context.Context, ids []string) []model.Player {
	args := c.Called(ctx, ids)

	var res []model.Player
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Player)
	}

	return res
}

func (c *C) GetLatestPlayersByIDs(ctx context.Context, ids []string) []model.Player {
	args := c.Called(ctx, ids)

	var res []model.Player
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Player)
	}

	return res
}

func (c *C) Invalidate(ctx context.Context, list model.ListType) error {
	args := c.Called(ctx, list)
	return args.Error(0)
}

func (c *C) Wait() {
	c.Called()
}
