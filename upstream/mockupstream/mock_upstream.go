package mockupstream

import (
	"context"

	"github.com/mww/stats_proxy/model"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (c *Client) LoadRoster(ctx context.Context, list model.ListType) (*model.Roster, error) {
	args := c.Called(ctx, list)

	var res *model.Roster
	if args.Get(0) != nil {
		res = args.Get(0).(*model.Roster)
	}

	return res, args.Error(1)
}
