package mockcache

import (
	"context"

	"github.com/mww/stats_proxy/cache"
	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	args := s.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (s *Store) Set(ctx context.Context, key, value string, opts cache.EntryOptions) error {
	args := s.Called(ctx, key, value, opts)
	return args.Error(0)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	args := s.Called(ctx, key)
	return args.Error(0)
}
