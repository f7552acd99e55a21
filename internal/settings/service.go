package settings

import (
	"context"
	"strings"
)

// Store is the persistence surface the service needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Service interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type service struct {
	store Store
}

func NewService(store Store) *service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func (s *service) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, key)
}

func (s *service) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, key, strings.TrimSpace(value))
}
