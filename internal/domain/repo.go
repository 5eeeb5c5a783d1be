package domain

import (
	"context"
	"time"
)

type OrderRepository interface {
	CountTotal(ctx context.Context) (int, error)
	FetchPage(ctx context.Context, filter Filter) ([]Order, error)
	SaveBatch(ctx context.Context, orders []Order) error
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}
