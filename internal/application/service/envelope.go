package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/TemirB/orders-api/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrCacheEnvelope marks a cached payload that cannot be decoded. Callers
// treat it as a miss.
var ErrCacheEnvelope = errors.New("cache envelope")

const envelopeVersion = 1

type envelope struct {
	V      int           `msgpack:"v"`
	Orders []cachedOrder `msgpack:"orders"`
}

type cachedOrder struct {
	ID         int64     `msgpack:"id"`
	CustomerID int64     `msgpack:"customer_id"`
	OrderDate  time.Time `msgpack:"order_date"`
	Status     string    `msgpack:"status"`
	Total      string    `msgpack:"total"`
	CreatedAt  time.Time `msgpack:"created_at"`
	UpdatedAt  time.Time `msgpack:"updated_at"`
}

func encodeEnvelope(orders []domain.Order) ([]byte, error) {
	env := envelope{V: envelopeVersion, Orders: make([]cachedOrder, len(orders))}
	for i, o := range orders {
		env.Orders[i] = cachedOrder{
			ID:         o.ID,
			CustomerID: o.CustomerID,
			OrderDate:  o.OrderDate,
			Status:     o.Status,
			Total:      o.Total.String(),
			CreatedAt:  o.CreatedAt,
			UpdatedAt:  o.UpdatedAt,
		}
	}
	b, err := msgpack.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return b, nil
}

func decodeEnvelope(b []byte) ([]domain.Order, error) {
	var env envelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheEnvelope, err)
	}
	if env.V != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCacheEnvelope, env.V)
	}

	orders := make([]domain.Order, len(env.Orders))
	for i, c := range env.Orders {
		total, err := decimal.NewFromString(c.Total)
		if err != nil {
			return nil, fmt.Errorf("%w: order %d total: %v", ErrCacheEnvelope, c.ID, err)
		}
		orders[i] = domain.Order{
			ID:         c.ID,
			CustomerID: c.CustomerID,
			OrderDate:  c.OrderDate.UTC(),
			Status:     c.Status,
			Total:      total,
			CreatedAt:  c.CreatedAt.UTC(),
			UpdatedAt:  c.UpdatedAt.UTC(),
		}
	}
	return orders, nil
}
