package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TemirB/orders-api/internal/application/service"
	"github.com/TemirB/orders-api/internal/codec"
	"github.com/TemirB/orders-api/internal/config"
	"github.com/TemirB/orders-api/internal/domain"
	"github.com/TemirB/orders-api/internal/observability"
	"github.com/TemirB/orders-api/internal/pkg/retry"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

//go:generate mockgen -source internal/application/handler/handler.go -destination=internal/application/handler/handler_mock_test.go -package=handler

var (
	ErrSave        = errors.New("save orders failed")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

type Service interface {
	CreateOrders(ctx context.Context, orders []domain.Order) (service.CreateResult, error)
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

type Handler struct {
	service     Service
	breaker     brk
	logger      *zap.Logger
	metrics     observability.Metrics
	retryPolicy config.Retry
	now         func() time.Time
}

func NewHandler(service Service, brk brk, retryPolicy config.Retry, logger *zap.Logger, metrics observability.Metrics) *Handler {
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Handler{
		service:     service,
		breaker:     brk,
		logger:      logger,
		metrics:     metrics,
		retryPolicy: retryPolicy,
		now:         time.Now,
	}
}

// Handle is called by the consumer for a single message carrying an orders
// batch. A nil return lets the consumer commit the offset. Payloads that can
// never be saved are logged and dropped so they do not block the partition.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	start := time.Now()
	fields := []zap.Field{
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
	}

	orders, err := codec.DecodeJSON(bytes.NewReader(message.Value), h.now())
	if err != nil {
		h.logger.Error("dropping undecodable message", append(fields, zap.Error(err))...)
		h.metrics.ObserveKafka(elapsedMs(start), false)
		return nil
	}

	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open", append(fields, zap.Error(err))...)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	var res service.CreateResult
	err = retry.Do(ctx, h.retryPolicy, func() error {
		var cerr error
		res, cerr = h.service.CreateOrders(ctx, orders)
		if errors.Is(cerr, domain.ErrInvalidOrder) {
			return retry.Permanent(cerr)
		}
		return cerr
	})
	h.metrics.ObserveKafka(elapsedMs(start), err == nil)

	if errors.Is(err, domain.ErrInvalidOrder) {
		// Rejected by the store checks, not a store outage.
		h.breaker.Success()
		h.logger.Error("dropping invalid batch", append(fields, zap.Error(err))...)
		return nil
	}
	if err != nil {
		h.breaker.Failure()
		h.logger.Error("save failed after retries",
			append(fields, zap.Int("records", len(orders)), zap.Error(err))...)
		return fmt.Errorf("%w: %v", ErrSave, err)
	}

	h.breaker.Success()
	h.logger.Info("successfully processed batch",
		append(fields,
			zap.Int("records", len(orders)),
			zap.Int("orders_count", res.OrdersCount),
			zap.Int("key_bytes", len(message.Key)),
			zap.Int("value_bytes", len(message.Value)),
		)...)
	return nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
