package service

import (
	"context"
	"time"

	"github.com/TemirB/orders-api/internal/domain"
	"github.com/TemirB/orders-api/internal/observability"

	"go.uber.org/zap"
)

//go:generate mockgen -source internal/domain/repo.go -destination=internal/application/service/service_mock_test.go -package=service

const (
	StatusCreated  = "Created"
	StatusOK       = "OK"
	MessageCreated = "Orders saved successfully."
)

type CreateResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	OrdersCount int    `json:"orders_count"`
}

type ListData struct {
	Orders []domain.Order `json:"orders"`
}

type ListResult struct {
	Status string   `json:"status"`
	Data   ListData `json:"data"`
}

type Options struct {
	// TTL of cached result sets; zero means the cache default.
	TTL time.Duration
	// MaxPageSize bounds page_size; zero disables the bound.
	MaxPageSize int
	// InvalidateOnWrite drops every cached result set after a committed write.
	// Off by default, so reads may be stale for up to TTL.
	InvalidateOnWrite bool
}

type Service struct {
	cache   domain.Cache
	storage domain.OrderRepository
	logger  *zap.Logger
	metrics observability.Metrics
	opts    Options
}

func NewService(cache domain.Cache, storage domain.OrderRepository, logger *zap.Logger, metrics observability.Metrics, opts Options) *Service {
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Service{
		cache:   cache,
		storage: storage,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

func (s *Service) CreateOrders(ctx context.Context, orders []domain.Order) (CreateResult, error) {
	res, _, err := s.CreateOrdersWithStats(ctx, orders)
	return res, err
}

func (s *Service) CreateOrdersWithStats(ctx context.Context, orders []domain.Order) (CreateResult, WriteStats, error) {
	st := WriteStats{Records: len(orders)}

	t0 := time.Now()
	if err := s.storage.SaveBatch(ctx, orders); err != nil {
		s.logger.Error("Error while saving orders batch",
			zap.Int("records", len(orders)),
			zap.Error(err),
		)
		return CreateResult{}, st, err
	}
	st.DBWriteMs = convertToMs(t0)
	s.metrics.ObserveWrite(st.Records, st.DBWriteMs)

	if s.opts.InvalidateOnWrite && len(orders) > 0 {
		if err := s.cache.DeletePrefix(ctx, KeyPrefix); err != nil {
			s.metrics.IncCacheError()
			s.logger.Warn("Cache invalidation failed", zap.Error(err))
		}
	}

	total, err := s.storage.CountTotal(ctx)
	if err != nil {
		s.logger.Error("Can't count orders", zap.Error(err))
		return CreateResult{}, st, err
	}

	s.logger.Info("Orders saved",
		zap.Int("records", st.Records),
		zap.Int("orders_count", total),
		zap.Float64("db_write_ms", st.DBWriteMs),
	)

	return CreateResult{
		Status:      StatusCreated,
		Message:     MessageCreated,
		OrdersCount: total,
	}, st, nil
}

func (s *Service) GetOrders(ctx context.Context, filter domain.Filter) (ListResult, error) {
	res, _, err := s.GetOrdersWithStats(ctx, filter)
	return res, err
}

// GetOrdersWithStats serves a page through the cache. Any cache failure is
// logged and treated as a miss; only store errors reach the caller.
func (s *Service) GetOrdersWithStats(ctx context.Context, filter domain.Filter) (ListResult, LookupStats, error) {
	var st LookupStats

	filter, err := filter.Normalize(s.opts.MaxPageSize)
	if err != nil {
		return ListResult{}, st, err
	}
	key := Fingerprint(filter)

	// Try cache
	tCacheStart := time.Now()
	if orders, ok := s.fromCache(ctx, key); ok {
		st.Source = SourceCache
		st.CacheMs = convertToMs(tCacheStart)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, 0)

		s.logger.Debug("Orders fetched from cache",
			zap.String("key", key),
			zap.Int("orders", len(orders)),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return listResult(orders), st, nil
	}

	// Try DB
	s.metrics.IncCacheMiss()
	st.CacheMs = convertToMs(tCacheStart)

	tDbStart := time.Now()
	orders, err := s.storage.FetchPage(ctx, filter)
	if err != nil {
		s.logger.Error("Can't fetch orders",
			zap.String("key", key),
			zap.Error(err),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return ListResult{}, st, err
	}
	st.Source = SourceDB
	st.DBMs = convertToMs(tDbStart)

	s.toCache(ctx, key, orders)

	s.metrics.ObserveLookup(string(st.Source), st.CacheMs, st.DBMs)
	s.logger.Debug("Orders fetched from DB",
		zap.String("key", key),
		zap.Int("orders", len(orders)),
		zap.Float64("cache_ms", st.CacheMs),
		zap.Float64("db_ms", st.DBMs),
	)

	return listResult(orders), st, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]domain.Order, bool) {
	blob, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.IncCacheError()
		s.logger.Warn("Cache read failed, falling back to DB", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	orders, err := decodeEnvelope(blob)
	if err != nil {
		s.metrics.IncCacheError()
		s.logger.Warn("Undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return orders, true
}

func (s *Service) toCache(ctx context.Context, key string, orders []domain.Order) {
	blob, err := encodeEnvelope(orders)
	if err != nil {
		s.logger.Warn("Can't encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, blob, s.opts.TTL); err != nil {
		s.metrics.IncCacheError()
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func listResult(orders []domain.Order) ListResult {
	if orders == nil {
		orders = []domain.Order{}
	}
	return ListResult{Status: StatusOK, Data: ListData{Orders: orders}}
}
