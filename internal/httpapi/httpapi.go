package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/TemirB/orders-api/internal/application/service"
	"github.com/TemirB/orders-api/internal/codec"
	"github.com/TemirB/orders-api/internal/domain"
	"github.com/TemirB/orders-api/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:generate mockgen -source internal/httpapi/httpapi.go -destination=internal/httpapi/httpapi_mock_test.go -package=httpapi

type OrderService interface {
	GetOrdersWithStats(ctx context.Context, filter domain.Filter) (service.ListResult, service.LookupStats, error)
	CreateOrdersWithStats(ctx context.Context, orders []domain.Order) (service.CreateResult, service.WriteStats, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// MaxBodyBytes caps a POST body.
const MaxBodyBytes = 32 << 20

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Option func(*Server)

// WithHealthCheck adds a dependency pinged by /healthz.
func WithHealthCheck(name string, p Pinger) Option {
	return func(s *Server) { s.checks[name] = p }
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

type Server struct {
	service OrderService
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics

	checks         map[string]Pinger
	metricsHandler http.Handler
	now            func() time.Time
}

func New(service OrderService, logger *zap.Logger, metrics observability.Metrics, opts ...Option) *Server {
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	s := &Server{
		service: service,
		logger:  logger,
		router:  chi.NewRouter(),
		metrics: metrics,
		checks:  map[string]Pinger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLog(s.logger, s.metrics))
	s.router.Use(middleware.Recoverer)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, codec.FormatJSON, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, formatOf(r), http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router.Get("/api/orders/{format}", s.getOrders)
	s.router.Post("/api/orders/{format}", s.postOrders)
	s.router.Get("/healthz", s.healthz)
	if s.metricsHandler != nil {
		s.router.Handle("/metrics", s.metricsHandler)
	}
}

// formatOf picks the response format for a routed request; JSON when the
// path carries none or an unknown one.
func formatOf(r *http.Request) codec.Format {
	if f, ok := codec.ParseFormat(chi.URLParam(r, "format")); ok {
		return f
	}
	return codec.FormatJSON
}

func (s *Server) getOrders(w http.ResponseWriter, r *http.Request) {
	start := s.now()

	format, ok := codec.ParseFormat(chi.URLParam(r, "format"))
	if !ok {
		s.writeError(w, codec.FormatJSON, http.StatusNotFound, "not found")
		return
	}

	filter, err := domain.ParseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, format, err)
		return
	}

	res, st, err := s.service.GetOrdersWithStats(r.Context(), filter)
	if err != nil {
		s.fail(w, format, err)
		return
	}

	observability.AppendServerTiming(w, "cache", st.CacheMs, "")
	observability.AppendServerTiming(w, "db", st.DBMs, "")
	observability.AppendServerTiming(w, "source", 0, string(st.Source))
	observability.SetSource(w, string(st.Source))
	observability.SetIfPos(w, observability.HeaderCacheTime, st.CacheMs)
	observability.SetIfPos(w, observability.HeaderDBTime, st.DBMs)
	observability.AppendServerTiming(w, "app", sinceMs(s.now, start), "")

	s.write(w, format, http.StatusOK, res)
}

func (s *Server) postOrders(w http.ResponseWriter, r *http.Request) {
	start := s.now()

	format, ok := codec.ParseFormat(chi.URLParam(r, "format"))
	if !ok {
		s.writeError(w, codec.FormatJSON, http.StatusNotFound, "not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	orders, err := format.Decode(r.Body, start.UTC())
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, format, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.logger.Warn("Error while decoding orders",
			zap.String("format", string(format)),
			zap.Error(err),
		)
		s.fail(w, format, err)
		return
	}

	res, st, err := s.service.CreateOrdersWithStats(r.Context(), orders)
	if err != nil {
		s.fail(w, format, err)
		return
	}

	observability.AppendServerTiming(w, "db_write", st.DBWriteMs, "")
	observability.AppendServerTiming(w, "app", sinceMs(s.now, start), "")

	s.write(w, format, http.StatusCreated, res)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		s.logger.Warn("Health check failed", zap.Any("checks", failed))
		s.write(w, codec.FormatJSON, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"checks": failed,
		})
		return
	}
	s.write(w, codec.FormatJSON, http.StatusOK, map[string]string{"status": "ok"})
}

// fail maps caller errors to 400 and everything else to 500.
func (s *Server) fail(w http.ResponseWriter, format codec.Format, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, codec.ErrBadPayload):
		s.writeError(w, format, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Service error", zap.Error(err))
		s.writeError(w, format, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, format codec.Format, status int, msg string) {
	s.write(w, format, status, codec.ErrorBody{Error: msg})
}

func (s *Server) write(w http.ResponseWriter, format codec.Format, status int, v any) {
	if err := codec.Write(w, format, status, v); err != nil {
		s.logger.Warn("Error while writing response", zap.Error(err))
	}
}

func sinceMs(now func() time.Time, start time.Time) float64 {
	return float64(now().Sub(start).Microseconds()) / 1000.0
}

func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("HTTP server listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
