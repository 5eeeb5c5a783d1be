package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	maxBatchSize = 5000
	maxRate      = 10000
)

func newRouter(spammer *Spammer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
		var req SpamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Rate <= 0 {
			req.Rate = 10
		}
		if req.Rate > maxRate {
			http.Error(w, "rate is too large", http.StatusBadRequest)
			return
		}
		if req.BatchSize <= 0 {
			req.BatchSize = 1
		}
		if req.BatchSize > maxBatchSize {
			http.Error(w, "batch_size is too large", http.StatusBadRequest)
			return
		}
		duration, err := time.ParseDuration(req.Duration)
		if err != nil || duration <= 0 {
			http.Error(w, "Invalid duration format", http.StatusBadRequest)
			return
		}

		if !spammer.StartSpam(req.Rate, req.BatchSize, duration) {
			writeJSON(w, http.StatusConflict, map[string]any{"status": "already running"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "started",
			"rate":       req.Rate,
			"batch_size": req.BatchSize,
			"duration":   duration.String(),
		})
	})

	r.Post("/stop", func(w http.ResponseWriter, r *http.Request) {
		spammer.StopSpam()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "stopped",
			"total_sent": spammer.totalSent.Load(),
		})
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, spammer.GetStats())
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	_ = godotenv.Load("env/.env")

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	brokers := []string{"kafka:9092"}
	if env := os.Getenv("KAFKA_BROKERS"); env != "" {
		brokers = strings.Split(env, ",")
	}
	topic := "orders"
	if env := os.Getenv("KAFKA_TOPIC"); env != "" {
		topic = env
	}
	port := ":8082"
	if env := os.Getenv("SPAMMER_PORT"); env != "" {
		port = ":" + env
	}

	spammer := NewSpammer(newKafkaWriter(brokers, topic), logger)
	defer func() { _ = spammer.Close() }()

	srv := &http.Server{Addr: port, Handler: newRouter(spammer), ReadTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Spammer server started",
		zap.String("addr", port),
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
		zap.String("endpoints", "POST /start, POST /stop, GET /stats"),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("spammer server", zap.Error(err))
	}
}
