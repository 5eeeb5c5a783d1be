package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TemirB/orders-api/internal/codec"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var statuses = []string{"new", "paid", "shipped", "delivered", "cancelled"}

type Spammer struct {
	writer    messageWriter
	logger    *zap.Logger
	isRunning atomic.Bool
	wg        sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc

	totalSent   atomic.Int64
	totalOrders atomic.Int64
	startedAt   atomic.Int64
	rnd         *rand.Rand
	rndMu       sync.Mutex
}

type SpamRequest struct {
	Rate      int    `json:"rate"`
	Duration  string `json:"duration"`
	BatchSize int    `json:"batch_size"`
}

type SpamStats struct {
	IsRunning   bool    `json:"is_running"`
	TotalSent   int64   `json:"total_sent"`
	TotalOrders int64   `json:"total_orders"`
	Rate        float64 `json:"rate"`
}

type ordersPayload struct {
	Orders []codec.OrderInput `json:"orders"`
}

func NewSpammer(writer messageWriter, logger *zap.Logger) *Spammer {
	return &Spammer{
		writer: writer,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
}

// StartSpam sends rate messages per second, each carrying batchSize orders,
// until duration elapses or StopSpam is called. It reports false when a run
// is already in progress.
func (s *Spammer) StartSpam(rate, batchSize int, duration time.Duration) bool {
	if !s.isRunning.CompareAndSwap(false, true) {
		return false
	}
	s.totalSent.Store(0)
	s.totalOrders.Store(0)
	s.startedAt.Store(time.Now().UnixNano())

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("Starting spam",
		zap.Int("rate", rate), zap.Int("batch_size", batchSize), zap.Duration("duration", duration))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.isRunning.Store(false)
		defer cancel()

		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()

		timer := time.NewTimer(duration)
		defer timer.Stop()

		for {
			select {
			case <-ticker.C:
				s.sendOne(ctx, batchSize)
			case <-timer.C:
				s.logger.Info("Spam completed", zap.Int64("total_sent", s.totalSent.Load()))
				return
			case <-ctx.Done():
				s.logger.Info("Spam stopped", zap.Int64("total_sent", s.totalSent.Load()))
				return
			}
		}
	}()
	return true
}

func (s *Spammer) sendOne(ctx context.Context, batchSize int) {
	data, err := json.Marshal(ordersPayload{Orders: s.generateOrders(batchSize, time.Now())})
	if err != nil {
		s.logger.Error("marshal batch", zap.Error(err))
		return
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{Value: data, Time: time.Now()})
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("send to kafka", zap.Error(err))
		}
		return
	}
	s.totalSent.Add(1)
	s.totalOrders.Add(int64(batchSize))
}

func (s *Spammer) StopSpam() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Spammer) GetStats() SpamStats {
	st := SpamStats{
		IsRunning:   s.isRunning.Load(),
		TotalSent:   s.totalSent.Load(),
		TotalOrders: s.totalOrders.Load(),
	}
	if started := s.startedAt.Load(); started > 0 {
		if secs := time.Since(time.Unix(0, started)).Seconds(); secs > 0 {
			st.Rate = float64(st.TotalSent) / secs
		}
	}
	return st
}

func (s *Spammer) Close() error {
	s.StopSpam()
	return s.writer.Close()
}

func (s *Spammer) generateOrders(n int, now time.Time) []codec.OrderInput {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()

	out := make([]codec.OrderInput, n)
	for i := range out {
		orderDate := now.AddDate(0, 0, -s.rnd.Intn(365)).Truncate(time.Second)
		out[i] = codec.OrderInput{
			CustomerID: json.Number(strconv.Itoa(1 + s.rnd.Intn(100000))),
			OrderDate:  orderDate.UTC().Format(time.RFC3339),
			Status:     statuses[s.rnd.Intn(len(statuses))],
			Total:      decimal.NewNullDecimal(decimal.New(int64(100+s.rnd.Intn(1000000)), -2)),
		}
	}
	return out
}
