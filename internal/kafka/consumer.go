package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg kafkago.Message) error
}

type Reader interface {
	Config() kafkago.ReaderConfig
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type Backoff struct {
	Idle      time.Duration // benign fetch timeout
	Fetch     time.Duration // any other fetch error
	Redeliver time.Duration // handler failure before the same message is retried
	Commit    time.Duration
}

var DefaultBackoff = Backoff{
	Idle:      10 * time.Second,
	Fetch:     500 * time.Millisecond,
	Redeliver: 200 * time.Millisecond,
	Commit:    200 * time.Millisecond,
}

type Consumer struct {
	handler MessageHandler
	reader  Reader
	zlogger *zap.Logger

	workerPoolSize int
	backoff        Backoff
}

func NewConsumer(handler MessageHandler, reader Reader, workers int, logger *zap.Logger) *Consumer {
	if workers < 1 {
		workers = 1
	}
	return &Consumer{
		handler:        handler,
		reader:         reader,
		zlogger:        logger,
		workerPoolSize: workers,
		backoff:        DefaultBackoff,
	}
}

// Start blocks until ctx is done. Each message is handed to the worker pool
// and the loop waits for its result, so offsets are committed in fetch order.
// A message whose handler fails is redelivered to the handler until it
// succeeds; skipping it would let the next commit move past it.
func (c *Consumer) Start(ctx context.Context) {
	rc := c.reader.Config()
	c.zlogger.Info("Starting Kafka consumer",
		zap.Strings("brokers", rc.Brokers),
		zap.String("group", rc.GroupID),
		zap.String("topic", rc.Topic),
		zap.Int("workers", c.workerPoolSize),
	)

	pool := NewPool(c.workerPoolSize)
	defer func() {
		pool.Close()
		pool.Wait()
		c.zlogger.Info("Kafka consumer stopped")
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if isBenignFetchTimeout(err) {
				c.zlogger.Debug("fetch timeout (idle), backing off", zap.Error(err))
				sleepWithContext(ctx, c.backoff.Idle)
				continue
			}
			c.zlogger.Warn("FetchMessage error, backing off", zap.Error(err))
			sleepWithContext(ctx, c.backoff.Fetch)
			continue
		}

		if !c.process(ctx, pool, msg) {
			return
		}

		for {
			err := c.reader.CommitMessages(ctx, msg)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return
			}
			c.zlogger.Warn("commit failed", append(msgFields(msg), zap.Error(err))...)
			sleepWithContext(ctx, c.backoff.Commit)
		}
		c.zlogger.Debug("message committed", msgFields(msg)...)
	}
}

// process runs msg through the handler until it succeeds. It reports false
// when ctx ends first.
func (c *Consumer) process(ctx context.Context, pool *Pool, msg kafkago.Message) bool {
	for {
		done := make(chan error, 1)
		accepted := pool.Submit(ctx, func() {
			start := time.Now()
			err := c.handler.Handle(ctx, msg)
			c.zlogger.Debug("message handled",
				append(msgFields(msg),
					zap.Int("value_bytes", len(msg.Value)),
					zap.Duration("elapsed", time.Since(start)),
					zap.Error(err),
				)...)
			done <- err
		})
		if !accepted {
			return false
		}

		select {
		case err := <-done:
			if err == nil {
				return true
			}
			c.zlogger.Error("handler failed; message will be redelivered",
				append(msgFields(msg), zap.Error(err))...)
		case <-ctx.Done():
			return false
		}

		sleepWithContext(ctx, c.backoff.Redeliver)
		if ctx.Err() != nil {
			return false
		}
	}
}

func msgFields(msg kafkago.Message) []zap.Field {
	return []zap.Field{
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func isBenignFetchTimeout(err error) bool {
	s := err.Error()
	return strings.Contains(s, "Request Timed Out") ||
		strings.Contains(s, "no messages received from kafka within the allocated time")
}
