package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/TemirB/orders-api/internal/config"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type TopicSpec struct {
	Partitions        int
	ReplicationFactor int
	// VisibleWithin bounds the wait for new partitions to show up in metadata.
	VisibleWithin time.Duration
}

var DefaultTopicSpec = TopicSpec{Partitions: 3, ReplicationFactor: 1, VisibleWithin: 10 * time.Second}

// EnsureTopic creates the ingest topic on the controller when it is missing
// and waits until its partitions are visible. Safe to call concurrently.
func EnsureTopic(ctx context.Context, cfg config.Kafka, spec TopicSpec, log *zap.Logger) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return errors.New("empty topic")
	}
	if spec.Partitions < 1 {
		spec.Partitions = 1
	}
	if spec.ReplicationFactor < 1 {
		spec.ReplicationFactor = 1
	}

	dialer := &kafkago.Dialer{Timeout: 10 * time.Second}

	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	if parts, err := conn.ReadPartitions(topic); err == nil && len(parts) > 0 {
		log.Info("kafka topic exists", zap.String("topic", topic), zap.Int("partitions", len(parts)))
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get controller: %w", err)
	}
	ctrlAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))

	ctrlConn, err := dialer.DialContext(ctx, "tcp", ctrlAddr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", ctrlAddr, err)
	}
	defer ctrlConn.Close()

	log.Info("creating kafka topic",
		zap.String("topic", topic),
		zap.Int("partitions", spec.Partitions),
		zap.Int("replication", spec.ReplicationFactor),
	)
	err = ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     spec.Partitions,
		ReplicationFactor: spec.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafkago.TopicAlreadyExists) {
		return fmt.Errorf("create topic: %w", err)
	}

	deadline := time.Now().Add(spec.VisibleWithin)
	for {
		parts, err := conn.ReadPartitions(topic)
		if err == nil && len(parts) >= spec.Partitions {
			log.Info("kafka topic is ready", zap.String("topic", topic), zap.Int("partitions", len(parts)))
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("topic %s not visible after creation", topic)
		}
		sleepWithContext(ctx, 500*time.Millisecond)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
