package kafka

import (
	"time"

	"github.com/TemirB/orders-api/internal/config"

	kafkago "github.com/segmentio/kafka-go"
)

// NewReader builds a consumer-group reader for the ingest topic. Offsets are
// committed explicitly by Consumer, so CommitInterval stays zero.
func NewReader(cfg config.Kafka) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.Group,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})
}
