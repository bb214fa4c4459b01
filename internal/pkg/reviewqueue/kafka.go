// Package reviewqueue publishes manual-reconciliation events to a Kafka
// topic operators watch. When no brokers are configured the publisher is a
// no-op, so unreconciled lines still produce orders (plus a log line) in
// environments without Kafka.
package reviewqueue

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.ReviewQueue = (*Publisher)(nil)

type Publisher struct {
	writer *kafka.Writer // nil when disabled
}

// NewPublisher parses a comma-separated broker list. An empty list yields a
// disabled publisher.
func NewPublisher(brokersCSV, topic string) *Publisher {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

func (p *Publisher) Publish(ctx context.Context, event ports.ReviewEvent) error {
	if p.writer == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
