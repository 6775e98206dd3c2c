package mykafka

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// Publisher sends checkout events. Implementations must be safe to call from
// any goroutine.
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
}

// New returns a kafka-backed publisher, or Nop when no brokers are configured.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 || topic == "" {
		return Nop{}
	}
	return NewProducer(brokers, topic)
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           publishTimeout,
		},
	}
}

func (p *Producer) PublishEvent(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, any) error { return nil }
func (Nop) Close() error                                    { return nil }
