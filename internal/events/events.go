// Package events publishes stored rates to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// RateEvent announces a newly stored rate.
type RateEvent struct {
	RateTypeID   string `json:"rateTypeId"`
	RateType     string `json:"rateType"`
	CurrencyFrom string `json:"currencyFrom"`
	CurrencyTo   string `json:"currencyTo"`
	Rate         string `json:"rate"`
	Nominal      int    `json:"nominal"`
	RateDate     string `json:"rateDate"`
}

// Key is the message key of the event: the currency pair.
func (e RateEvent) Key() string {
	return e.CurrencyFrom + "/" + e.CurrencyTo
}

// Publisher delivers rate events.
type Publisher interface {
	PublishRate(ctx context.Context, event RateEvent) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRate(context.Context, RateEvent) error { return nil }

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes rate events to a Kafka topic as JSON.
type KafkaPublisher struct {
	writer MessageWriter
	closer func() error
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer, closer: writer.Close}
}

// NewKafkaPublisherWithWriter creates a publisher on an existing writer.
func NewKafkaPublisherWithWriter(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishRate(ctx context.Context, event RateEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode rate event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish rate event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
