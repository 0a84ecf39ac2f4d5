package kafka

import (
	"context"
	"encoding/json"
	"time"

	"bizledger/internal/events"

	kafkago "github.com/segmentio/kafka-go"
)

// Publisher writes ledger events to a Kafka topic, keyed by transaction
// id so all events for one transaction land in the same partition.
type Publisher struct {
	writer *kafkago.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			WriteTimeout: 5 * time.Second,
			// The ledger commit already happened; don't block the request
			// path on broker acks longer than necessary.
			RequiredAcks: kafkago.RequireOne,
		},
	}
}

func (p *Publisher) PublishTransactionCompleted(ctx context.Context, evt events.TransactionCompleted) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(evt.TransactionID),
		Value: payload,
	})
}

func (p *Publisher) Close() error { return p.writer.Close() }
