package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	TypePaymentCreated       = "payment.created"
	TypePaymentStatusChanged = "payment.status_changed"
	TypeReceiptIssued        = "receipt.issued"
	TypeReceiptDelivered     = "receipt.delivered"
)

type PaymentEvent struct {
	Type          string    `json:"type"`
	PaymentID     uint64    `json:"payment_id"`
	ReceiptNumber string    `json:"receipt_number"`
	Status        string    `json:"status"`
	OldStatus     string    `json:"old_status,omitempty"`
	Gateway       string    `json:"gateway,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event PaymentEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	logrus.WithFields(logrus.Fields{"topic": topic, "brokers": brokers}).Info("kafka_publisher_initialized")
	return &KafkaPublisher{writer: w, topic: topic}
}

// Publish keys messages by payment id so a payment's events stay ordered
// within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event PaymentEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(event.PaymentID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, PaymentEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
