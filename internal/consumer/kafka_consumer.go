package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sandwich-shop-service/internal/producer"
	"sandwich-shop-service/internal/sender"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Deliverer hands a decoded notification to the mail transport.
// *sender.EmailSender satisfies it.
type Deliverer interface {
	SendEmail(n sender.EmailNotification) error
}

type KafkaEmailConsumer struct {
	reader  *kafka.Reader
	deliver Deliverer
	log     *zap.Logger
}

func NewKafkaEmailConsumer(brokers []string, groupID, topic string, deliver Deliverer, log *zap.Logger) *KafkaEmailConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &KafkaEmailConsumer{reader: r, deliver: deliver, log: log}
}

func (c *KafkaEmailConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		if err := c.handle(m.Value); err != nil {
			// The topic carries best-effort mail: a bad or undeliverable
			// message is reported and dropped, not retried.
			c.log.Error("notification dropped", zap.ByteString("key", m.Key), zap.Error(err))
		}
	}
}

// handle decodes one producer.EmailMessage off the topic, validates it
// against the known templates and passes it to the deliverer.
func (c *KafkaEmailConsumer) handle(value []byte) error {
	var em producer.EmailMessage
	if err := json.Unmarshal(value, &em); err != nil {
		return fmt.Errorf("decode email message: %w", err)
	}
	if em.To == "" {
		return errors.New("email message without recipient")
	}
	if !sender.KnownTemplate(em.Template) {
		return fmt.Errorf("unknown email template %q", em.Template)
	}
	if err := c.deliver.SendEmail(sender.EmailNotification{
		To:       em.To,
		Subject:  em.Subject,
		Template: em.Template,
		Data:     em.Data,
	}); err != nil {
		return fmt.Errorf("send to %s: %w", em.To, err)
	}
	c.log.Info("email sent", zap.String("to", em.To), zap.String("template", em.Template))
	return nil
}

func (c *KafkaEmailConsumer) Close() error { return c.reader.Close() }
