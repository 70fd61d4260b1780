package consumer

import (
	"encoding/json"
	"testing"

	"sandwich-shop-service/internal/producer"
	"sandwich-shop-service/internal/sender"

	"go.uber.org/zap"
)

type mockDeliverer struct {
	SendEmailFunc func(n sender.EmailNotification) error
	Sent          []sender.EmailNotification
}

func (m *mockDeliverer) SendEmail(n sender.EmailNotification) error {
	m.Sent = append(m.Sent, n)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(n)
	}
	return nil
}

func newTestConsumer(d Deliverer) *KafkaEmailConsumer {
	return &KafkaEmailConsumer{deliver: d, log: zap.NewNop()}
}

func TestHandleDeliversEmailMessage(t *testing.T) {
	d := &mockDeliverer{}
	c := newTestConsumer(d)

	value, err := json.Marshal(producer.EmailMessage{
		To:       "alex@example.com",
		Subject:  "Your order #001 is in",
		Template: "order_confirmation",
		Data:     map[string]any{"order_number": "#001"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := c.handle(value); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(d.Sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(d.Sent))
	}
	got := d.Sent[0]
	if got.To != "alex@example.com" || got.Template != "order_confirmation" {
		t.Fatalf("unexpected delivery: %+v", got)
	}
}

func TestHandleRejectsBadMessages(t *testing.T) {
	valid := producer.EmailMessage{
		To:       "alex@example.com",
		Subject:  "hi",
		Template: "order_confirmation",
	}

	cases := []struct {
		name  string
		value []byte
	}{
		{"malformed json", []byte(`{"to":`)},
		{"missing recipient", mustMarshal(t, func(m producer.EmailMessage) producer.EmailMessage {
			m.To = ""
			return m
		}(valid))},
		{"unknown template", mustMarshal(t, func(m producer.EmailMessage) producer.EmailMessage {
			m.Template = "password_reset"
			return m
		}(valid))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &mockDeliverer{}
			c := newTestConsumer(d)
			if err := c.handle(tc.value); err == nil {
				t.Fatal("expected handle to reject the message")
			}
			if len(d.Sent) != 0 {
				t.Fatalf("rejected message must not be delivered, got %d deliveries", len(d.Sent))
			}
		})
	}
}

func mustMarshal(t *testing.T, m producer.EmailMessage) []byte {
	t.Helper()
	value, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return value
}
