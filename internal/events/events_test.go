package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "ourledger"}

	event := New(SettlementFinalized, "hh-1", "2024-03", "user-1", map[string]int64{"user-1": 1500})
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(ch.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.sent))
	}
	got := ch.sent[0]
	if got.exchange != "ourledger" || got.key != SettlementFinalized {
		t.Errorf("routed to %s/%s", got.exchange, got.key)
	}
	if got.msg.DeliveryMode != amqp091.Persistent || got.msg.ContentType != "application/json" {
		t.Errorf("unexpected publishing: %+v", got.msg)
	}

	var decoded Event
	if err := json.Unmarshal(got.msg.Body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded.HouseholdID != "hh-1" || decoded.Month != "2024-03" || decoded.ActorUserID != "user-1" {
		t.Errorf("unexpected event: %+v", decoded)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !ch.closed {
		t.Error("channel not closed")
	}
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	boom := errors.New("connection reset")
	p := &AMQPPublisher{channel: &fakeChannel{err: boom}, exchange: "ourledger"}

	err := p.Publish(context.Background(), New(PaymentRecorded, "hh-1", "", "user-1", nil))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped broker error, got %v", err)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), Event{Type: SettlementSaved}); err != nil {
		t.Errorf("NopPublisher returned %v", err)
	}
}
