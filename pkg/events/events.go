package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/craftlink/marketplace-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	CancellationRecorded = "trust.cancellation.recorded"
	BanIssued            = "trust.ban.issued"
	SubscriptionCreated  = "subscription.created"
	SubscriptionExpired  = "subscription.expired"
	SubscriptionCanceled = "subscription.canceled"
	TierChanged          = "provider.tier.changed"
)

// Event payloads
type CancellationRecordedEvent struct {
	UserID      int64     `json:"user_id"`
	BookingID   int64     `json:"booking_id"`
	StrikeCount int       `json:"strike_count"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type BanIssuedEvent struct {
	UserID      int64      `json:"user_id"`
	Kind        string     `json:"kind"`
	Reason      string     `json:"reason"`
	StrikeCount int        `json:"strike_count"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IssuedAt    time.Time  `json:"issued_at"`
}

type SubscriptionEvent struct {
	SubscriptionID int64     `json:"subscription_id"`
	ProviderID     int64     `json:"provider_id"`
	PlanType       string    `json:"plan_type"`
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type TierChangedEvent struct {
	ProviderID int64     `json:"provider_id"`
	Tier       string    `json:"tier"`
	ChangedAt  time.Time `json:"changed_at"`
}
