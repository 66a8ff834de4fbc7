package domain

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

func ParseSubscriptionStatus(s string) (SubscriptionStatus, bool) {
	switch SubscriptionStatus(s) {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCanceled:
		return SubscriptionStatus(s), true
	default:
		return "", false
	}
}

// Subscription is one paid term for a provider. A renewal is a new row;
// status never returns to active once it leaves.
type Subscription struct {
	ID            int64              `json:"id"`
	ProviderID    int64              `json:"provider_id"`
	PlanType      string             `json:"plan_type"`
	Status        SubscriptionStatus `json:"status"`
	Amount        int64              `json:"amount"`
	PaymentMethod *string            `json:"payment_method,omitempty"`
	PaymentRef    *string            `json:"payment_ref,omitempty"`
	StartsAt      time.Time          `json:"starts_at"`
	ExpiresAt     time.Time          `json:"expires_at"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ActiveAt reports whether the row is active and unexpired at the given
// instant. A row past its expiry may still carry status active until a
// read performs the lazy flip to expired.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.Status == SubscriptionActive && now.Before(s.ExpiresAt)
}

type CreateSubscriptionReq struct {
	PlanType      string  `json:"plan_type"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	PaymentRef    *string `json:"payment_ref,omitempty"`
}
