package domain

import "time"

type BanKind string

const (
	BanTemporary BanKind = "temporary"
	BanPermanent BanKind = "permanent"
)

// Ban is one row in the append-only discipline ledger. Rows are never
// updated or deleted; whether a user is currently banned is derived from
// the set of rows, not stored.
type Ban struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Kind        BanKind    `json:"kind"`
	Reason      string     `json:"reason"`
	StrikeCount int        `json:"strike_count"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // nil for permanent bans
	CreatedAt   time.Time  `json:"created_at"`
}

// ActiveAt reports whether the ban is in force at the given instant.
func (b *Ban) ActiveAt(now time.Time) bool {
	if b.Kind == BanPermanent {
		return true
	}
	return b.ExpiresAt != nil && now.Before(*b.ExpiresAt)
}

// BanStatus is the derived answer to "may this user act right now".
type BanStatus struct {
	Banned    bool       `json:"banned"`
	Kind      BanKind    `json:"kind,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// StrikeResult is returned by the ban ledger after a cancellation is
// recorded: either a warning with the remaining allowance, or the ban
// that was just issued.
type StrikeResult struct {
	Banned      bool       `json:"banned"`
	Kind        BanKind    `json:"kind,omitempty"`
	StrikeCount int        `json:"strike_count"`
	Remaining   int        `json:"remaining"`
	Message     string     `json:"message"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
