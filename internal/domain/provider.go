package domain

import "time"

type Tier string

const (
	TierBasic      Tier = "basic"
	TierSpecialist Tier = "specialist"
)

func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierBasic, TierSpecialist:
		return Tier(s), true
	default:
		return "", false
	}
}

// ProviderProfile is the public face of a service provider. PhoneVisible
// only has meaning on the specialist tier; basic providers always expose
// their phone.
type ProviderProfile struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Phone        *string   `json:"phone,omitempty"`
	Tier         Tier      `json:"tier"`
	PhoneVisible bool      `json:"phone_visible"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProviderPatch struct {
	DisplayName  *string `json:"display_name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	PhoneVisible *bool   `json:"phone_visible,omitempty"`
	Available    *bool   `json:"available,omitempty"`
}
