package service

import (
	"testing"

	"github.com/craftlink/marketplace-api/internal/domain"
)

func TestSanitizeForViewer(t *testing.T) {
	phone := "+15551234567"

	cases := []struct {
		name         string
		tier         domain.Tier
		phoneVisible bool
		viewerID     int64
		wantPhone    bool
	}{
		{"basic visible to anonymous", domain.TierBasic, false, AnonymousViewer, true},
		{"basic visible to stranger", domain.TierBasic, false, 42, true},
		{"specialist hidden from anonymous", domain.TierSpecialist, false, AnonymousViewer, false},
		{"specialist hidden from stranger", domain.TierSpecialist, false, 42, false},
		{"specialist visible to owner", domain.TierSpecialist, false, 1, true},
		{"specialist opted in visible to stranger", domain.TierSpecialist, true, 42, true},
		{"specialist opted in visible to anonymous", domain.TierSpecialist, true, AnonymousViewer, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := domain.ProviderProfile{
				ID: 10, UserID: 1, Phone: &phone,
				Tier: tc.tier, PhoneVisible: tc.phoneVisible,
			}
			got := SanitizeForViewer(p, tc.viewerID)
			if tc.wantPhone && (got.Phone == nil || *got.Phone != phone) {
				t.Errorf("phone should be exposed, got %v", got.Phone)
			}
			if !tc.wantPhone && got.Phone != nil {
				t.Errorf("phone should be redacted, got %q", *got.Phone)
			}
		})
	}
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	phone := "+15551234567"
	p := domain.ProviderProfile{ID: 10, UserID: 1, Phone: &phone, Tier: domain.TierSpecialist}

	_ = SanitizeForViewer(p, 42)
	if p.Phone == nil {
		t.Fatal("input profile must not be mutated")
	}
}

func TestSanitizeAllForViewer(t *testing.T) {
	phone := "+15551234567"
	ps := []domain.ProviderProfile{
		{ID: 1, UserID: 1, Phone: &phone, Tier: domain.TierBasic},
		{ID: 2, UserID: 2, Phone: &phone, Tier: domain.TierSpecialist},
	}

	out := SanitizeAllForViewer(ps, 99)
	if out[0].Phone == nil {
		t.Error("basic provider phone should survive list sanitization")
	}
	if out[1].Phone != nil {
		t.Error("specialist phone should be redacted in list results")
	}
}
