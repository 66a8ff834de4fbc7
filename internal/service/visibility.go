package service

import "github.com/craftlink/marketplace-api/internal/domain"

// AnonymousViewer marks a request with no verified caller.
const AnonymousViewer int64 = 0

// SanitizeForViewer returns a copy of the profile with the phone redacted
// unless the viewer may see it: the owner always may, basic providers are
// always reachable, and specialists opt in with the phone-visible flag.
// Every externally returned profile must pass through here, list and
// single lookups alike.
func SanitizeForViewer(p domain.ProviderProfile, viewerID int64) domain.ProviderProfile {
	if viewerID != AnonymousViewer && viewerID == p.UserID {
		return p
	}
	if p.Tier == domain.TierBasic {
		return p
	}
	if p.Tier == domain.TierSpecialist && p.PhoneVisible {
		return p
	}
	p.Phone = nil
	return p
}

// SanitizeAllForViewer applies SanitizeForViewer to a list result.
func SanitizeAllForViewer(ps []domain.ProviderProfile, viewerID int64) []domain.ProviderProfile {
	out := make([]domain.ProviderProfile, len(ps))
	for i, p := range ps {
		out[i] = SanitizeForViewer(p, viewerID)
	}
	return out
}
