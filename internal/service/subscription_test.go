package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/craftlink/marketplace-api/internal/domain"
	"github.com/craftlink/marketplace-api/pkg/config"
)

func testSubscriptionService(now *time.Time) (*subscriptionService, *mockSubscriptionRepo, *mockProviderRepo, *mockCharger, *mockPublisher) {
	subs := newMockSubscriptionRepo()
	providers := newMockProviderRepo()
	providers.providers[10] = &domain.ProviderProfile{
		ID: 10, UserID: 1, DisplayName: "P One", Tier: domain.TierBasic,
	}
	charger := &mockCharger{}
	bus := &mockPublisher{}

	s := &subscriptionService{
		subs:      subs,
		providers: providers,
		charger:   charger,
		eventBus:  bus,
		plans:     config.DefaultPlans(),
		now:       func() time.Time { return *now },
	}
	return s, subs, providers, charger, bus
}

func TestCreateSubscriptionHappyPath(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _, _, charger, bus := testSubscriptionService(&now)

	method := "pm_card_visa"
	sub, err := s.Create(context.Background(), 10, 1, domain.CreateSubscriptionReq{
		PlanType:      "specialist_monthly",
		PaymentMethod: &method,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != domain.SubscriptionActive {
		t.Errorf("status = %s, want active", sub.Status)
	}
	if !sub.StartsAt.Equal(now) {
		t.Errorf("starts_at = %v, want %v", sub.StartsAt, now)
	}
	if want := now.Add(30 * 24 * time.Hour); !sub.ExpiresAt.Equal(want) {
		t.Errorf("expires_at = %v, want %v", sub.ExpiresAt, want)
	}
	if len(charger.charges) != 1 || charger.charges[0] != 4900 {
		t.Errorf("charges = %v, want one charge of 4900", charger.charges)
	}
	if sub.PaymentRef == nil || *sub.PaymentRef != "pi_test" {
		t.Errorf("payment ref = %v, want pi_test", sub.PaymentRef)
	}
	if len(bus.published) == 0 {
		t.Error("expected subscription created event")
	}
}

func TestCreateSubscriptionPreconditions(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _, _, _, _ := testSubscriptionService(&now)

	// Not self.
	if _, err := s.Create(context.Background(), 10, 2, domain.CreateSubscriptionReq{PlanType: "specialist_monthly"}); !errors.Is(err, domain.ErrNotSelf) {
		t.Errorf("caller 2 on provider owned by 1: err = %v, want ErrNotSelf", err)
	}

	// Not a provider.
	if _, err := s.Create(context.Background(), 99, 1, domain.CreateSubscriptionReq{PlanType: "specialist_monthly"}); !errors.Is(err, domain.ErrNotProvider) {
		t.Errorf("unknown provider: err = %v, want ErrNotProvider", err)
	}

	// Unknown plan.
	if _, err := s.Create(context.Background(), 10, 1, domain.CreateSubscriptionReq{PlanType: "gold_plated"}); !errors.Is(err, domain.ErrUnknownPlan) {
		t.Errorf("unknown plan: err = %v, want ErrUnknownPlan", err)
	}
}

func TestCreateSubscriptionRejectsDuplicateActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _, _, _, _ := testSubscriptionService(&now)

	req := domain.CreateSubscriptionReq{PlanType: "specialist_monthly"}
	if _, err := s.Create(context.Background(), 10, 1, req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.Create(context.Background(), 10, 1, req); !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("second create: err = %v, want ErrAlreadySubscribed", err)
	}

	// Succeeds again right after cancellation.
	if _, err := s.Cancel(context.Background(), 10, 1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := s.Create(context.Background(), 10, 1, req); err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
}

func TestStatusLazilyExpiresAndDowngradesTier(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _, providers, _, bus := testSubscriptionService(&now)

	if _, err := s.Create(context.Background(), 10, 1, domain.CreateSubscriptionReq{PlanType: "specialist_monthly"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpgradeTier(context.Background(), 10, 1); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if providers.providers[10].Tier != domain.TierSpecialist {
		t.Fatalf("tier after upgrade = %s, want specialist", providers.providers[10].Tier)
	}

	// Day 31: the read itself flips the row and relocks the tier.
	now = now.Add(31 * 24 * time.Hour)
	sub, err := s.Status(context.Background(), 10)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if sub.Status != domain.SubscriptionExpired {
		t.Errorf("status = %s, want expired", sub.Status)
	}
	if providers.providers[10].Tier != domain.TierBasic {
		t.Errorf("tier after lazy expiry = %s, want basic", providers.providers[10].Tier)
	}

	found := false
	for _, subj := range bus.published {
		if subj == "subscription.expired" {
			found = true
		}
	}
	if !found {
		t.Error("expected subscription expired event")
	}
}

func TestStatusNeverSubscribed(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _, _, _, _ := testSubscriptionService(&now)

	sub, err := s.Status(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub != nil {
		t.Errorf("expected nil for a provider that never subscribed, got %+v", sub)
	}
}

func TestCancelRequiresActiveSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _, providers, _, _ := testSubscriptionService(&now)

	if _, err := s.Cancel(context.Background(), 10, 1); !errors.Is(err, domain.ErrNoActiveSubscription) {
		t.Fatalf("cancel with no subscription: err = %v, want ErrNoActiveSubscription", err)
	}

	if _, err := s.Create(context.Background(), 10, 1, domain.CreateSubscriptionReq{PlanType: "specialist_monthly"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpgradeTier(context.Background(), 10, 1); err != nil {
		t.Fatalf("upgrade: %v", err)
	}

	sub, err := s.Cancel(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if sub.Status != domain.SubscriptionCanceled {
		t.Errorf("status = %s, want canceled", sub.Status)
	}
	if providers.providers[10].Tier != domain.TierBasic {
		t.Errorf("tier after cancel = %s, want basic", providers.providers[10].Tier)
	}

	// The expired/canceled row cannot be canceled again.
	if _, err := s.Cancel(context.Background(), 10, 1); !errors.Is(err, domain.ErrNoActiveSubscription) {
		t.Errorf("second cancel: err = %v, want ErrNoActiveSubscription", err)
	}
}

func TestUpgradeTierReverifiesEligibility(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _, _, _, _ := testSubscriptionService(&now)

	if _, err := s.UpgradeTier(context.Background(), 10, 1); !errors.Is(err, domain.ErrNoActiveSubscription) {
		t.Fatalf("upgrade with no subscription: err = %v, want ErrNoActiveSubscription", err)
	}

	if _, err := s.Create(context.Background(), 10, 1, domain.CreateSubscriptionReq{PlanType: "specialist_monthly"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	profile, err := s.UpgradeTier(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if profile.Tier != domain.TierSpecialist {
		t.Errorf("tier = %s, want specialist", profile.Tier)
	}

	// Past expiry the cached tier does not count; upgrade is rejected.
	now = now.Add(31 * 24 * time.Hour)
	if _, err := s.UpgradeTier(context.Background(), 10, 1); !errors.Is(err, domain.ErrNoActiveSubscription) {
		t.Errorf("upgrade after expiry: err = %v, want ErrNoActiveSubscription", err)
	}
}

func TestCreateSubscriptionFailsClosedOnPaymentError(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, subs, _, charger, _ := testSubscriptionService(&now)
	charger.err = errors.New("card declined")

	method := "pm_card_visa"
	if _, err := s.Create(context.Background(), 10, 1, domain.CreateSubscriptionReq{
		PlanType:      "specialist_monthly",
		PaymentMethod: &method,
	}); err == nil {
		t.Fatal("payment failure must abort the subscription")
	}
	if len(subs.subs) != 0 {
		t.Errorf("no subscription row expected after failed payment, got %d", len(subs.subs))
	}
}
