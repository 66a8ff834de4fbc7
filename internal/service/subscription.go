package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlink/marketplace-api/internal/domain"
	"github.com/craftlink/marketplace-api/internal/platform/payments"
	"github.com/craftlink/marketplace-api/internal/repo/postgres"
	"github.com/craftlink/marketplace-api/pkg/config"
	"github.com/craftlink/marketplace-api/pkg/events"
	"github.com/craftlink/marketplace-api/pkg/logger"
)

// SubscriptionService sells, inspects, lazily expires and cancels
// provider subscriptions, keeping the provider tier in step. Unlike the
// ban ledger it fails closed on every storage error: billing and tier
// correctness outrank availability here.
type SubscriptionService interface {
	Create(ctx context.Context, providerID, callerID int64, req domain.CreateSubscriptionReq) (*domain.Subscription, error)
	Status(ctx context.Context, providerID int64) (*domain.Subscription, error)
	Cancel(ctx context.Context, providerID, callerID int64) (*domain.Subscription, error)
	UpgradeTier(ctx context.Context, providerID, callerID int64) (*domain.ProviderProfile, error)
}

type subscriptionService struct {
	subs      postgres.SubscriptionRepo
	providers postgres.ProviderRepo
	charger   payments.Charger
	eventBus  events.Publisher
	plans     config.PlanTable
	now       func() time.Time
}

func NewSubscriptionService(
	subs postgres.SubscriptionRepo,
	providers postgres.ProviderRepo,
	charger payments.Charger,
	eventBus events.Publisher,
	plans config.PlanTable,
) SubscriptionService {
	return &subscriptionService{
		subs:      subs,
		providers: providers,
		charger:   charger,
		eventBus:  eventBus,
		plans:     plans,
		now:       time.Now,
	}
}

func (s *subscriptionService) Create(ctx context.Context, providerID, callerID int64, req domain.CreateSubscriptionReq) (*domain.Subscription, error) {
	provider, err := s.requireOwnedProvider(ctx, providerID, callerID)
	if err != nil {
		return nil, err
	}

	plan, ok := s.plans[req.PlanType]
	if !ok {
		return nil, domain.ErrUnknownPlan
	}

	latest, err := s.freshLatest(ctx, providerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if latest != nil && latest.ActiveAt(now) {
		return nil, domain.ErrAlreadySubscribed
	}

	paymentRef := req.PaymentRef
	if req.PaymentMethod != nil {
		desc := fmt.Sprintf("%s for provider %d", req.PlanType, provider.ID)
		ref, err := s.charger.Charge(ctx, plan.Amount, *req.PaymentMethod, desc)
		if err != nil {
			return nil, fmt.Errorf("payment failed: %w", err)
		}
		paymentRef = &ref
	}

	sub, err := s.subs.Insert(ctx, &domain.Subscription{
		ProviderID:    providerID,
		PlanType:      req.PlanType,
		Status:        domain.SubscriptionActive,
		Amount:        plan.Amount,
		PaymentMethod: req.PaymentMethod,
		PaymentRef:    paymentRef,
		StartsAt:      now,
		ExpiresAt:     now.Add(plan.Duration),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.publishSubscription(ctx, events.SubscriptionCreated, sub)

	// Tier is deliberately not raised here: UpgradeTier re-verifies
	// eligibility at the moment of upgrade.
	return sub, nil
}

// Status returns the provider's most recent subscription, flipping an
// active-but-past-expiry row to expired (and the tier back to basic) as
// a side effect of the read. Returns nil when the provider has never
// subscribed.
func (s *subscriptionService) Status(ctx context.Context, providerID int64) (*domain.Subscription, error) {
	return s.freshLatest(ctx, providerID)
}

func (s *subscriptionService) Cancel(ctx context.Context, providerID, callerID int64) (*domain.Subscription, error) {
	if _, err := s.requireOwnedProvider(ctx, providerID, callerID); err != nil {
		return nil, err
	}

	latest, err := s.freshLatest(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if latest == nil || !latest.ActiveAt(s.now()) {
		return nil, domain.ErrNoActiveSubscription
	}

	canceled, err := s.subs.SetStatus(ctx, latest.ID, domain.SubscriptionCanceled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	if err := s.downgradeTier(ctx, providerID); err != nil {
		return nil, err
	}

	s.publishSubscription(ctx, events.SubscriptionCanceled, canceled)
	return canceled, nil
}

func (s *subscriptionService) UpgradeTier(ctx context.Context, providerID, callerID int64) (*domain.ProviderProfile, error) {
	if _, err := s.requireOwnedProvider(ctx, providerID, callerID); err != nil {
		return nil, err
	}

	// Eligibility is re-verified here rather than trusted from any cached
	// tier value: only a live, unexpired subscription can raise the tier.
	latest, err := s.freshLatest(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if latest == nil || !latest.ActiveAt(s.now()) {
		return nil, domain.ErrNoActiveSubscription
	}

	profile, err := s.providers.SetTier(ctx, providerID, domain.TierSpecialist)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade tier: %w", err)
	}

	s.publishTier(ctx, providerID, domain.TierSpecialist)
	return profile, nil
}

// requireOwnedProvider loads the target profile and enforces the
// self-service precondition.
func (s *subscriptionService) requireOwnedProvider(ctx context.Context, providerID, callerID int64) (*domain.ProviderProfile, error) {
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	if provider == nil {
		return nil, domain.ErrNotProvider
	}
	if provider.UserID != callerID {
		return nil, domain.ErrNotSelf
	}
	return provider, nil
}

// freshLatest reads the most recent subscription row and performs lazy
// expiry. The expiry write and the tier downgrade are two sequential
// statements, not a transaction: if the tier write fails the subscription
// row is already expired and the error is surfaced with full context so
// the inconsistency is visible rather than silent.
func (s *subscriptionService) freshLatest(ctx context.Context, providerID int64) (*domain.Subscription, error) {
	latest, err := s.subs.LatestByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read subscription: %w", err)
	}
	if latest == nil {
		return nil, nil
	}
	if latest.Status != domain.SubscriptionActive || s.now().Before(latest.ExpiresAt) {
		return latest, nil
	}

	expired, err := s.subs.SetStatus(ctx, latest.ID, domain.SubscriptionExpired)
	if err != nil {
		return nil, fmt.Errorf("lazy expiry failed: %w", err)
	}
	if err := s.downgradeTier(ctx, providerID); err != nil {
		logger.ErrorContext(ctx, "Tier downgrade failed after lazy expiry; subscription already expired",
			"error", err, "provider_id", providerID, "subscription_id", expired.ID)
		return nil, err
	}

	s.publishSubscription(ctx, events.SubscriptionExpired, expired)
	return expired, nil
}

func (s *subscriptionService) downgradeTier(ctx context.Context, providerID int64) error {
	if _, err := s.providers.SetTier(ctx, providerID, domain.TierBasic); err != nil {
		return fmt.Errorf("failed to downgrade tier: %w", err)
	}
	s.publishTier(ctx, providerID, domain.TierBasic)
	return nil
}

func (s *subscriptionService) publishSubscription(ctx context.Context, subject string, sub *domain.Subscription) {
	if err := s.eventBus.Publish(ctx, subject, events.SubscriptionEvent{
		SubscriptionID: sub.ID,
		ProviderID:     sub.ProviderID,
		PlanType:       sub.PlanType,
		Status:         string(sub.Status),
		ExpiresAt:      sub.ExpiresAt,
		OccurredAt:     s.now(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish subscription event", "error", err, "subject", subject, "subscription_id", sub.ID)
	}
}

func (s *subscriptionService) publishTier(ctx context.Context, providerID int64, tier domain.Tier) {
	if err := s.eventBus.Publish(ctx, events.TierChanged, events.TierChangedEvent{
		ProviderID: providerID,
		Tier:       string(tier),
		ChangedAt:  s.now(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish tier change event", "error", err, "provider_id", providerID)
	}
}
