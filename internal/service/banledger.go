package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlink/marketplace-api/internal/domain"
	"github.com/craftlink/marketplace-api/internal/platform/lock"
	"github.com/craftlink/marketplace-api/internal/platform/notify"
	"github.com/craftlink/marketplace-api/internal/repo/postgres"
	"github.com/craftlink/marketplace-api/pkg/config"
	"github.com/craftlink/marketplace-api/pkg/events"
	"github.com/craftlink/marketplace-api/pkg/logger"
)

// BanLedger decides whether a user may currently act and applies
// escalating discipline for cancellation abuse.
type BanLedger interface {
	CheckBan(ctx context.Context, userID int64) domain.BanStatus
	RecordCancellation(ctx context.Context, userID, bookingID int64, reason string) (*domain.StrikeResult, error)
}

type banLedger struct {
	bans          postgres.BanRepo
	cancellations postgres.CancellationRepo
	users         postgres.UserRepo
	eventBus      events.Publisher
	notifier      notify.Notifier
	locker        lock.Locker
	policy        config.TrustPolicy
	now           func() time.Time
}

func NewBanLedger(
	bans postgres.BanRepo,
	cancellations postgres.CancellationRepo,
	users postgres.UserRepo,
	eventBus events.Publisher,
	notifier notify.Notifier,
	locker lock.Locker,
	policy config.TrustPolicy,
) BanLedger {
	return &banLedger{
		bans:          bans,
		cancellations: cancellations,
		users:         users,
		eventBus:      eventBus,
		notifier:      notifier,
		locker:        locker,
		policy:        policy,
		now:           time.Now,
	}
}

// CheckBan returns the most severe currently active ban. A storage read
// failure fails open: blocking every request on an outage is worse than
// letting a banned user through, so the failure is logged and the user
// is treated as clear.
func (l *banLedger) CheckBan(ctx context.Context, userID int64) domain.BanStatus {
	ban, err := l.bans.MostSevereActive(ctx, userID, l.now())
	if err != nil {
		logger.ErrorContext(ctx, "Ban check failed, failing open", "error", err, "user_id", userID)
		return domain.BanStatus{Banned: false}
	}
	if ban == nil {
		return domain.BanStatus{Banned: false}
	}
	return domain.BanStatus{
		Banned:    true,
		Kind:      ban.Kind,
		Reason:    ban.Reason,
		ExpiresAt: ban.ExpiresAt,
	}
}

// RecordCancellation logs one cancellation, counts the user's strikes in
// the rolling window and escalates when the threshold is crossed.
func (l *banLedger) RecordCancellation(ctx context.Context, userID, bookingID int64, reason string) (*domain.StrikeResult, error) {
	now := l.now()

	// Strike counting is read-then-write; the per-user lock narrows the
	// window in which two concurrent cancellations both escalate. When the
	// lock cannot be taken we proceed anyway rather than block the request.
	release, ok, err := l.locker.Acquire(ctx, fmt.Sprintf("cancellation:%d", userID), 5*time.Second)
	if err != nil {
		logger.WarnContext(ctx, "Cancellation lock unavailable", "error", err, "user_id", userID)
	} else if ok {
		defer release()
	} else {
		logger.WarnContext(ctx, "Concurrent cancellation in flight for user", "user_id", userID)
	}

	// Logging the cancellation is best-effort: a failed audit row must not
	// block the cancellation itself.
	if _, err := l.cancellations.Insert(ctx, userID, bookingID, reason); err != nil {
		logger.ErrorContext(ctx, "Failed to log cancellation record", "error", err, "user_id", userID, "booking_id", bookingID)
	}

	count, err := l.cancellations.CountSince(ctx, userID, now.Add(-l.policy.CancelWindow))
	if err != nil {
		return nil, fmt.Errorf("strike count failed: %w", err)
	}

	if err := l.eventBus.Publish(ctx, events.CancellationRecorded, events.CancellationRecordedEvent{
		UserID:      userID,
		BookingID:   bookingID,
		StrikeCount: count,
		RecordedAt:  now,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish cancellation event", "error", err, "user_id", userID)
	}

	windowDays := int(l.policy.CancelWindow.Hours() / 24)

	if count < l.policy.CancelThreshold {
		remaining := l.policy.CancelThreshold - count
		return &domain.StrikeResult{
			Banned:      false,
			StrikeCount: count,
			Remaining:   remaining,
			Message: fmt.Sprintf("You have canceled %d booking(s) in the last %d days. %d more will result in a temporary ban.",
				count, windowDays, remaining),
		}, nil
	}

	return l.escalate(ctx, userID, count, now)
}

// escalate issues a temporary ban, or a permanent one once the user has
// exhausted the temporary-ban allowance. Failing to write the ban is
// fatal to the request: silently skipping discipline is a policy
// violation, so this path fails closed.
func (l *banLedger) escalate(ctx context.Context, userID int64, strikeCount int, now time.Time) (*domain.StrikeResult, error) {
	priorTemps, err := l.bans.CountTemporary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("temporary ban count failed: %w", err)
	}

	if priorTemps+1 >= l.policy.PermBanThreshold {
		reason := fmt.Sprintf("Permanently banned: %d temporary bans issued for repeated cancellations", priorTemps+1)
		ban, err := l.bans.Insert(ctx, userID, domain.BanPermanent, reason, strikeCount, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to issue permanent ban: %w", err)
		}
		l.announceBan(ctx, ban)
		return &domain.StrikeResult{
			Banned:      true,
			Kind:        domain.BanPermanent,
			StrikeCount: strikeCount,
			Message:     reason,
		}, nil
	}

	expiresAt := now.Add(l.policy.TempBanDuration)
	windowDays := int(l.policy.CancelWindow.Hours() / 24)
	reason := fmt.Sprintf("Temporarily banned: %d cancellations within %d days", strikeCount, windowDays)
	ban, err := l.bans.Insert(ctx, userID, domain.BanTemporary, reason, strikeCount, &expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to issue temporary ban: %w", err)
	}
	l.announceBan(ctx, ban)

	tempsLeft := l.policy.PermBanThreshold - (priorTemps + 1)
	return &domain.StrikeResult{
		Banned:      true,
		Kind:        domain.BanTemporary,
		StrikeCount: strikeCount,
		Remaining:   tempsLeft,
		Message: fmt.Sprintf("%s. %d more temporary ban(s) will make the ban permanent.",
			reason, tempsLeft),
		ExpiresAt: &expiresAt,
	}, nil
}

// announceBan publishes the ban event and emails the user. Both are
// best-effort: the ban row is already durable.
func (l *banLedger) announceBan(ctx context.Context, ban *domain.Ban) {
	if err := l.eventBus.Publish(ctx, events.BanIssued, events.BanIssuedEvent{
		UserID:      ban.UserID,
		Kind:        string(ban.Kind),
		Reason:      ban.Reason,
		StrikeCount: ban.StrikeCount,
		ExpiresAt:   ban.ExpiresAt,
		IssuedAt:    ban.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ban issued event", "error", err, "user_id", ban.UserID)
	}

	user, err := l.users.FindByID(ctx, ban.UserID)
	if err != nil || user == nil {
		logger.ErrorContext(ctx, "Could not load user for ban notice", "error", err, "user_id", ban.UserID)
		return
	}

	expires := ""
	if ban.ExpiresAt != nil {
		expires = ban.ExpiresAt.Format(time.RFC3339)
	}
	if err := l.notifier.BanNotice(ctx, user.Email, user.Name, string(ban.Kind), ban.Reason, expires); err != nil {
		logger.ErrorContext(ctx, "Failed to send ban notice", "error", err, "user_id", ban.UserID)
	}
}
