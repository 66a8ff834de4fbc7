package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftlink/marketplace-api/internal/domain"
)

type SubscriptionRepo interface {
	Insert(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	LatestByProvider(ctx context.Context, providerID int64) (*domain.Subscription, error)
	SetStatus(ctx context.Context, id int64, status domain.SubscriptionStatus) (*domain.Subscription, error)
}

type SubscriptionRepoImpl struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepoImpl {
	return &SubscriptionRepoImpl{pool: pool}
}

const subscriptionCols = `id, provider_id, plan_type, status, amount, payment_method, payment_ref, starts_at, expires_at, created_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID, &s.ProviderID, &s.PlanType, &s.Status, &s.Amount,
		&s.PaymentMethod, &s.PaymentRef, &s.StartsAt, &s.ExpiresAt, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepoImpl) Insert(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	const q = `INSERT INTO subscriptions (provider_id, plan_type, status, amount, payment_method, payment_ref, starts_at, expires_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + subscriptionCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSubscription(r.pool.QueryRow(ctx, q,
		sub.ProviderID, sub.PlanType, sub.Status, sub.Amount,
		sub.PaymentMethod, sub.PaymentRef, sub.StartsAt, sub.ExpiresAt,
	))
	if err != nil {
		// The partial unique index on (provider_id) WHERE status='active'
		// backstops concurrent purchases that both passed the service-level
		// check before either inserted.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadySubscribed
		}
		return nil, err
	}
	return s, nil
}

func (r *SubscriptionRepoImpl) LatestByProvider(ctx context.Context, providerID int64) (*domain.Subscription, error) {
	const q = `SELECT ` + subscriptionCols + ` FROM subscriptions
WHERE provider_id=$1 ORDER BY created_at DESC LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanSubscription(r.pool.QueryRow(ctx, q, providerID))
}

func (r *SubscriptionRepoImpl) SetStatus(ctx context.Context, id int64, status domain.SubscriptionStatus) (*domain.Subscription, error) {
	const q = `UPDATE subscriptions SET status=$2 WHERE id=$1 RETURNING ` + subscriptionCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanSubscription(r.pool.QueryRow(ctx, q, id, status))
}
