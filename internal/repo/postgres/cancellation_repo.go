package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftlink/marketplace-api/internal/domain"
)

type CancellationRepo interface {
	Insert(ctx context.Context, userID, bookingID int64, reason string) (*domain.CancellationRecord, error)
	CountSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

type CancellationRepoImpl struct{ pool *pgxpool.Pool }

func NewCancellationRepo(pool *pgxpool.Pool) *CancellationRepoImpl {
	return &CancellationRepoImpl{pool: pool}
}

func (r *CancellationRepoImpl) Insert(ctx context.Context, userID, bookingID int64, reason string) (*domain.CancellationRecord, error) {
	const q = `INSERT INTO cancellation_records (user_id, booking_id, reason)
VALUES ($1,$2,$3)
RETURNING id, user_id, booking_id, reason, created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.CancellationRecord
	err := r.pool.QueryRow(ctx, q, userID, bookingID, reason).Scan(
		&c.ID, &c.UserID, &c.BookingID, &c.Reason, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CancellationRepoImpl) CountSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM cancellation_records WHERE user_id=$1 AND created_at >= $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	if err := r.pool.QueryRow(ctx, q, userID, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
