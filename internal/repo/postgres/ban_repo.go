package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftlink/marketplace-api/internal/domain"
)

type BanRepo interface {
	Insert(ctx context.Context, userID int64, kind domain.BanKind, reason string, strikeCount int, expiresAt *time.Time) (*domain.Ban, error)
	// MostSevereActive returns the ban that governs the user at the given
	// instant: any permanent ban first, otherwise the temporary ban with
	// the latest expiry still in the future. Nil when the user is clear.
	MostSevereActive(ctx context.Context, userID int64, now time.Time) (*domain.Ban, error)
	CountTemporary(ctx context.Context, userID int64) (int, error)
}

type BanRepoImpl struct{ pool *pgxpool.Pool }

func NewBanRepo(pool *pgxpool.Pool) *BanRepoImpl { return &BanRepoImpl{pool: pool} }

const banCols = `id, user_id, kind, reason, strike_count, expires_at, created_at`

func (r *BanRepoImpl) Insert(ctx context.Context, userID int64, kind domain.BanKind, reason string, strikeCount int, expiresAt *time.Time) (*domain.Ban, error) {
	const q = `INSERT INTO bans (user_id, kind, reason, strike_count, expires_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + banCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Ban
	err := r.pool.QueryRow(ctx, q, userID, kind, reason, strikeCount, expiresAt).Scan(
		&b.ID, &b.UserID, &b.Kind, &b.Reason, &b.StrikeCount, &b.ExpiresAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BanRepoImpl) MostSevereActive(ctx context.Context, userID int64, now time.Time) (*domain.Ban, error) {
	// Permanent always outranks temporary; among temporaries the latest
	// expiry wins. The ordering is explicit rather than creation-time.
	const q = `SELECT ` + banCols + ` FROM bans
WHERE user_id=$1 AND (kind='permanent' OR expires_at > $2)
ORDER BY (kind='permanent') DESC, expires_at DESC NULLS FIRST
LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Ban
	err := r.pool.QueryRow(ctx, q, userID, now).Scan(
		&b.ID, &b.UserID, &b.Kind, &b.Reason, &b.StrikeCount, &b.ExpiresAt, &b.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BanRepoImpl) CountTemporary(ctx context.Context, userID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM bans WHERE user_id=$1 AND kind='temporary'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
