package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftlink/marketplace-api/internal/domain"
)

type ProviderRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.ProviderProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error)
	List(ctx context.Context, limit, offset int) ([]domain.ProviderProfile, error)
	Update(ctx context.Context, id int64, patch domain.ProviderPatch) (*domain.ProviderProfile, error)
	SetTier(ctx context.Context, id int64, tier domain.Tier) (*domain.ProviderProfile, error)
}

type ProviderRepoImpl struct{ pool *pgxpool.Pool }

func NewProviderRepo(pool *pgxpool.Pool) *ProviderRepoImpl { return &ProviderRepoImpl{pool: pool} }

const providerCols = `id, user_id, display_name, phone, tier, phone_visible, available, created_at, updated_at`

func scanProvider(row pgx.Row) (*domain.ProviderProfile, error) {
	var p domain.ProviderProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Phone, &p.Tier,
		&p.PhoneVisible, &p.Available, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProviderRepoImpl) GetByID(ctx context.Context, id int64) (*domain.ProviderProfile, error) {
	const q = `SELECT ` + providerCols + ` FROM provider_profiles WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanProvider(r.pool.QueryRow(ctx, q, id))
}

func (r *ProviderRepoImpl) GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error) {
	const q = `SELECT ` + providerCols + ` FROM provider_profiles WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanProvider(r.pool.QueryRow(ctx, q, userID))
}

func (r *ProviderRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.ProviderProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + providerCols + ` FROM provider_profiles WHERE available ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ps := make([]domain.ProviderProfile, 0, limit)
	for rows.Next() {
		var p domain.ProviderProfile
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.DisplayName, &p.Phone, &p.Tier,
			&p.PhoneVisible, &p.Available, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

func (r *ProviderRepoImpl) Update(ctx context.Context, id int64, patch domain.ProviderPatch) (*domain.ProviderProfile, error) {
	const q = `UPDATE provider_profiles SET
  display_name = COALESCE($2, display_name),
  phone = COALESCE($3, phone),
  phone_visible = COALESCE($4, phone_visible),
  available = COALESCE($5, available),
  updated_at = now()
WHERE id=$1
RETURNING ` + providerCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanProvider(r.pool.QueryRow(ctx, q, id, patch.DisplayName, patch.Phone, patch.PhoneVisible, patch.Available))
}

func (r *ProviderRepoImpl) SetTier(ctx context.Context, id int64, tier domain.Tier) (*domain.ProviderProfile, error) {
	const q = `UPDATE provider_profiles SET tier=$2, updated_at=now() WHERE id=$1 RETURNING ` + providerCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanProvider(r.pool.QueryRow(ctx, q, id, tier))
}
