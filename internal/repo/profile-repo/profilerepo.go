package profilerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/lifestylelure/payouts/internal/domain"
	"github.com/lifestylelure/payouts/internal/pg"
)

const (
	referrerQuery = `
		SELECT referred_by::text
		FROM profiles
		WHERE id = $1
	`
	countReferralsQuery = `
		SELECT COUNT(*)
		FROM profiles
		WHERE referred_by = $1
	`
	existsQuery = `
		SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)
	`
	profileColumns = `id::text, email, referred_by::text, commission_balance, created_at`
	byIDQuery      = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = $1
	`
	byEmailQuery = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE lower(email) = lower($1)
	`
	referredPageQuery = `
		SELECT id::text
		FROM profiles
		WHERE referred_by IS NOT NULL AND id::text > $1
		ORDER BY id::text
		LIMIT $2
	`
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// GetReferrer returns the direct referrer of userID. A missing profile and a
// profile without a referrer both report false.
func (r *Repository) GetReferrer(ctx context.Context, userID string) (string, bool, error) {
	var referredBy *string
	err := r.db.QueryRow(ctx, referrerQuery, userID).Scan(&referredBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		zap.L().Error("failed to get referrer", zap.String("user_id", userID), zap.Error(err))
		return "", false, err
	}
	if referredBy == nil {
		return "", false, nil
	}
	return *referredBy, true, nil
}

func (r *Repository) CountDirectReferrals(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, countReferralsQuery, userID).Scan(&count); err != nil {
		zap.L().Error("failed to count referrals", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *Repository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, existsQuery, userID).Scan(&exists); err != nil {
		zap.L().Error("failed to check profile", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.findOne(ctx, byIDQuery, userID)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.findOne(ctx, byEmailQuery, email)
}

func (r *Repository) findOne(ctx context.Context, query string, arg string) (*domain.Profile, error) {
	var (
		profile domain.Profile
		email   *string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&profile.ID,
		&email,
		&profile.ReferredBy,
		&profile.CommissionBalance,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find profile", zap.Error(err))
		return nil, err
	}
	if email != nil {
		profile.Email = *email
	}
	return &profile, nil
}

// ListReferred pages through ids of profiles that have a referrer, in id
// order, starting after afterID.
func (r *Repository) ListReferred(ctx context.Context, afterID string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, referredPageQuery, afterID, limit)
	if err != nil {
		zap.L().Error("can't list referred profiles", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			zap.L().Error("can't scan profile id", zap.Error(err))
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
