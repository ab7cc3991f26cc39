package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByUserID は指定ユーザーのプロフィールを取得する。未作成の場合はnilを返す。
func (r *PostgresProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile := &model.Profile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, full_name, headline, summary, location, phone, website, updated_at
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(
		&profile.UserID, &profile.FullName, &profile.Headline, &profile.Summary,
		&profile.Location, &profile.Phone, &profile.Website, &profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}

// Upsert はプロフィールを作成または更新する。
func (r *PostgresProfileRepo) Upsert(ctx context.Context, profile *model.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, full_name, headline, summary, location, phone, website, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		     full_name = EXCLUDED.full_name,
		     headline = EXCLUDED.headline,
		     summary = EXCLUDED.summary,
		     location = EXCLUDED.location,
		     phone = EXCLUDED.phone,
		     website = EXCLUDED.website,
		     updated_at = EXCLUDED.updated_at`,
		profile.UserID, profile.FullName, profile.Headline, profile.Summary,
		profile.Location, profile.Phone, profile.Website, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
