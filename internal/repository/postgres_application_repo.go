package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresApplicationRepo はPostgreSQLを使用した応募記録リポジトリ。
// すべての読み書きはユーザーIDで絞り込む（他ユーザーの記録には到達できない）。
type PostgresApplicationRepo struct {
	db *sql.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: db}
}

// Create は応募記録を作成する。
func (r *PostgresApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, company, position, status, applied_at, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ID, app.UserID, app.Company, app.Position, app.Status,
		app.AppliedAt, app.Notes, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有の応募記録を取得する。
// 見つからない場合（他ユーザー所有を含む）はnilを返す。
func (r *PostgresApplicationRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Application, error) {
	app := &model.Application{}
	var appliedAt sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, company, position, status, applied_at, notes, created_at, updated_at
		 FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(
		&app.ID, &app.UserID, &app.Company, &app.Position, &app.Status,
		&appliedAt, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}

	if appliedAt.Valid {
		app.AppliedAt = &appliedAt.Time
	}

	return app, nil
}

// ListByUserID はユーザーの応募記録一覧を作成日時降順で返す。
func (r *PostgresApplicationRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, company, position, status, applied_at, notes, created_at, updated_at
		 FROM applications WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []*model.Application{}
	for rows.Next() {
		app := &model.Application{}
		var appliedAt sql.NullTime
		if err := rows.Scan(
			&app.ID, &app.UserID, &app.Company, &app.Position, &app.Status,
			&appliedAt, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		if appliedAt.Valid {
			app.AppliedAt = &appliedAt.Time
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}

	return apps, nil
}

// Update は指定ユーザー所有の応募記録を更新し、該当した行数を返す。
func (r *PostgresApplicationRepo) Update(ctx context.Context, app *model.Application) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE applications
		 SET company = $1, position = $2, status = $3, applied_at = $4, notes = $5, updated_at = $6
		 WHERE id = $7 AND user_id = $8`,
		app.Company, app.Position, app.Status, app.AppliedAt, app.Notes, app.UpdatedAt,
		app.ID, app.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update application: %w", err)
	}
	return result.RowsAffected()
}

// Delete は指定ユーザー所有の応募記録を削除し、該当した行数を返す。
func (r *PostgresApplicationRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete application: %w", err)
	}
	return result.RowsAffected()
}

// compile-time interface check
var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)
