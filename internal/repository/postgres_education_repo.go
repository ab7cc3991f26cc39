package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresEducationRepo はPostgreSQLを使用した学歴リポジトリ。
type PostgresEducationRepo struct {
	db *sql.DB
}

// NewPostgresEducationRepo はPostgresEducationRepoを生成する。
func NewPostgresEducationRepo(db *sql.DB) *PostgresEducationRepo {
	return &PostgresEducationRepo{db: db}
}

// Create は学歴記録を作成する。
func (r *PostgresEducationRepo) Create(ctx context.Context, edu *model.Education) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO educations (id, user_id, school, degree, field, start_year, end_year, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		edu.ID, edu.UserID, edu.School, edu.Degree, edu.Field,
		edu.StartYear, edu.EndYear, edu.CreatedAt, edu.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert education: %w", err)
	}
	return nil
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有の学歴記録を取得する。
// 見つからない場合はnilを返す。
func (r *PostgresEducationRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Education, error) {
	edu := &model.Education{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, school, degree, field, start_year, end_year, created_at, updated_at
		 FROM educations WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(
		&edu.ID, &edu.UserID, &edu.School, &edu.Degree, &edu.Field,
		&edu.StartYear, &edu.EndYear, &edu.CreatedAt, &edu.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find education: %w", err)
	}

	return edu, nil
}

// ListByUserID はユーザーの学歴一覧を開始年降順で返す。
func (r *PostgresEducationRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Education, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, school, degree, field, start_year, end_year, created_at, updated_at
		 FROM educations WHERE user_id = $1
		 ORDER BY start_year DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list educations: %w", err)
	}
	defer rows.Close()

	edus := []*model.Education{}
	for rows.Next() {
		edu := &model.Education{}
		if err := rows.Scan(
			&edu.ID, &edu.UserID, &edu.School, &edu.Degree, &edu.Field,
			&edu.StartYear, &edu.EndYear, &edu.CreatedAt, &edu.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan education: %w", err)
		}
		edus = append(edus, edu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate educations: %w", err)
	}

	return edus, nil
}

// Update は指定ユーザー所有の学歴記録を更新し、該当した行数を返す。
func (r *PostgresEducationRepo) Update(ctx context.Context, edu *model.Education) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE educations
		 SET school = $1, degree = $2, field = $3, start_year = $4, end_year = $5, updated_at = $6
		 WHERE id = $7 AND user_id = $8`,
		edu.School, edu.Degree, edu.Field, edu.StartYear, edu.EndYear, edu.UpdatedAt,
		edu.ID, edu.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update education: %w", err)
	}
	return result.RowsAffected()
}

// Delete は指定ユーザー所有の学歴記録を削除し、該当した行数を返す。
func (r *PostgresEducationRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM educations WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete education: %w", err)
	}
	return result.RowsAffected()
}

// compile-time interface check
var _ EducationRepository = (*PostgresEducationRepo)(nil)
