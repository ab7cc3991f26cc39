package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresSkillRepo はPostgreSQLを使用したスキルリポジトリ。
type PostgresSkillRepo struct {
	db *sql.DB
}

// NewPostgresSkillRepo はPostgresSkillRepoを生成する。
func NewPostgresSkillRepo(db *sql.DB) *PostgresSkillRepo {
	return &PostgresSkillRepo{db: db}
}

// Create はスキルを作成する。
// (user_id, lower(name))の一意インデックス違反はValidationErrorに変換する。
func (r *PostgresSkillRepo) Create(ctx context.Context, skill *model.Skill) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO skills (id, user_id, name, level, years, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		skill.ID, skill.UserID, skill.Name, skill.Level, skill.Years, skill.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return model.NewValidationError("同じ名前のスキルが既に登録されています")
		}
		return fmt.Errorf("failed to insert skill: %w", err)
	}
	return nil
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有のスキルを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresSkillRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Skill, error) {
	skill := &model.Skill{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, level, years, created_at
		 FROM skills WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&skill.ID, &skill.UserID, &skill.Name, &skill.Level, &skill.Years, &skill.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find skill: %w", err)
	}

	return skill, nil
}

// ListByUserID はユーザーのスキル一覧を名前昇順で返す。
func (r *PostgresSkillRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Skill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, level, years, created_at
		 FROM skills WHERE user_id = $1
		 ORDER BY lower(name)`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []*model.Skill{}
	for rows.Next() {
		skill := &model.Skill{}
		if err := rows.Scan(
			&skill.ID, &skill.UserID, &skill.Name, &skill.Level, &skill.Years, &skill.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate skills: %w", err)
	}

	return skills, nil
}

// Delete は指定ユーザー所有のスキルを削除し、該当した行数を返す。
func (r *PostgresSkillRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM skills WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete skill: %w", err)
	}
	return result.RowsAffected()
}

// compile-time interface check
var _ SkillRepository = (*PostgresSkillRepo)(nil)
