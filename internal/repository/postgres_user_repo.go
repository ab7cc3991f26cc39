package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/jobtrack/internal/model"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const pqUniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Create はユーザーを作成する。
// lower(email)の一意インデックス違反はDuplicateEmailエラーに変換する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return model.NewDuplicateEmailError()
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, reset_token, reset_token_expiry, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	))
}

// FindByEmail はメールアドレスでユーザーを検索する（大文字小文字を区別しない）。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, reset_token, reset_token_expiry, created_at, updated_at
		 FROM users WHERE lower(email) = lower($1)`,
		email,
	))
}

// FindByValidResetToken は有効期限内の再設定トークンを持つユーザーを検索する。
// トークンが不明または期限切れの場合はnilを返す。
func (r *PostgresUserRepo) FindByValidResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, reset_token, reset_token_expiry, created_at, updated_at
		 FROM users WHERE reset_token = $1 AND reset_token_expiry > $2`,
		token, now,
	))
}

// UpdateResetToken は再設定トークンと有効期限を1回のUPDATEで設定する。
func (r *PostgresUserRepo) UpdateResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET reset_token = $1, reset_token_expiry = $2, updated_at = now()
		 WHERE id = $3`,
		token, expiry, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reset token: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// ConsumeResetToken はトークンの照合・パスワードハッシュの更新・トークンのクリアを
// 単一の条件付きUPDATEで実行し、該当した行数を返す。
// WHERE句でトークンと有効期限を再検証するため、同一トークンの同時消費は
// 高々1回しか成功しない（compare-and-swap）。
func (r *PostgresUserRepo) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL, updated_at = now()
		 WHERE reset_token = $2 AND reset_token_expiry > $3`,
		newHash, token, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume reset token: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// UpdatePassword はパスワードハッシュを更新する。
func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, userID, newHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		newHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 関連するprofiles、applications、educations、skillsはCASCADE削除される。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// scanUser は1行分のユーザーをスキャンする。sql.ErrNoRowsはnilに変換する。
func (r *PostgresUserRepo) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var resetToken sql.NullString
	var resetExpiry sql.NullTime

	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&resetToken, &resetExpiry,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExpiry.Valid {
		user.ResetTokenExpiry = &resetExpiry.Time
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
