// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/jobtrack/internal/model"
)

// UserRepository は認証情報の永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// メールアドレスが既に使用されている場合はDuplicateEmailエラーを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する（大文字小文字を区別しない）。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByValidResetToken は有効期限内の再設定トークンを持つユーザーを検索する。
	// トークンが不明または期限切れの場合はnilを返す。
	FindByValidResetToken(ctx context.Context, token string, now time.Time) (*model.User, error)

	// UpdateResetToken は再設定トークンと有効期限を1回のUPDATEで設定する。
	// 既存の未消費トークンは上書きされる。
	UpdateResetToken(ctx context.Context, userID, token string, expiry time.Time) error

	// ConsumeResetToken はトークンの照合・パスワードハッシュの更新・
	// トークンのクリアを単一の条件付きUPDATEで実行し、該当した行数を返す。
	// 同一トークンの同時消費では高々1回しか成功しない。
	ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (int64, error)

	// UpdatePassword はパスワードハッシュを更新する。
	UpdatePassword(ctx context.Context, userID, newHash string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するprofiles、applications、educations、skillsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileRepository はプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID は指定ユーザーのプロフィールを取得する。未作成の場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// Upsert はプロフィールを作成または更新する。
	Upsert(ctx context.Context, profile *model.Profile) error
}

// ApplicationRepository は応募記録の永続化インターフェース。
// 取得・更新・削除は必ずユーザーIDで絞り込む。
type ApplicationRepository interface {
	// Create は応募記録を作成する。
	Create(ctx context.Context, app *model.Application) error
	// FindByIDAndUser は指定IDかつ指定ユーザー所有の応募記録を取得する。
	// 見つからない場合（他ユーザー所有を含む）はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Application, error)
	// ListByUserID はユーザーの応募記録一覧を作成日時降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Application, error)
	// Update は指定ユーザー所有の応募記録を更新し、該当した行数を返す。
	Update(ctx context.Context, app *model.Application) (int64, error)
	// Delete は指定ユーザー所有の応募記録を削除し、該当した行数を返す。
	Delete(ctx context.Context, id, userID string) (int64, error)
}

// EducationRepository は学歴記録の永続化インターフェース。
type EducationRepository interface {
	Create(ctx context.Context, edu *model.Education) error
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Education, error)
	ListByUserID(ctx context.Context, userID string) ([]*model.Education, error)
	Update(ctx context.Context, edu *model.Education) (int64, error)
	Delete(ctx context.Context, id, userID string) (int64, error)
}

// SkillRepository はスキル記録の永続化インターフェース。
type SkillRepository interface {
	// Create はスキルを作成する。同名スキルが既にある場合は一意制約違反を返す。
	Create(ctx context.Context, skill *model.Skill) error
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Skill, error)
	ListByUserID(ctx context.Context, userID string) ([]*model.Skill, error)
	Delete(ctx context.Context, id, userID string) (int64, error)
}
