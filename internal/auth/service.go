// Package auth はパスワード認証、セッション管理、パスワード再設定フローを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/password"
	"github.com/hitoshi/jobtrack/internal/repository"
)

// decoyPasswordHash はユーザーが存在しない場合のログイン試行でも
// bcrypt照合1回分の時間を消費させるためのダミーハッシュ。
// 「メールアドレス不明」と「パスワード不一致」の応答時間差から
// アカウントの存在が推測されることを防ぐ。
const decoyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Mailer はパスワード再設定メールの送信インターフェース。
// 実装はinternal/mailパッケージが提供する。
type Mailer interface {
	// SendPasswordReset は再設定トークンを埋め込んだメールを送信する。
	SendPasswordReset(ctx context.Context, toEmail, token string) error
}

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordRegistration()
	RecordResetRequested()
	RecordResetConsumed()
	RecordResetRejected()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int           // セッション有効期間（秒）
	ResetTokenTTL time.Duration // 再設定トークンの有効期間
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      password.Hasher
	mailer      Mailer
	metrics     MetricsRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。
// mailerとmetricsはnilを許容する（テストおよびメール未設定環境向け）。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher password.Hasher,
	mailer Mailer,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		mailer:      mailer,
		metrics:     metrics,
		config:      config,
	}
}

// Register は新規ユーザーを登録する。
// メールアドレスの正規化・形式検証とパスワード強度検証を行い、
// ハッシュ化したパスワードのみを永続化する。
// 重複メールアドレスの場合はDuplicateEmailエラーを返す（上書きしない）。
func (s *Service) Register(ctx context.Context, email, plaintext string) (*model.User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if err := ValidatePassword(plaintext); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        normalized,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	slog.Info("user registered", slog.String("user_id", user.ID))

	return user, nil
}

// Login はメールアドレスとパスワードを検証し、セッションを発行する。
// ユーザー不明とパスワード不一致はいずれもInvalidCredentialsを返し、
// 呼び出し側からは区別できない。ユーザー不明の場合もダミーハッシュとの
// 照合を行い、応答時間を揃える。
func (s *Service) Login(ctx context.Context, email, plaintext string) (*model.User, *model.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil {
		// タイミング均等化: 存在しないユーザーでもbcrypt照合1回分の時間を消費する
		s.hasher.Verify(plaintext, decoyPasswordHash)
		if s.metrics != nil {
			s.metrics.RecordLoginFailure()
		}
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		if s.metrics != nil {
			s.metrics.RecordLoginFailure()
		}
		slog.Warn("login failed", slog.String("user_id", user.ID))
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return user, session, nil
}

// Logout はセッションを破棄する。冪等であり、セッションIDが空・不明でも
// エラーにしない。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが無効・期限切れの場合はUnauthorizedを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

// ChangePassword は現在のパスワードを検証した上で新しいパスワードに変更する。
// 現在のパスワード不一致はInvalidCredentials、強度不足はValidationErrorを返す。
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPlaintext string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		return model.NewInvalidCredentialsError()
	}

	if err := ValidatePassword(newPlaintext); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPlaintext)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password changed", slog.String("user_id", userID))
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}
