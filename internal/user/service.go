// Package user はアカウント自体のライフサイクル（退会）を扱う。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/password"
	"github.com/hitoshi/jobtrack/internal/repository"
)

// Service はアカウント操作のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      password.Hasher
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher password.Hasher,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
	}
}

// Withdraw はアカウントを削除する。本人確認のため現在のパスワードを要求し、
// 不一致の場合はInvalidCredentialsを返す。
// 全セッションを破棄した後にユーザーを削除する。
// プロフィール・応募記録・学歴・スキルはDBのCASCADE制約で同時に削除される。
func (s *Service) Withdraw(ctx context.Context, userID, currentPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return model.NewInvalidCredentialsError()
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user withdrawn", slog.String("user_id", userID))
	return nil
}
