package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/jobtrack/internal/model"
)

// RequestPasswordReset はパスワード再設定を受け付ける。
//
// メールアドレスが登録済みかどうかに関わらず常にnilを返す
// （応答の違いからアカウントの存在が推測されることを防ぐ）。
// 登録済みの場合のみトークンを生成し、有効期限とともに1回のUPDATEで
// 永続化した上で再設定メールを送信する。既存の未消費トークンは
// 新しいトークンで上書きされる。
// メール送信の失敗はログに記録するだけで、呼び出し側には伝播しない。
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user by email: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordResetRequested()
	}

	if user == nil {
		// 存在しないメールアドレス: 何も書き込まず、応答も成功と同一にする
		slog.Info("password reset requested for unknown email")
		return nil
	}

	token, err := GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiry := time.Now().Add(s.config.ResetTokenTTL)
	if err := s.userRepo.UpdateResetToken(ctx, user.ID, token, expiry); err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}

	slog.Info("password reset requested",
		slog.String("user_id", user.ID),
		slog.Time("expiry", expiry),
	)

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
			// 送信失敗を呼び出し側に返すとメールアドレスの存在が漏れるため、
			// ログに記録して成功として扱う
			slog.Error("failed to send password reset mail",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// ConfirmPasswordReset は再設定トークンを消費して新しいパスワードを設定する。
//
// パスワード強度検証は永続化より前に行うため、検証失敗ではトークンは
// 消費されず再試行できる。トークンの照合・ハッシュ更新・トークンの
// クリアは単一の条件付きUPDATEで行い、同一トークンの同時消費では
// 高々1回しか成功しない。成功時はそのユーザーの全セッションを破棄する。
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPlaintext string) error {
	if token == "" {
		if s.metrics != nil {
			s.metrics.RecordResetRejected()
		}
		return model.NewInvalidResetTokenError()
	}

	// 検証はトークン消費より前: 失敗してもトークンは有効なまま残る
	if err := ValidatePassword(newPlaintext); err != nil {
		return err
	}

	now := time.Now()
	user, err := s.userRepo.FindByValidResetToken(ctx, token, now)
	if err != nil {
		return fmt.Errorf("failed to find user by reset token: %w", err)
	}
	if user == nil {
		if s.metrics != nil {
			s.metrics.RecordResetRejected()
		}
		slog.Warn("password reset rejected: unknown or expired token")
		return model.NewInvalidResetTokenError()
	}

	hash, err := s.hasher.Hash(newPlaintext)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	affected, err := s.userRepo.ConsumeResetToken(ctx, token, hash, now)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if affected == 0 {
		// 検索と消費の間に別のリクエストが同じトークンを消費した
		if s.metrics != nil {
			s.metrics.RecordResetRejected()
		}
		slog.Warn("password reset rejected: token consumed concurrently",
			slog.String("user_id", user.ID),
		)
		return model.NewInvalidResetTokenError()
	}

	// パスワード変更後は既存セッションを全て無効化する
	if err := s.sessionRepo.DeleteByUserID(ctx, user.ID); err != nil {
		slog.Error("failed to revoke sessions after password reset",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordResetConsumed()
	}
	slog.Info("password reset completed", slog.String("user_id", user.ID))

	return nil
}
