package mail

import (
	"context"
	"log/slog"
)

// LogMailer は実際には送信せず、再設定リンクをログに出力するMailerの実装。
// SENDGRID_API_KEYが未設定の開発環境で使用する。
type LogMailer struct {
	baseURL string
}

// NewLogMailer はLogMailerを生成する。
func NewLogMailer(baseURL string) *LogMailer {
	return &LogMailer{baseURL: baseURL}
}

// SendPasswordReset は再設定リンクをログに出力する。
func (m *LogMailer) SendPasswordReset(_ context.Context, toEmail, token string) error {
	slog.Info("password reset mail (log only)",
		slog.String("to", toEmail),
		slog.String("reset_url", buildResetURL(m.baseURL, token)),
	)
	return nil
}

// compile-time interface check
var _ Mailer = (*LogMailer)(nil)
