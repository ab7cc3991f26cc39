package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer はSendGrid API経由でメールを送信するMailerの実装。
type SendGridMailer struct {
	client  *sendgrid.Client
	from    *sgmail.Email
	baseURL string
}

// NewSendGridMailer はSendGridMailerを生成する。
// baseURLは再設定リンクの生成に使用する。
func NewSendGridMailer(apiKey, fromAddress, fromName, baseURL string) *SendGridMailer {
	return &SendGridMailer{
		client:  sendgrid.NewSendClient(apiKey),
		from:    sgmail.NewEmail(fromName, fromAddress),
		baseURL: baseURL,
	}
}

// SendPasswordReset は再設定リンクを埋め込んだメールを送信する。
func (m *SendGridMailer) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	resetURL := buildResetURL(m.baseURL, token)

	message := sgmail.NewSingleEmail(
		m.from,
		resetMailSubject,
		sgmail.NewEmail("", toEmail),
		buildResetMailText(resetURL),
		buildResetMailHTML(resetURL),
	)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send mail via sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}

// compile-time interface check
var _ Mailer = (*SendGridMailer)(nil)
