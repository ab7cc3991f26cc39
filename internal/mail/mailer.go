// Package mail はパスワード再設定メールの送信を提供する。
package mail

import (
	"context"
	"fmt"
	"net/url"
)

// Mailer はメール送信のインターフェース。
type Mailer interface {
	// SendPasswordReset は再設定リンクを埋め込んだメールを送信する。
	SendPasswordReset(ctx context.Context, toEmail, token string) error
}

// buildResetURL は再設定リンクのURLを組み立てる。
// トークンはクエリパラメータとしてURLエンコードされる。
func buildResetURL(baseURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", baseURL, url.QueryEscape(token))
}

// resetMailSubject は再設定メールの件名。
const resetMailSubject = "パスワード再設定のご案内"

// buildResetMailText は再設定メールのプレーンテキスト本文を組み立てる。
func buildResetMailText(resetURL string) string {
	return "パスワード再設定のリクエストを受け付けました。\n\n" +
		"以下のリンクから新しいパスワードを設定してください。\n" +
		resetURL + "\n\n" +
		"このリンクは1時間有効で、1回のみ使用できます。\n" +
		"心当たりがない場合は、このメールを無視してください。\n"
}

// buildResetMailHTML は再設定メールのHTML本文を組み立てる。
func buildResetMailHTML(resetURL string) string {
	return `<p>パスワード再設定のリクエストを受け付けました。</p>
<p>以下のリンクから新しいパスワードを設定してください。</p>
<p><a href="` + resetURL + `">パスワードを再設定する</a></p>
<p>このリンクは1時間有効で、1回のみ使用できます。<br>
心当たりがない場合は、このメールを無視してください。</p>`
}
