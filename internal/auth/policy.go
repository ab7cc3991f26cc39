package auth

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/hitoshi/jobtrack/internal/model"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 8

// ValidatePassword はパスワード強度ポリシーを検証する。
// 要件: 8文字以上、大文字・小文字・数字を各1文字以上含む。
// 違反時はValidationErrorを返す。
func ValidatePassword(plaintext string) error {
	if len(plaintext) < minPasswordLength {
		return model.NewValidationError("パスワードは8文字以上で入力してください")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return model.NewValidationError("パスワードには大文字・小文字・数字をそれぞれ1文字以上含めてください")
	}

	return nil
}

// NormalizeEmail はメールアドレスを正規化（前後空白除去・小文字化）して検証する。
// 不正な形式の場合はValidationErrorを返す。
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", model.NewValidationError("メールアドレスを入力してください")
	}

	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", model.NewValidationError("メールアドレスの形式が正しくありません")
	}

	return normalized, nil
}
