package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInvalidResetToken   = "INVALID_RESET_TOKEN"
	ErrCodeValidationError     = "VALIDATION_ERROR"
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeProfileNotFound     = "PROFILE_NOT_FOUND"
	ErrCodeApplicationNotFound = "APPLICATION_NOT_FOUND"
	ErrCodeEducationNotFound   = "EDUCATION_NOT_FOUND"
	ErrCodeSkillNotFound       = "SKILL_NOT_FOUND"
)

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレス不明とパスワード不一致は意図的に区別しない
// （アカウント列挙攻撃の防止）。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidResetTokenError は再設定トークンが不明・消費済み・期限切れの
// 場合のエラーを生成する。3つのケースは意図的に区別しない。
func NewInvalidResetTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidResetToken,
		Message:  "パスワード再設定リンクが無効か、有効期限が切れています。",
		Category: "auth",
		Action:   "パスワード再設定を最初からやり直してください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationError,
		Message:  fmt.Sprintf("入力値が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を修正して再度お試しください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエスト回数が制限を超えました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewProfileNotFoundError はプロフィール未作成エラーを生成する。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  "プロフィールがまだ作成されていません。",
		Category: "validation",
		Action:   "プロフィールを作成してください。",
	}
}

// NewApplicationNotFoundError は応募記録が見つからない場合のエラーを生成する。
// 他ユーザーの所有する記録も同じエラーになる（存在の確認を許さない）。
func NewApplicationNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeApplicationNotFound,
		Message:  fmt.Sprintf("指定された応募記録が見つかりません: %s", id),
		Category: "validation",
		Action:   "応募記録のIDを確認してください。",
	}
}

// NewEducationNotFoundError は学歴記録が見つからない場合のエラーを生成する。
func NewEducationNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeEducationNotFound,
		Message:  fmt.Sprintf("指定された学歴記録が見つかりません: %s", id),
		Category: "validation",
		Action:   "学歴記録のIDを確認してください。",
	}
}

// NewSkillNotFoundError はスキル記録が見つからない場合のエラーを生成する。
func NewSkillNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeSkillNotFound,
		Message:  fmt.Sprintf("指定されたスキルが見つかりません: %s", id),
		Category: "validation",
		Action:   "スキルのIDを確認してください。",
	}
}
