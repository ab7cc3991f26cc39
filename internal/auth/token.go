package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateResetToken はパスワード再設定用のトークンを生成する。
// crypto/randから32バイト（256ビット）を読み取り、hexエンコードして返す。
// タイムスタンプやユーザー情報など推測可能な入力は一切使用しない。
// 永続化は呼び出し側の責務。
func GenerateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
