// Package model はドメインモデルを定義する。
package model

import "time"

// User は求職者アカウントの認証情報を表す。
// ResetTokenとResetTokenExpiryは必ず同時に設定・同時にクリアされる
// （DBのCHECK制約でも保証される）。
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	ResetToken       *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Session はユーザーのログインセッションを表す。
// クライアントはHTTP Only CookieでセッションIDのみを保持する。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
