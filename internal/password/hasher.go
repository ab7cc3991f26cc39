// Package password はパスワードの一方向ハッシュ化と照合を提供する。
// ハッシュにはbcryptを使用し、ソルトは出力に埋め込まれる。
package password

import "golang.org/x/crypto/bcrypt"

// Hasher はパスワードのハッシュ化・照合のインターフェース。
type Hasher interface {
	// Hash は平文パスワードをハッシュ化する。ソルトは内部で生成されるため、
	// 同じ入力でも毎回異なる出力になる。
	Hash(plaintext string) (string, error)

	// Verify は平文パスワードとハッシュを照合する。
	// 不一致または不正な形式のハッシュに対してはfalseを返す（errorは返さない）。
	Verify(plaintext, hash string) bool
}

// BcryptHasher はbcryptによるHasherの実装。
// コストファクタはブルートフォース耐性のため意図的に高く設定する。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// costが有効範囲外の場合はbcrypt.DefaultCostを使用する。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash は平文パスワードをbcryptでハッシュ化する。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify は平文パスワードとbcryptハッシュを定数時間で照合する。
// 不正な形式のハッシュはfalseとして扱う。
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// compile-time interface check
var _ Hasher = (*BcryptHasher)(nil)
