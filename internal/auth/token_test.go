package auth

import (
	"encoding/hex"
	"testing"
)

// TestGenerateResetToken はトークンが256ビットのhex文字列であることを検証する。
func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}

	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 (32 bytes hex encoded)", len(token))
	}

	decoded, err := hex.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not valid hex: %v", err)
	}
	if len(decoded) != 32 {
		t.Errorf("decoded length = %d bytes, want 32", len(decoded))
	}
}

// TestGenerateResetToken_Unique は連続生成したトークンが重複しないことを検証する。
func TestGenerateResetToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateResetToken()
		if err != nil {
			t.Fatalf("GenerateResetToken returned error: %v", err)
		}
		if seen[token] {
			t.Fatal("generated a duplicate token")
		}
		seen[token] = true
	}
}

// TestGenerateSessionID はセッションIDがトークンと同じ強度であることを検証する。
func TestGenerateSessionID(t *testing.T) {
	id, err := generateSessionID()
	if err != nil {
		t.Fatalf("generateSessionID returned error: %v", err)
	}
	if len(id) != 64 {
		t.Errorf("session ID length = %d, want 64", len(id))
	}
	if _, err := hex.DecodeString(id); err != nil {
		t.Errorf("session ID is not valid hex: %v", err)
	}
}
