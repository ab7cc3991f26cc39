package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestBuildResetURL は再設定リンクの組み立てを検証する。
func TestBuildResetURL(t *testing.T) {
	got := buildResetURL("http://localhost:8080", "abc123")
	want := "http://localhost:8080/reset-password?token=abc123"
	if got != want {
		t.Errorf("buildResetURL() = %q, want %q", got, want)
	}
}

// TestBuildResetURL_EscapesToken はトークンがURLエンコードされることを検証する。
func TestBuildResetURL_EscapesToken(t *testing.T) {
	got := buildResetURL("http://localhost:8080", "a+b/c=")
	if strings.Contains(got, "a+b/c=") {
		t.Errorf("token must be URL-encoded: %q", got)
	}
	if !strings.Contains(got, "a%2Bb%2Fc%3D") {
		t.Errorf("unexpected encoding: %q", got)
	}
}

// TestBuildResetMailBodies はメール本文に再設定リンクが含まれることを検証する。
func TestBuildResetMailBodies(t *testing.T) {
	resetURL := "https://jobtrack.example.com/reset-password?token=abc123"

	text := buildResetMailText(resetURL)
	if !strings.Contains(text, resetURL) {
		t.Error("text body must contain the reset URL")
	}

	html := buildResetMailHTML(resetURL)
	if !strings.Contains(html, `href="`+resetURL+`"`) {
		t.Error("HTML body must link to the reset URL")
	}
}

// TestLogMailer はLogMailerが送信せずにリンクをログ出力することを検証する。
func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(original)

	m := NewLogMailer("http://localhost:8080")
	if err := m.SendPasswordReset(context.Background(), "alice@example.com", "token123"); err != nil {
		t.Fatalf("SendPasswordReset() error = %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry["to"] != "alice@example.com" {
		t.Errorf("to = %v, want alice@example.com", entry["to"])
	}
	resetURL, _ := entry["reset_url"].(string)
	if !strings.Contains(resetURL, "token=token123") {
		t.Errorf("reset_url = %q, must contain the token", resetURL)
	}
}
