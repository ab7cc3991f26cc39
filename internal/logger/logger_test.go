package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// TestSetup はJSON構造化ログの出力形式を検証する。
func TestSetup(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Info("server started", slog.String("port", "8080"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry["msg"] != "server started" {
		t.Errorf("msg = %v, want server started", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if entry["port"] != "8080" {
		t.Errorf("port = %v, want 8080", entry["port"])
	}
}

// TestSetup_SuppressesDebug はINFO未満のレベルが出力されないことを検証する。
func TestSetup_SuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Debug("verbose detail")

	if buf.Len() != 0 {
		t.Errorf("debug log must be suppressed: %s", buf.String())
	}
}
