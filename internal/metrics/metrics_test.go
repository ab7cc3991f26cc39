package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestCollector_Counters は各カウンタの記録を検証する。
func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess()
	c.RecordLoginSuccess()
	c.RecordLoginFailure()
	c.RecordRegistration()
	c.RecordResetRequested()
	c.RecordResetConsumed()
	c.RecordResetRejected()

	if got := testutil.ToFloat64(c.loginSuccess); got != 2 {
		t.Errorf("login success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.loginFail); got != 1 {
		t.Errorf("login fail = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.registrations); got != 1 {
		t.Errorf("registrations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.resetRequested); got != 1 {
		t.Errorf("reset requested = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.resetConsumed); got != 1 {
		t.Errorf("reset consumed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.resetRejected); got != 1 {
		t.Errorf("reset rejected = %v, want 1", got)
	}
}

// TestCollector_RateLimited は制限種別ごとのラベル付きカウンタを検証する。
func TestCollector_RateLimited(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRateLimited("login")
	c.RecordRateLimited("login")
	c.RecordRateLimited("password_reset")

	if got := testutil.ToFloat64(c.rateLimited.WithLabelValues("login")); got != 2 {
		t.Errorf("rate limited (login) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.rateLimited.WithLabelValues("password_reset")); got != 1 {
		t.Errorf("rate limited (password_reset) = %v, want 1", got)
	}
}

// TestCollector_HTTPStatus はステータスコード別カウンタを検証する。
func TestCollector_HTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("200")); got != 2 {
		t.Errorf("http status (200) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("404")); got != 1 {
		t.Errorf("http status (404) = %v, want 1", got)
	}
}

// TestHandler はスクレイプエンドポイントが登録済みメトリクスを公開することを検証する。
func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess()
	c.RecordRequestLatency(50 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "jobtrack_login_success_total 1") {
		t.Errorf("scrape output must contain login success counter:\n%s", body)
	}
	if !strings.Contains(body, "jobtrack_request_latency_seconds") {
		t.Errorf("scrape output must contain latency histogram:\n%s", body)
	}
}
