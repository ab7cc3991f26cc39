// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は認証関連イベントとHTTPリクエストのメトリクスを収集する。
type Collector struct {
	loginSuccess    prometheus.Counter
	loginFail       prometheus.Counter
	registrations   prometheus.Counter
	resetRequested  prometheus.Counter
	resetConsumed   prometheus.Counter
	resetRejected   prometheus.Counter
	rateLimited     *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobtrack_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobtrack_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobtrack_registrations_total",
			Help: "ユーザー登録の合計数",
		}),
		resetRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobtrack_password_reset_requested_total",
			Help: "パスワード再設定リクエストの合計数",
		}),
		resetConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobtrack_password_reset_consumed_total",
			Help: "パスワード再設定トークン消費成功の合計数",
		}),
		resetRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobtrack_password_reset_rejected_total",
			Help: "無効・期限切れトークンによる再設定拒否の合計数",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrack_rate_limited_total",
			Help: "レート制限による拒否数（制限種別ごと）",
		}, []string{"limit_type"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrack_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobtrack_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.registrations,
		c.resetRequested,
		c.resetConsumed,
		c.resetRejected,
		c.rateLimited,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordRegistration はユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordResetRequested はパスワード再設定リクエストを記録する。
func (c *Collector) RecordResetRequested() {
	c.resetRequested.Inc()
}

// RecordResetConsumed はトークン消費成功を記録する。
func (c *Collector) RecordResetConsumed() {
	c.resetConsumed.Inc()
}

// RecordResetRejected は無効トークンによる拒否を記録する。
func (c *Collector) RecordResetRejected() {
	c.resetRejected.Inc()
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited(limitType string) {
	c.rateLimited.WithLabelValues(limitType).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
