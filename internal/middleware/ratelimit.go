package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/jobtrack/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	LoginRate       rate.Limit    // ログイン・登録試行のレート（req/sec）
	LoginBurst      int           // ログイン・登録試行のバーストサイズ
	ResetRate       rate.Limit    // 再設定リクエストのレート（req/sec）
	ResetBurst      int           // 再設定リクエストのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 要件: ログイン試行 10 req/min/IP、再設定リクエスト 5 req/min/IP
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		LoginRate:       rate.Limit(10.0 / 60.0),
		LoginBurst:      10,
		ResetRate:       rate.Limit(5.0 / 60.0),
		ResetBurst:      5,
		CleanupInterval: 5 * time.Minute,
	}
}

// RateLimitRecorder はレート制限拒否のメトリクス記録インターフェース。
type RateLimitRecorder interface {
	RecordRateLimited(limitType string)
}

// clientLimiter はクライアントごとのレートリミッターとアクセス時刻を保持する。
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter はクライアントIPごとのレート制限を管理する。
// ログイン試行用と再設定リクエスト用の2種類を提供する。
// カウンタはプロセス内のみで保持する（再起動でリセットされるベストエフォート）。
type RateLimiter struct {
	config  RateLimiterConfig
	metrics RateLimitRecorder

	loginMu       sync.RWMutex
	loginLimiters map[string]*clientLimiter

	resetMu       sync.RWMutex
	resetLimiters map[string]*clientLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
// metricsはnilを許容する。
func NewRateLimiter(config RateLimiterConfig, metrics RateLimitRecorder) *RateLimiter {
	rl := &RateLimiter{
		config:        config,
		metrics:       metrics,
		loginLimiters: make(map[string]*clientLimiter),
		resetLimiters: make(map[string]*clientLimiter),
		stopCh:        make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// LoginMiddleware はログイン・登録試行のレート制限ミドルウェアを返す。
// クライアントIPをキーとして使用するため、認証前のルートに配置できる。
func (rl *RateLimiter) LoginMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			limiter := rl.getOrCreateLimiter(&rl.loginMu, rl.loginLimiters, key, rl.config.LoginRate, rl.config.LoginBurst)

			if !limiter.Allow() {
				rl.reject(w, rl.config.LoginRate, "login", key)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ResetMiddleware は再設定リクエスト専用のレート制限ミドルウェアを返す。
// ログイン試行のレート制限とは独立に動作する。
func (rl *RateLimiter) ResetMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			limiter := rl.getOrCreateLimiter(&rl.resetMu, rl.resetLimiters, key, rl.config.ResetRate, rl.config.ResetBurst)

			if !limiter.Allow() {
				rl.reject(w, rl.config.ResetRate, "password_reset", key)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginLimiterCount は現在管理されているログイン用リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) LoginLimiterCount() int {
	rl.loginMu.RLock()
	defer rl.loginMu.RUnlock()
	return len(rl.loginLimiters)
}

// ResetLimiterCount は現在管理されている再設定用リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) ResetLimiterCount() int {
	rl.resetMu.RLock()
	defer rl.resetMu.RUnlock()
	return len(rl.resetLimiters)
}

// getOrCreateLimiter はキーに対応するリミッターを取得または作成する。
func (rl *RateLimiter) getOrCreateLimiter(
	mu *sync.RWMutex,
	limiters map[string]*clientLimiter,
	key string,
	r rate.Limit,
	burst int,
) *rate.Limiter {
	mu.RLock()
	cl, exists := limiters[key]
	mu.RUnlock()

	if exists {
		mu.Lock()
		cl.lastAccess = time.Now()
		mu.Unlock()
		return cl.limiter
	}

	mu.Lock()
	defer mu.Unlock()

	// ダブルチェック
	if cl, exists := limiters[key]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(r, burst)
	limiters[key] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// reject は429レスポンスを書き込み、メトリクスとログに記録する。
func (rl *RateLimiter) reject(w http.ResponseWriter, r rate.Limit, limitType, key string) {
	if rl.metrics != nil {
		rl.metrics.RecordRateLimited(limitType)
	}
	slog.Warn("rate limit exceeded",
		slog.String("client_ip", key),
		slog.String("limit_type", limitType),
	)
	writeRateLimitResponse(w, r)
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.loginMu.Lock()
	for key, cl := range rl.loginLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.loginLimiters, key)
		}
	}
	rl.loginMu.Unlock()

	rl.resetMu.Lock()
	for key, cl := range rl.resetLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.resetLimiters, key)
		}
	}
	rl.resetMu.Unlock()
}

// clientIP はリクエストからクライアントIPを取り出す。
// リバースプロキシ背後ではX-Forwarded-Forの先頭の値を使用し、
// 無ければRemoteAddrのホスト部を使用する。
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	// Retry-Afterの算出: 1トークンが補充されるまでの秒数
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, model.NewRateLimitExceededError())
}
