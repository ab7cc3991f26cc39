package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobtrack/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	HTTPMetrics       middleware.HTTPMetricsRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 求職者データ
	ProfileService     ProfileServiceInterface
	ApplicationService ApplicationServiceInterface
	EducationService   EducationServiceInterface
	SkillService       SkillServiceInterface

	// ユーザー
	UserService UserServiceInterface

	// 運用
	MetricsHandler http.Handler
	Healthcheck    func() error
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → (ルートごと) RateLimit / Session / CSRF
//
// 認証ルート（/auth/*）はセッションミドルウェアの外に配置し、
// ログイン・登録と再設定リクエストにはそれぞれ専用のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	profileHandler := NewProfileHandler(deps.ProfileService)
	appHandler := NewApplicationHandler(deps.ApplicationService)
	eduHandler := NewEducationHandler(deps.EducationService)
	skillHandler := NewSkillHandler(deps.SkillService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)

	// --- 運用エンドポイント ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := "ok"
		code := http.StatusOK
		if deps.Healthcheck != nil {
			if err := deps.Healthcheck(); err != nil {
				slog.Error("healthcheck failed", slog.String("error", err.Error()))
				status = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証不要のルート ---

	r.Route("/auth", func(r chi.Router) {
		// ログイン・登録はログイン試行用レート制限を適用
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/register", authHandler.Register)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)

		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		// パスワード再設定（受付・確定ともに専用レート制限を適用。
		// 確定側を無制限にするとトークンの総当たりが可能になる）
		r.Route("/password-reset", func(r chi.Router) {
			r.With(deps.RateLimiter.ResetMiddleware()).Post("/request", authHandler.RequestReset)
			r.With(deps.RateLimiter.ResetMiddleware()).Post("/confirm", authHandler.ConfirmReset)
		})
	})

	// CSRFトークン取得（認証不要、SPAの初期化時に使用）
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.AuthConfig.SessionCookieName))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// パスワード変更
		r.Put("/api/password", authHandler.ChangePassword)

		// プロフィール
		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpsertProfile)
		})

		// 応募記録
		r.Route("/api/applications", func(r chi.Router) {
			r.Get("/", appHandler.ListApplications)
			r.Post("/", appHandler.CreateApplication)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", appHandler.GetApplication)
				r.Put("/", appHandler.UpdateApplication)
				r.Delete("/", appHandler.DeleteApplication)
			})
		})

		// 学歴
		r.Route("/api/educations", func(r chi.Router) {
			r.Get("/", eduHandler.ListEducations)
			r.Post("/", eduHandler.CreateEducation)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", eduHandler.UpdateEducation)
				r.Delete("/", eduHandler.DeleteEducation)
			})
		})

		// スキル
		r.Route("/api/skills", func(r chi.Router) {
			r.Get("/", skillHandler.ListSkills)
			r.Post("/", skillHandler.CreateSkill)
			r.Delete("/{id}", skillHandler.DeleteSkill)
		})

		// アカウント管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
