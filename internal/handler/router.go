package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/sojourn/internal/metrics"
	"github.com/hitoshi/sojourn/internal/middleware"
)

// HealthPinger はヘルスチェックで使用するデータベース疎通確認のインターフェース。
// *sql.DBが満たす。
type HealthPinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	Cookie            middleware.CookieConfig
	SessionValidator  middleware.SessionValidator
	RateLimiter       *middleware.RateLimiter

	// サービス
	AuthService     AuthServiceInterface
	LocationService LocationServiceInterface
	JourneyService  JourneyServiceInterface
	LogService      LogServiceInterface
	UserService     UserServiceInterface

	// 運用系
	DB              HealthPinger
	StatusRecorder  middleware.HTTPStatusRecorder
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics → CSRF → Session
//
// /auth のログイン・サインアップにはIP単位のレート制限を追加する。
// /api/* はRequireSessionとユーザー単位のレート制限で保護する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
	r.Use(middleware.NewSessionMiddleware(deps.SessionValidator, deps.Cookie))

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookie)
	locationHandler := NewLocationHandler(deps.LocationService)
	journeyHandler := NewJourneyHandler(deps.JourneyService)
	logHandler := NewLogHandler(deps.LogService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 運用系エンドポイント ---

	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}
	r.Handle("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証ルート ---
	// ログイン・サインアップは未認証リクエストのため、IP単位のレート制限を適用する。
	r.Route("/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/signup", authHandler.SignUp)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 地点管理
		r.Route("/api/locations", func(r chi.Router) {
			r.Post("/", locationHandler.Create)
			r.Get("/", locationHandler.List)
			r.Get("/{id}", locationHandler.Get)
		})

		// 旅程管理
		r.Route("/api/journeys", func(r chi.Router) {
			r.Post("/", journeyHandler.Create)
			r.Get("/", journeyHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", journeyHandler.Get)
				r.Get("/logs", journeyHandler.ListLogs)
			})
		})

		// 記録管理
		r.Route("/api/logs", func(r chi.Router) {
			r.Post("/", logHandler.Create)
			r.Get("/", logHandler.List)
			r.Get("/{id}", logHandler.Get)
		})

		// ユーザー管理とフォローグラフ
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetProfile)
				r.Put("/follow", userHandler.Follow)
				r.Delete("/follow", userHandler.Unfollow)
				r.Get("/followers", userHandler.ListFollowers)
				r.Get("/following", userHandler.ListFollowing)
			})
		})
	})

	return r
}

// NewHealthHandler はデータベース疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(db HealthPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
