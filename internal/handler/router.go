package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/shopfront/internal/metrics"
	"github.com/hitoshi/shopfront/internal/middleware"
)

// SessionStore はセッションミドルウェアと認証ハンドラーが共有するセッションストア。
// *session.Storeが実装する。
type SessionStore interface {
	sessions.Store
	Regenerate(r *http.Request, sess *sessions.Session) error
	Destroy(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger         *slog.Logger
	SessionStore   SessionStore
	UserFinder     middleware.UserFinder
	AllowedOrigins []string
	HSTS           bool
	MaxBodyBytes   int64
	RateLimiter    *middleware.RateLimiter
	// TrustProxy がtrueの場合はX-Forwarded-For/X-Real-IPから接続元を復元する。
	// 信頼できるリバースプロキシ配下でのみ有効にする。
	TrustProxy bool

	// メトリクス（Gathererがnilの場合は/metricsを公開しない）
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	HealthChecker HealthChecker
	Validator     RequestValidator

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	CatalogService CatalogServiceInterface
	CartService    CartServiceInterface
	OrderService   OrderServiceInterface
	ContactService ContactServiceInterface
	AdminService   AdminServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging → BodyLimit
//	  → Session → RateLimit(General)
//
// /healthと/metricsはセッションを発行しないようSession以降の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}

	r := chi.NewRouter()

	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewBodyLimitMiddleware(maxBody))

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	healthHandler := NewHealthHandler(deps.HealthChecker)
	authHandler := NewAuthHandler(deps.AuthService, deps.SessionStore, collector, deps.AuthConfig)
	catalogHandler := NewCatalogHandler(deps.CatalogService, deps.Validator)
	cartHandler := NewCartHandler(deps.CartService, deps.Validator)
	orderHandler := NewOrderHandler(deps.OrderService, deps.Validator)
	contactHandler := NewContactHandler(deps.ContactService, deps.Validator)
	adminHandler := NewAdminHandler(deps.AdminService)

	// --- セッション不要のルート ---
	r.Get("/health", healthHandler.Health)
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- セッションを解決するルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionStore, deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証ルート（OAuthフロー）
		r.Route("/auth", func(r chi.Router) {
			r.Get("/google", authHandler.Login)
			r.Get("/google/callback", authHandler.Callback)
			r.Get("/logout", authHandler.Logout)
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/auth/user", authHandler.CurrentUser)

			// カテゴリ
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", catalogHandler.ListCategories)
				r.With(middleware.RequireAdmin).Post("/", catalogHandler.CreateCategory)
			})

			// 商品
			r.Route("/products", func(r chi.Router) {
				r.Get("/", catalogHandler.ListProducts)
				r.Get("/{id}", catalogHandler.GetProduct)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", catalogHandler.CreateProduct)
					r.Put("/{id}", catalogHandler.UpdateProduct)
					r.Delete("/{id}", catalogHandler.DeleteProduct)
				})
			})

			// カート（匿名セッションでも利用可）
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.List)
				r.Post("/", cartHandler.Add)
				r.Delete("/", cartHandler.Clear)
				r.Put("/{id}", cartHandler.UpdateQuantity)
				r.Delete("/{id}", cartHandler.Remove)
			})

			// 注文
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.Create)
				r.With(middleware.RequireAuth).Get("/", orderHandler.List)
				r.With(middleware.RequireAuth).Get("/{id}", orderHandler.Get)
			})

			// お問い合わせ（送信専用レート制限を追加）
			r.Route("/contact", func(r chi.Router) {
				r.With(deps.RateLimiter.ContactMiddleware()).Post("/", contactHandler.Submit)
				r.With(middleware.RequireAdmin).Get("/", contactHandler.List)
			})

			// 管理画面
			r.With(middleware.RequireAdmin).Get("/admin/stats", adminHandler.Stats)
		})
	})

	return r
}
