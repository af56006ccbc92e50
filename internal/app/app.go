package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/shopfront/internal/admin"
	"github.com/hitoshi/shopfront/internal/auth"
	"github.com/hitoshi/shopfront/internal/cart"
	"github.com/hitoshi/shopfront/internal/catalog"
	"github.com/hitoshi/shopfront/internal/config"
	"github.com/hitoshi/shopfront/internal/contact"
	"github.com/hitoshi/shopfront/internal/database"
	"github.com/hitoshi/shopfront/internal/handler"
	"github.com/hitoshi/shopfront/internal/logger"
	"github.com/hitoshi/shopfront/internal/metrics"
	"github.com/hitoshi/shopfront/internal/middleware"
	"github.com/hitoshi/shopfront/internal/order"
	"github.com/hitoshi/shopfront/internal/repository"
	"github.com/hitoshi/shopfront/internal/security"
	"github.com/hitoshi/shopfront/internal/session"
	"github.com/hitoshi/shopfront/internal/validation"
	"github.com/hitoshi/shopfront/internal/worker/cleanup"
)

const (
	// shutdownTimeout はグレースフルシャットダウンの待ち時間。
	shutdownTimeout = 30 * time.Second
	// sessionJanitorInterval はメモリセッションストアの期限切れ掃除間隔。
	sessionJanitorInterval = 10 * time.Minute
	// defaultPort はPORT未設定時の待ち受けポート。
	defaultPort = "5000"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、LOG_LEVELに従ったJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで組み直す
	logger.SetupDefault(w, cfg.SlogLevel())

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = defaultPort
		}
		return runHealthcheck(healthcheckURL(port))
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.Port),
		slog.String("app_env", cfg.AppEnv),
		slog.String("frontend_url", cfg.FrontendURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()
	log := slog.Default()

	// 1. DB接続
	db, err := database.Connect(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	categoryRepo := repository.NewPostgresCategoryRepo(db)
	productRepo := repository.NewPostgresProductRepo(db)
	cartRepo := repository.NewPostgresCartRepo(db)
	orderRepo := repository.NewPostgresOrderRepo(db)
	contactRepo := repository.NewPostgresContactRepo(db)

	// 3. セッションストアの初期化（本番かつREDIS_URL設定時のみRedis）
	backend := session.NewBackend(ctx, session.StoreConfig{
		RedisURL:        cfg.RedisURL,
		Production:      cfg.IsProduction(),
		JanitorInterval: sessionJanitorInterval,
	}, log)
	defer backend.Close()

	sessionStore := session.NewStore(backend, session.Options{
		Secret: cfg.SessionSecret,
		MaxAge: cfg.SessionMaxAge,
		Secure: cfg.IsProduction(),
	})

	// 4. 共通コンポーネントの初期化
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	sanitizer := security.NewContentSanitizer()
	validator := validation.New()

	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitContact),
	)
	defer rateLimiter.Stop()

	// 5. ドメインサービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		CallbackURL:  cfg.GoogleCallbackURL,
	})
	authService := auth.NewService(oauthProvider, userRepo, auth.ServiceConfig{
		AdminEmails: cfg.AdminEmails,
	})

	catalogService := catalog.NewService(categoryRepo, productRepo, sanitizer)
	cartService := cart.NewService(cartRepo, productRepo)
	orderService := order.NewService(orderRepo, cartRepo, collector)
	contactService := contact.NewService(contactRepo, sanitizer)
	adminService := admin.NewService(productRepo, orderRepo, contactRepo)

	// 6. ルーターの構築
	allowedOrigins := cfg.AllowedOrigins()
	deps := &handler.RouterDeps{
		Logger:          log,
		SessionStore:    sessionStore,
		UserFinder:      authService,
		AllowedOrigins:  allowedOrigins,
		HSTS:            cfg.IsProduction(),
		MaxBodyBytes:    middleware.DefaultMaxBodyBytes,
		RateLimiter:     rateLimiter,
		TrustProxy:      cfg.TrustProxy,
		Metrics:         collector,
		MetricsGatherer: prometheus.DefaultGatherer,
		HealthChecker:   db,
		Validator:       validator,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			FrontendURL:    cfg.FrontendURL,
			AllowedOrigins: allowedOrigins,
			CookieSecure:   cfg.IsProduction(),
		},

		CatalogService: catalogService,
		CartService:    cartService,
		OrderService:   orderService,
		ContactService: contactService,
		AdminService:   adminService,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server listen failed: %w", err)
	case <-stop:
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、放置された匿名カートのクリーンアップを日次で実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. DB接続（ワーカーは並列度が低いため小さいプールで十分）
	db, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	cartRepo := repository.NewPostgresCartRepo(db)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	cleanupJob := cleanup.NewCartCleanupJob(cartRepo, slog.Default(), collector)
	cleanupJob.RetentionDays = cfg.CartRetentionDays

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	go func() {
		select {
		case <-stop:
			slog.Info("shutting down worker...")
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cleanup.DefaultInterval),
		slog.Int("cart_retention_days", cfg.CartRetentionDays),
	)

	// クリーンアップジョブをメインgoroutineで実行（ブロッキング）
	cleanupJob.Start(ctx, cleanup.DefaultInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	result, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("from_version", uint64(result.From)),
		slog.Uint64("to_version", uint64(result.To)),
		slog.Bool("applied", result.Applied()),
	)
	return nil
}

// healthcheckURL はローカルで動作するサーバーのヘルスチェックURLを返す。
func healthcheckURL(port string) string {
	return fmt.Sprintf("http://localhost:%s/health", port)
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、200以外はエラーとする。
func runHealthcheck(target string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードを伏せ字にする。
// パースできないURLは全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
