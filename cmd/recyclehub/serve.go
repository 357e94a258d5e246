package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/recyclehub/internal/api"
	"github.com/erazemk/recyclehub/internal/cache"
	"github.com/erazemk/recyclehub/internal/config"
	"github.com/erazemk/recyclehub/internal/db"
	"github.com/erazemk/recyclehub/internal/events"
	"github.com/erazemk/recyclehub/internal/metrics"
	"github.com/erazemk/recyclehub/internal/service"
	"github.com/erazemk/recyclehub/internal/store"
	"github.com/erazemk/recyclehub/internal/store/mongodb"
	"github.com/erazemk/recyclehub/internal/store/sqlite"
	"github.com/erazemk/recyclehub/internal/upload"
	"github.com/erazemk/recyclehub/internal/web"
)

// errUsage reports a flag error already printed by the flag set.
var errUsage = errors.New("usage")

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	var envFile string
	fs.StringVar(&envFile, "env", ".env", "")
	fs.StringVar(&envFile, "e", ".env", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: recyclehub [serve] [flags]

Flags:
  -e, -env <path>   env file loaded before reading the environment (default: .env)
  -l, -log <path>   log file path (default: LOG_FILE, else stdout/stderr only)
  -h, -help         show this help and exit

Environment:
  PORT, DB_PATH, MONGODB_URI, MONGODB_DATABASE, UPLOAD_DIR, UPLOAD_MAX_BYTES,
  S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_USE_SSL,
  REDIS_ADDR, CACHE_TTL, NATS_URL, JWT_SECRET, RATE_LIMIT_RPS,
  RATE_LIMIT_BURST, TRUSTED_PROXIES, LOG_FILE
`)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if logPath == "" {
		logPath = cfg.LogFile
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	closeLog, err := setupLogger(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := serve(cfg); err != nil {
		slog.Error("server failed", "error", err)
		return err
	}
	return nil
}

func serve(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var items store.ItemStore = st
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		items = cache.NewItemStore(st, rdb, cfg.CacheTTL)
		slog.Info("item list cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	storage, uploadDir, err := openUploadStorage(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	var pub events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		nc, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer nc.Close()
		pub = nc
		slog.Info("publishing item events", "url", cfg.NATSURL)
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = st.JWTSecret(ctx)
		if err != nil {
			return fmt.Errorf("loading JWT secret: %w", err)
		}
		slog.Info("JWT_SECRET not set, using the secret stored in the database")
	}

	uploader := upload.New(storage, cfg.UploadMaxBytes)
	itemService := service.NewItemService(items, uploader, m.Publisher(pub))
	accountService := service.NewAccountService(st, jwtSecret)

	var limiter *api.RateLimiter
	var throttle func(http.Handler) http.Handler
	if cfg.RateLimitRPS > 0 {
		limiter = api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst,
			api.WithTrustedProxies(cfg.TrustedProxies))
		defer limiter.Stop()
		throttle = limiter.Middleware
	}

	// Set up routers.
	apiRouter := api.NewRouter(itemService, accountService, api.Config{
		MaxUploadBytes: cfg.UploadMaxBytes,
		RateLimiter:    limiter,
	})
	webRouter, err := web.NewRouter(itemService, accountService, web.Config{
		MaxUploadBytes: cfg.UploadMaxBytes,
		UploadDir:      uploadDir,
		Throttle:       throttle,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", healthz(st))
	mux.Handle("/", webRouter)

	handler := api.LoggingMiddleware(m.Middleware(mux))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped, closing store")
	return nil
}

// openStore connects to MongoDB when configured, otherwise opens the
// embedded SQLite database.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.MongoURI != "" {
		st, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		slog.Info("store ready", "backend", "mongodb", "database", cfg.MongoDatabase)
		return st, nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("store ready", "backend", "sqlite", "path", cfg.DBPath)
	return sqlite.New(database), nil
}

// openUploadStorage picks object storage when configured. The returned
// directory is non-empty only for local storage and is served by the web
// router.
func openUploadStorage(ctx context.Context, cfg *config.Config) (upload.Storage, string, error) {
	if cfg.S3.Endpoint != "" {
		s3, err := upload.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("connecting to object storage: %w", err)
		}
		slog.Info("uploads stored in object storage", "endpoint", cfg.S3.Endpoint, "bucket", cfg.S3.Bucket)
		return s3, "", nil
	}

	local, err := upload.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	slog.Info("uploads stored locally", "dir", cfg.UploadDir)
	return local, cfg.UploadDir, nil
}

func healthz(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status":"unavailable"}`)
			return
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	}
}
