package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-ledger/internal/config"
	"github.com/sbilibin2017/gw-ledger/internal/handlers"
	"github.com/sbilibin2017/gw-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/migrations"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
	"github.com/sbilibin2017/gw-ledger/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sbilibin2017/gw-ledger/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-ledger API
// @version 1.0.0
// @description User accounts and a personal transaction ledger
// @host localhost:5500
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// dependencies are the collaborators the services are built from. Optional
// ones stay nil when their backend is not configured.
type dependencies struct {
	userReader  services.UserReader
	userWriter  services.UserWriter
	txWriter    services.TransactionWriter
	txReader    services.TransactionReader
	pinger      handlers.Pinger
	cache       services.BalanceCache
	revocations services.RevocationList
	kafkaWriter services.KafkaWriter
	closers     []func() error
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.Log.Warnw("failed to close dependency", "error", err)
		}
	}
}

// openStore connects the configured store and fills in the repositories.
func openStore(ctx context.Context, cfg *config.Config, deps *dependencies) error {
	if cfg.StorageDriver == config.StorageMemory {
		store := repositories.NewMemoryStore()
		deps.userReader, deps.userWriter = store.Users(), store.Users()
		deps.txWriter, deps.txReader = store.Transactions(), store.Transactions()
		deps.pinger = store
		logger.Log.Warn("Using in-memory storage, data is lost on restart")
		return nil
	}

	logger.Log.Info("Connecting to PostgreSQL")
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	deps.closers = append(deps.closers, db.Close)
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := migrations.Up(ctx, db.DB); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	deps.userReader = repositories.NewUserReadRepository(db, cfg.StoreTimeout)
	deps.userWriter = repositories.NewUserWriteRepository(db, cfg.StoreTimeout)
	deps.txWriter = repositories.NewTransactionWriteRepository(db, cfg.StoreTimeout)
	deps.txReader = repositories.NewTransactionReadRepository(db, cfg.StoreTimeout)
	deps.pinger = db
	return nil
}

// openRedis enables the balance cache and the shared revocation list. Without
// Redis tokens are revoked in process memory and balances are always summed.
func openRedis(ctx context.Context, cfg *config.Config, deps *dependencies) error {
	if !cfg.RedisEnabled() {
		deps.revocations = repositories.NewMemoryRevocationList()
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	deps.closers = append(deps.closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}

	deps.cache = repositories.NewBalanceCacheRepository(rdb, cfg.BalanceCacheTTL)
	deps.revocations = repositories.NewTokenRevocationRepository(rdb)
	logger.Log.Infof("Connected to Redis at %s", cfg.RedisAddr())
	return nil
}

func openKafka(cfg *config.Config, deps *dependencies) {
	if !cfg.KafkaEnabled() {
		return
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	deps.kafkaWriter = w
	deps.closers = append(deps.closers, w.Close)
	logger.Log.Infof("Publishing transaction events to %s", cfg.KafkaTopic)
}

func buildDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}
	if err := openStore(ctx, cfg, deps); err != nil {
		deps.Close()
		return nil, err
	}
	if err := openRedis(ctx, cfg, deps); err != nil {
		deps.Close()
		return nil, err
	}
	openKafka(cfg, deps)
	return deps, nil
}

// newRouter wires services, handlers and middlewares into the HTTP router.
func newRouter(cfg *config.Config, deps *dependencies) http.Handler {
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecretKey),
		jwt.WithExpiration(cfg.JWTExpiration),
	)

	authService := services.NewAuthService(
		deps.userReader, deps.userWriter, tokens, deps.revocations,
		cfg.BcryptCost, cfg.StoreRetryBackoff,
	)
	ledgerService := services.NewLedgerService(
		deps.txWriter, deps.txReader, deps.cache, deps.kafkaWriter,
		cfg.StoreRetryBackoff,
	)

	authLimiter := middlewares.PerMinute(cfg.AuthRequestsPerMinute)

	r := chi.NewRouter()
	r.Use(middlewares.Recoverer(cfg.IsDevelopment()))
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middlewares.LoggingMiddleware(logger.Log))
	r.Use(middlewares.Prometheus)
	r.Use(chimiddleware.CleanPath)
	r.Use(middlewares.SecurityHeaders)
	r.Use(middlewares.CORS(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBytes(cfg.MaxBodyBytes))

	r.NotFound(handlers.NewStaticHandler(cfg.StaticDir))
	r.MethodNotAllowed(handlers.NewMethodNotAllowedHandler())

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/users/register", handlers.NewRegisterHandler(authService))
		r.Post("/users/login", handlers.NewLoginHandler(authService))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(tokens, authService))
		r.Post("/users/logout", handlers.NewLogoutHandler(authService))
		r.Post("/transactions", handlers.NewCreateTransactionHandler(ledgerService))
		r.Get("/transactions", handlers.NewListTransactionsHandler(ledgerService))
		r.Get("/transactions/balance", handlers.NewGetBalanceHandler(ledgerService))
	})

	r.Get("/health", handlers.NewHealthHandler(deps.pinger))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// run initializes the logger and the backends, serves HTTP and shuts down
// gracefully when ctx is cancelled or a termination signal arrives.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel, cfg.IsDevelopment()); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)
	handlers.SetDevelopment(cfg.IsDevelopment())

	deps, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
