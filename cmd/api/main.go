package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/cp-analyzer/internal/application"
	appassess "github.com/bryanwahyu/cp-analyzer/internal/application/assessments"
	appauth "github.com/bryanwahyu/cp-analyzer/internal/application/auth"
	appfeedback "github.com/bryanwahyu/cp-analyzer/internal/application/feedback"
	appfiles "github.com/bryanwahyu/cp-analyzer/internal/application/files"
	appredraft "github.com/bryanwahyu/cp-analyzer/internal/application/redraft"
	apptriage "github.com/bryanwahyu/cp-analyzer/internal/application/triage"
	"github.com/bryanwahyu/cp-analyzer/internal/config"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/storage"
	openaiclient "github.com/bryanwahyu/cp-analyzer/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/cp-analyzer/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/cp-analyzer/internal/infra/db/postgres"
	"github.com/bryanwahyu/cp-analyzer/internal/infra/httpserver"
	"github.com/bryanwahyu/cp-analyzer/internal/infra/kv"
	minioStore "github.com/bryanwahyu/cp-analyzer/internal/infra/storage"
	"github.com/bryanwahyu/cp-analyzer/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// connect MySQL (durable key/value state)
	db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		logger.Fatal("mysql connect error", zap.Error(err))
	}
	defer db.Close()
	kvStore := mysqlp.NewKVStore(db, logger)

	// connect Postgres (feedback table)
	pgdb, err := postgresp.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("postgres connect error", zap.Error(err))
	}
	defer pgdb.Close()
	feedbackRepo := postgresp.NewFeedbackRepository(pgdb)

	// session store: Redis when configured, in-process otherwise
	sessionTTL := time.Duration(cfg.Auth.SessionTTLMinutes) * time.Minute
	var sessions storage.Store
	var redisStore *kv.RedisStore
	if cfg.Redis.Addr != "" {
		redisStore, err = kv.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sessionTTL, logger)
		if err != nil {
			logger.Fatal("redis connect error", zap.Error(err))
		}
		sessions = redisStore
	} else {
		logger.Warn("no redis configured, sessions are in-process only")
		sessions = kv.NewMemoryStore()
	}

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Fatal("minio init error", zap.Error(err))
	}

	clock := application.SystemClock{}

	// init services
	assessSvc := &appassess.Service{KV: kvStore, Docs: store, Clock: clock, Log: logger}
	triageSvc := &apptriage.Service{KV: kvStore, Log: logger}
	filesSvc := appfiles.NewService(store, clock, logger)
	feedbackSvc := &appfeedback.Service{Repo: feedbackRepo, Clock: clock}
	redraftSvc := &appredraft.Service{
		Suggester: openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
		Log:       logger,
	}
	authSvc := &appauth.Service{Sessions: sessions}

	// health checks
	checkers := map[string]middleware.HealthChecker{
		"mysql":    &middleware.DatabaseHealthChecker{DB: db},
		"postgres": &middleware.DatabaseHealthChecker{DB: pgdb},
		"minio":    &middleware.PingHealthChecker{Ping: store.HealthCheck},
	}
	if redisStore != nil {
		checkers["redis"] = &middleware.PingHealthChecker{Ping: redisStore.Ping}
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.LoggingMiddleware(logger))
	mux.Use(middleware.SessionAuth(authSvc))
	mux.Use(middleware.RateLimitMiddleware(60, 10))
	mux.Mount("/", httpserver.NewRouter(
		assessSvc, triageSvc, filesSvc, feedbackSvc, redraftSvc, authSvc,
		middleware.HealthHandler(checkers),
	))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
