package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ricestyle/catalog-service/config"
	attrRepoPkg "github.com/ricestyle/catalog-service/internal/attribute/repository"
	catH "github.com/ricestyle/catalog-service/internal/catalog/handler"
	catUCPkg "github.com/ricestyle/catalog-service/internal/catalog/usecase"
	"github.com/ricestyle/catalog-service/internal/facet"
	"github.com/ricestyle/catalog-service/internal/filter"
	idxRepoPkg "github.com/ricestyle/catalog-service/internal/index/repository"
	"github.com/ricestyle/catalog-service/internal/reindex"
	listenerPkg "github.com/ricestyle/catalog-service/internal/reindex/listener"
	reindexRepoPkg "github.com/ricestyle/catalog-service/internal/reindex/repository"
	"github.com/ricestyle/catalog-service/pkg/cache"
	"github.com/ricestyle/catalog-service/pkg/logger"
	"github.com/ricestyle/catalog-service/pkg/postgres"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.Config{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Cache
	var appCache cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		appCache = redisCache
	} else {
		appLogger.Warn("Redis disabled, using in-process cache")
		appCache = cache.NewMemoryCache()
	}

	// 5. Initialize Repositories and Engines
	idx := idxRepoPkg.NewPGIndex(db)
	attrRepo := attrRepoPkg.NewPGRepository(db)
	filterEngine := filter.NewEngine(idx)
	facetEngine := facet.NewEngine(idx)

	// 6. Initialize UseCase
	catalogUC := catUCPkg.NewCatalogUseCase(attrRepo, filterEngine, facetEngine, idx, appCache, appLogger, catUCPkg.Options{
		RequestTimeout: cfg.Catalog.RequestTimeout,
	})

	// 6.5 Initialize Kafka Listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kafka.Enabled {
		source := reindexRepoPkg.NewPGSource(db)
		rebuilder := reindex.NewRebuilder(source, idx, appLogger).WithBatchSize(cfg.Catalog.ReindexBatchSize)
		catalogListener := listenerPkg.NewCatalogListener(&listenerPkg.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, appCache, rebuilder, appLogger)
		defer catalogListener.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

		go catalogListener.Start(ctx)
	}

	// 7. Initialize Handlers and Router
	catalogHandler := catH.NewCatalogHandler(catalogUC, appLogger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api/v1", func(r chi.Router) {
		catalogHandler.RegisterRoutes(r)
	})

	// 8. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
