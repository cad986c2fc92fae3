package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ricestyle/catalog-service/config"
	idxRepoPkg "github.com/ricestyle/catalog-service/internal/index/repository"
	"github.com/ricestyle/catalog-service/internal/reindex"
	reindexRepoPkg "github.com/ricestyle/catalog-service/internal/reindex/repository"
	"github.com/ricestyle/catalog-service/pkg/logger"
	"github.com/ricestyle/catalog-service/pkg/postgres"
)

// Rebuilds the filter index from the product catalog. Meant to run from cron
// or by hand after bulk catalog edits.
func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.Config{
		IsDevelopment:     true,
		Encoding:          "console",
		Level:             cfg.Logger.Level,
		DisableCaller:     true,
		DisableStacktrace: true,
	})
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

	// 4. Run the rebuild
	source := reindexRepoPkg.NewPGSource(db)
	writer := idxRepoPkg.NewPGIndex(db)
	rebuilder := reindex.NewRebuilder(source, writer, appLogger).WithBatchSize(cfg.Catalog.ReindexBatchSize)

	start := time.Now()
	stats, err := rebuilder.Run(context.Background())
	if err != nil {
		appLogger.Fatal("Index rebuild failed", zap.Error(err))
	}

	appLogger.Info("Index rebuild finished",
		zap.Int("variants", stats.Variants),
		zap.Int("facts", stats.Facts),
		zap.Int("skipped_rows", stats.SkippedRows),
		zap.Int("batches", stats.Batches),
		zap.Duration("took", time.Since(start)))
}
