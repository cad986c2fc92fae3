package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ricestyle/catalog-service/internal/reindex"
	"github.com/ricestyle/catalog-service/pkg/cache"
	"github.com/ricestyle/catalog-service/pkg/logger"
)

// Config holds the consumer settings for the catalog events topic.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// CatalogEvent is the envelope published by the upstream catalog writers.
type CatalogEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Payload   Payload   `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Payload carries the category the event concerns. Zero means "all".
type Payload struct {
	CategoryID int64 `json:"category_id"`
}

// Event types the listener reacts to. Stock changes only invalidate the
// short-lived base set; product changes drop everything cached for the
// category; a reindex request runs a full rebuild.
const (
	EventStockChanged     = "StockChanged"
	EventProductUpdated   = "ProductUpdated"
	EventReindexRequested = "ReindexRequested"
)

// CatalogListener consumes catalog events and keeps the cached read models
// honest between scheduled rebuilds.
type CatalogListener struct {
	reader    *kafka.Reader
	cache     cache.Cache
	rebuilder *reindex.Rebuilder
	logger    logger.Logger
}

func NewCatalogListener(cfg *Config, c cache.Cache, rebuilder *reindex.Rebuilder, log logger.Logger) *CatalogListener {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &CatalogListener{
		reader:    reader,
		cache:     c,
		rebuilder: rebuilder,
		logger:    log,
	}
}

func (l *CatalogListener) Start(ctx context.Context) {
	l.logger.Info("starting catalog events listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping catalog events listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *CatalogListener) Close() error { return l.reader.Close() }

func (l *CatalogListener) processMessage(ctx context.Context, value []byte) {
	var event CatalogEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal catalog event", zap.Error(err))
		return
	}

	switch event.EventType {
	case EventStockChanged:
		l.forget(ctx, event.Payload.CategoryID, "catalog:base:")
	case EventProductUpdated:
		l.forget(ctx, event.Payload.CategoryID, "catalog:base:", "catalog:pricerange:", "catalog:attrs:")
	case EventReindexRequested:
		l.logger.Info("reindex requested via event", zap.String("event_id", event.EventID))
		if _, err := l.rebuilder.Run(ctx); err != nil {
			l.logger.Error("event-triggered reindex failed", zap.Error(err))
			return
		}
		if err := l.cache.ForgetPrefix(ctx, "catalog:"); err != nil {
			l.logger.Warn("failed to invalidate catalog caches", zap.Error(err))
		}
	}
}

func (l *CatalogListener) forget(ctx context.Context, categoryID int64, prefixes ...string) {
	for _, prefix := range prefixes {
		var err error
		if categoryID == 0 {
			err = l.cache.ForgetPrefix(ctx, prefix)
		} else {
			err = l.cache.Forget(ctx, fmt.Sprintf("%s%d", prefix, categoryID))
		}
		if err != nil {
			l.logger.Warn("cache invalidation failed",
				zap.String("prefix", prefix),
				zap.Int64("category_id", categoryID),
				zap.Error(err),
			)
		}
	}
}
