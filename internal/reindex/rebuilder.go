package reindex

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricestyle/catalog-service/internal/index"
	"github.com/ricestyle/catalog-service/internal/model"
	"github.com/ricestyle/catalog-service/pkg/logger"
)

// DefaultBatchSize bounds memory during the bulk insert phase.
const DefaultBatchSize = 500

// Stats summarizes one rebuild run.
type Stats struct {
	Variants    int
	Facts       int
	SkippedRows int
	Batches     int
}

// Rebuilder repopulates the smart-filter index from the authoritative
// records: full truncate, then batched inserts. Rows that violate the index
// invariants (negative price or stock) are rejected here, loudly, so the
// query path never has to re-validate them. Readers querying during a run see
// a partial index; that staleness window is accepted.
type Rebuilder struct {
	source    Source
	writer    index.Writer
	logger    logger.Logger
	batchSize int
}

func NewRebuilder(source Source, writer index.Writer, log logger.Logger) *Rebuilder {
	return &Rebuilder{
		source:    source,
		writer:    writer,
		logger:    log,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize overrides the insert batch size. Values below 1 keep the
// default.
func (r *Rebuilder) WithBatchSize(n int) *Rebuilder {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Run executes one full rebuild and returns its stats.
func (r *Rebuilder) Run(ctx context.Context) (Stats, error) {
	runID := uuid.New().String()
	log := r.logger.With(zap.String("run_id", runID))

	variants, err := r.source.ListVariants(ctx)
	if err != nil {
		return Stats{}, err
	}
	log.Info("starting smart filter reindex", zap.Int("variants", len(variants)))

	if err := r.writer.Truncate(ctx); err != nil {
		return Stats{}, err
	}

	stats := Stats{Variants: len(variants)}
	batch := make([]model.VariantFact, 0, r.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.writer.InsertBatch(ctx, batch); err != nil {
			return err
		}
		stats.Facts += len(batch)
		stats.Batches++
		batch = batch[:0]
		return nil
	}

	for _, v := range variants {
		facts, skipped := r.expand(v, log)
		stats.SkippedRows += skipped
		for _, f := range facts {
			batch = append(batch, f)
			if len(batch) >= r.batchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}

	log.Info("smart filter reindex finished",
		zap.Int("facts", stats.Facts),
		zap.Int("batches", stats.Batches),
		zap.Int("skipped_rows", stats.SkippedRows),
	)
	return stats, nil
}

// expand turns one source variant into its fact rows: one per system
// attribute the variant has, one per custom property value on the product.
func (r *Rebuilder) expand(v SourceVariant, log logger.Logger) ([]model.VariantFact, int) {
	if v.Price < 0 || v.Stock < 0 {
		log.Warn("skipping variant violating index invariants",
			zap.Int64("variant_id", v.VariantID),
			zap.Float64("price", v.Price),
			zap.Int("stock", v.Stock),
		)
		return nil, 1
	}

	base := model.VariantFact{
		ProductID:        v.ProductID,
		VariantID:        v.VariantID,
		CategoryID:       v.CategoryID,
		BrandID:          v.BrandID,
		ProductTypeID:    v.ProductTypeID,
		Price:            v.Price,
		StockQuantity:    v.Stock,
		IsActive:         v.IsActive,
		ProductCreatedAt: v.ProductCreatedAt,
	}

	facts := make([]model.VariantFact, 0, 3+len(v.PropertyValues))
	system := []struct {
		ref     model.AttributeRef
		valueID int64
	}{
		{model.Color(), v.ColorID},
		{model.Size(), v.SizeID},
		{model.Gender(), v.GenderID},
	}
	for _, sys := range system {
		if sys.valueID == 0 {
			continue
		}
		f := base
		f.AttributeRef = sys.ref
		f.ValueID = sys.valueID
		facts = append(facts, f)
	}

	for _, pv := range v.PropertyValues {
		f := base
		f.AttributeRef = model.CustomProperty(pv.PropertyID)
		f.ValueID = pv.ValueID
		facts = append(facts, f)
	}
	return facts, 0
}
