// Package filter turns user criteria into index predicates and resolves the
// matching product and variant sets.
package filter

import (
	"context"

	"github.com/ricestyle/catalog-service/internal/index"
	"github.com/ricestyle/catalog-service/internal/model"
)

// Engine answers "which products match these filters". It owns the one
// predicate builder shared with the facet engine, so filtering and
// availability can never apply different semantics.
type Engine struct {
	idx index.Index
}

func NewEngine(idx index.Index) *Engine {
	return &Engine{idx: idx}
}

// BuildPredicate renders normalized criteria as an index predicate. When
// exclude is non-nil, that attribute's selection is left out. The facet
// engine passes the attribute it is currently rendering, so a selected value
// never hides its own siblings.
func BuildPredicate(criteria model.FilterCriteria, exclude *model.AttributeRef) index.Predicate {
	c := criteria.Normalize()
	if exclude != nil {
		c = c.WithoutAttribute(*exclude)
	}
	return index.Predicate{
		CategoryID:     c.CategoryID,
		BrandIDs:       c.BrandIDs,
		ProductTypeIDs: c.ProductTypeIDs,
		MinPrice:       c.MinPrice,
		MaxPrice:       c.MaxPrice,
		Selections:     c.Selections,
	}
}

// MatchingProductIDs returns the distinct products whose variants satisfy all
// active filters. Empty criteria yield every eligible product in the
// category. The result is a set; callers must not rely on ordering.
func (e *Engine) MatchingProductIDs(ctx context.Context, criteria model.FilterCriteria) ([]int64, error) {
	return e.idx.ProductIDs(ctx, BuildPredicate(criteria, nil))
}

// MatchingVariantIDs is the variant-level projection of the same predicate.
func (e *Engine) MatchingVariantIDs(ctx context.Context, criteria model.FilterCriteria) ([]int64, error) {
	return e.idx.VariantIDs(ctx, BuildPredicate(criteria, nil))
}

// MatchingProductStats aggregates the surviving products in one pass: minimum
// eligible price, variant count and creation time, ready for sorting and
// pagination.
func (e *Engine) MatchingProductStats(ctx context.Context, criteria model.FilterCriteria) ([]model.ProductSummary, error) {
	return e.idx.ProductStats(ctx, BuildPredicate(criteria, nil))
}
