package index

import (
	"context"

	"github.com/ricestyle/catalog-service/internal/model"
)

// Predicate is the conjunction every index query evaluates: category
// membership, brand/type grouping, inclusive price bounds and zero or more
// attribute-value semi-joins. Eligibility (active, stock > 0) is always
// implied and never optional.
//
// Each entry in Selections requires the variant to own at least one fact with
// that attribute and a value from the allowed set. This is a per-variant
// membership test across fact rows, not a plain row filter.
type Predicate struct {
	CategoryID     int64
	BrandIDs       []int64
	ProductTypeIDs []int64
	MinPrice       *float64
	MaxPrice       *float64
	Selections     map[model.AttributeRef][]int64
}

// Index is the read side of the smart-filter index. All methods treat an
// empty or mid-rebuild index as empty, never as an error, and must support
// concurrent readers.
type Index interface {
	// Scan returns the facts of every variant satisfying the predicate.
	Scan(ctx context.Context, p Predicate) ([]model.VariantFact, error)

	// ProductIDs projects the surviving facts to distinct product IDs.
	// No ordering guarantee.
	ProductIDs(ctx context.Context, p Predicate) ([]int64, error)

	// VariantIDs projects the surviving facts to distinct variant IDs.
	VariantIDs(ctx context.Context, p Predicate) ([]int64, error)

	// ProductStats aggregates the surviving facts per product in one pass.
	ProductStats(ctx context.Context, p Predicate) ([]model.ProductSummary, error)

	// AvailableValues answers, for every attribute in perAttr, which of its
	// values appear among variants satisfying that attribute's predicate.
	// Implementations must evaluate all attributes in a single batched pass
	// rather than one scan per attribute.
	AvailableValues(ctx context.Context, perAttr map[model.AttributeRef]Predicate) (map[model.AttributeRef]map[int64]bool, error)

	// PriceRange returns the global min/max price of eligible facts in the
	// category. An empty category yields {0, 0}.
	PriceRange(ctx context.Context, categoryID int64) (model.PriceRange, error)

	// BrandCounts returns the brands among the surviving facts with distinct
	// product counts, ordered by brand ID.
	BrandCounts(ctx context.Context, p Predicate) ([]model.BrandCount, error)
}

// Writer is the rebuild side: full truncate, then bulk repopulation. Writes
// are not transactional against reads; readers may transiently observe a
// partially rebuilt index.
type Writer interface {
	Truncate(ctx context.Context) error
	InsertBatch(ctx context.Context, facts []model.VariantFact) error
}
