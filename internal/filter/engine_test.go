package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idxrepo "github.com/ricestyle/catalog-service/internal/index/repository"
	"github.com/ricestyle/catalog-service/internal/model"
)

// Value IDs used across the fixture.
const (
	red   = int64(1)
	blue  = int64(2)
	green = int64(3)
	sizeS = int64(21)
	sizeM = int64(22)
	sizeL = int64(23)
)

func fact(productID, variantID int64, ref model.AttributeRef, valueID int64, price float64, stock int, active bool) model.VariantFact {
	return model.VariantFact{
		ProductID:        productID,
		VariantID:        variantID,
		CategoryID:       10,
		BrandID:          productID * 100,
		AttributeRef:     ref,
		ValueID:          valueID,
		Price:            price,
		StockQuantity:    stock,
		IsActive:         active,
		ProductCreatedAt: time.Date(2025, 1, int(productID), 0, 0, 0, 0, time.UTC),
	}
}

// testIndex builds the shared category-10 fixture:
//
//	product 1, variant 11: red  / S, 50.00, in stock
//	product 1, variant 12: blue / M, 60.00, in stock
//	product 2, variant 21: red  / M, 80.00, out of stock
//	product 2, variant 22: green/ L, 90.00, in stock
//	product 3, variant 31: blue / S, 120.00, inactive
func testIndex() *idxrepo.MemoryIndex {
	return idxrepo.NewMemoryIndexWith(
		fact(1, 11, model.Color(), red, 50, 5, true),
		fact(1, 11, model.Size(), sizeS, 50, 5, true),
		fact(1, 12, model.Color(), blue, 60, 3, true),
		fact(1, 12, model.Size(), sizeM, 60, 3, true),
		fact(2, 21, model.Color(), red, 80, 0, true),
		fact(2, 21, model.Size(), sizeM, 80, 0, true),
		fact(2, 22, model.Color(), green, 90, 2, true),
		fact(2, 22, model.Size(), sizeL, 90, 2, true),
		fact(3, 31, model.Color(), blue, 120, 4, false),
		fact(3, 31, model.Size(), sizeS, 120, 4, false),
	)
}

func criteria(selections map[model.AttributeRef][]int64) model.FilterCriteria {
	return model.FilterCriteria{CategoryID: 10, Selections: selections}
}

func TestMatchingProductIDs_EmptyCriteria(t *testing.T) {
	engine := NewEngine(testIndex())

	ids, err := engine.MatchingProductIDs(context.Background(), criteria(nil))
	require.NoError(t, err)

	// Product 3 is inactive; its variants never count.
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestMatchingProductIDs_OrWithinAttribute(t *testing.T) {
	engine := NewEngine(testIndex())

	ids, err := engine.MatchingProductIDs(context.Background(), criteria(map[model.AttributeRef][]int64{
		model.Color(): {red, green},
	}))
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestMatchingProductIDs_AndAcrossAttributes(t *testing.T) {
	engine := NewEngine(testIndex())

	t.Run("red and size S matches variant 11", func(t *testing.T) {
		ids, err := engine.MatchingProductIDs(context.Background(), criteria(map[model.AttributeRef][]int64{
			model.Color(): {red},
			model.Size():  {sizeS},
		}))
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1}, ids)
	})

	t.Run("red and size M only exists out of stock", func(t *testing.T) {
		// Variant 21 is red/M but has zero stock. The conjunction must be
		// evaluated per variant: product 1 owns red (variant 11) and M
		// (variant 12), but no single variant owns both.
		ids, err := engine.MatchingProductIDs(context.Background(), criteria(map[model.AttributeRef][]int64{
			model.Color(): {red},
			model.Size():  {sizeM},
		}))
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestMatchingProductIDs_EmptySelectionIsNoConstraint(t *testing.T) {
	engine := NewEngine(testIndex())

	ids, err := engine.MatchingProductIDs(context.Background(), criteria(map[model.AttributeRef][]int64{
		model.Color(): {},
	}))
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestMatchingProductIDs_PriceBoundsInclusive(t *testing.T) {
	engine := NewEngine(testIndex())
	min, max := 50.0, 50.0

	c := criteria(nil)
	c.MinPrice, c.MaxPrice = &min, &max

	ids, err := engine.MatchingProductIDs(context.Background(), c)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1}, ids)
}

func TestMatchingProductIDs_Idempotent(t *testing.T) {
	engine := NewEngine(testIndex())
	c := criteria(map[model.AttributeRef][]int64{model.Color(): {blue}})

	first, err := engine.MatchingProductIDs(context.Background(), c)
	require.NoError(t, err)
	second, err := engine.MatchingProductIDs(context.Background(), c)
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
}

func TestMatchingProductIDs_AddingConstraintNeverGrowsResult(t *testing.T) {
	engine := NewEngine(testIndex())

	broad, err := engine.MatchingProductIDs(context.Background(), criteria(map[model.AttributeRef][]int64{
		model.Color(): {red, green},
	}))
	require.NoError(t, err)

	narrow, err := engine.MatchingProductIDs(context.Background(), criteria(map[model.AttributeRef][]int64{
		model.Color(): {red, green},
		model.Size():  {sizeL},
	}))
	require.NoError(t, err)

	assert.Subset(t, broad, narrow)
	assert.LessOrEqual(t, len(narrow), len(broad))
}

func TestMatchingVariantIDs(t *testing.T) {
	engine := NewEngine(testIndex())

	ids, err := engine.MatchingVariantIDs(context.Background(), criteria(map[model.AttributeRef][]int64{
		model.Color(): {red},
	}))
	require.NoError(t, err)

	// Variant 21 is red too, but out of stock.
	assert.ElementsMatch(t, []int64{11}, ids)
}

func TestMatchingProductStats(t *testing.T) {
	engine := NewEngine(testIndex())

	stats, err := engine.MatchingProductStats(context.Background(), criteria(nil))
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byProduct := make(map[int64]model.ProductSummary, len(stats))
	for _, s := range stats {
		byProduct[s.ProductID] = s
	}

	// Product 1: variants 11 (50.00) and 12 (60.00).
	assert.Equal(t, 50.0, byProduct[1].MinPrice)
	assert.Equal(t, 2, byProduct[1].VariantCount)

	// Product 2: only variant 22 is eligible.
	assert.Equal(t, 90.0, byProduct[2].MinPrice)
	assert.Equal(t, 1, byProduct[2].VariantCount)
}

func TestBuildPredicate_ExcludeAttribute(t *testing.T) {
	c := criteria(map[model.AttributeRef][]int64{
		model.Color(): {red},
		model.Size():  {sizeS},
	})

	color := model.Color()
	p := BuildPredicate(c, &color)

	assert.NotContains(t, p.Selections, model.Color())
	assert.Contains(t, p.Selections, model.Size())
}
