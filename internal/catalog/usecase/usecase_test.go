package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attrrepo "github.com/ricestyle/catalog-service/internal/attribute/repository"
	"github.com/ricestyle/catalog-service/internal/catalog/dto"
	"github.com/ricestyle/catalog-service/internal/facet"
	"github.com/ricestyle/catalog-service/internal/filter"
	idxrepo "github.com/ricestyle/catalog-service/internal/index/repository"
	"github.com/ricestyle/catalog-service/internal/model"
	"github.com/ricestyle/catalog-service/pkg/cache"
	"github.com/ricestyle/catalog-service/pkg/logger"
)

const (
	red   = int64(1)
	blue  = int64(2)
	sizeS = int64(21)
	sizeM = int64(22)
)

// countingAttrRepo wraps the in-memory catalog so tests can observe how often
// the orchestrator goes past the cache.
type countingAttrRepo struct {
	inner *attrrepo.MemoryRepository
	calls atomic.Int64
}

func (r *countingAttrRepo) ListByCategory(ctx context.Context, categoryID int64) ([]model.AttributeDefinition, error) {
	r.calls.Add(1)
	return r.inner.ListByCategory(ctx, categoryID)
}

func fact(productID, variantID, brandID int64, ref model.AttributeRef, valueID int64, price float64, stock int, created time.Time) model.VariantFact {
	return model.VariantFact{
		ProductID:        productID,
		VariantID:        variantID,
		CategoryID:       10,
		BrandID:          brandID,
		ProductTypeID:    7,
		AttributeRef:     ref,
		ValueID:          valueID,
		Price:            price,
		StockQuantity:    stock,
		IsActive:         true,
		ProductCreatedAt: created,
	}
}

var (
	day1 = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	day3 = time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
)

// Fixture for category 10: three products, each one variant.
//
//	product 1 (brand 100, created day1): red  / S, 50.00
//	product 2 (brand 100, created day3): blue / M, 30.00
//	product 3 (brand 200, created day2): red  / M, 80.00
func fixtureIndex() *idxrepo.MemoryIndex {
	return idxrepo.NewMemoryIndexWith(
		fact(1, 11, 100, model.Color(), red, 50, 5, day1),
		fact(1, 11, 100, model.Size(), sizeS, 50, 5, day1),
		fact(2, 21, 100, model.Color(), blue, 30, 3, day3),
		fact(2, 21, 100, model.Size(), sizeM, 30, 3, day3),
		fact(3, 31, 200, model.Color(), red, 80, 2, day2),
		fact(3, 31, 200, model.Size(), sizeM, 80, 2, day2),
	)
}

func fixtureDefs() []model.AttributeDefinition {
	return []model.AttributeDefinition{
		{
			Ref: model.Color(), Slug: "color", DisplayName: "Color", Priority: 1,
			Values: []model.AttributeValue{
				{ID: red, RawValue: "red", Priority: 1},
				{ID: blue, RawValue: "blue", Priority: 2},
			},
		},
		{
			Ref: model.Size(), Slug: "size", DisplayName: "Size", Priority: 2,
			Values: []model.AttributeValue{
				{ID: sizeS, RawValue: "S", Priority: 1},
				{ID: sizeM, RawValue: "M", Priority: 2},
			},
		},
	}
}

func newTestUseCase(t *testing.T) (*countingAttrRepo, *catalogUseCase) {
	t.Helper()

	attrs := attrrepo.NewMemoryRepository()
	attrs.SetCategory(10, fixtureDefs())
	counting := &countingAttrRepo{inner: attrs}

	idx := fixtureIndex()
	uc := NewCatalogUseCase(
		counting,
		filter.NewEngine(idx),
		facet.NewEngine(idx),
		idx,
		cache.NewMemoryCache(),
		logger.NewNop(),
		Options{},
	)
	return counting, uc.(*catalogUseCase)
}

func query() *dto.CatalogQuery {
	return &dto.CatalogQuery{
		Filters: map[string][]string{},
		Page:    1,
		PerPage: dto.DefaultPerPage,
	}
}

func productIDs(page model.ProductPage) []int64 {
	out := make([]int64, 0, len(page.Items))
	for _, p := range page.Items {
		out = append(out, p.ProductID)
	}
	return out
}

func TestBuildCatalogView_Unfiltered(t *testing.T) {
	_, uc := newTestUseCase(t)

	view, err := uc.BuildCatalogView(context.Background(), 10, query())
	require.NoError(t, err)

	assert.Equal(t, 3, view.Products.Total)
	assert.Len(t, view.Filters, 2)
	assert.Equal(t, 30.0, view.PriceRange.Min)
	assert.Equal(t, 80.0, view.PriceRange.Max)
	assert.Equal(t, []model.BrandCount{
		{BrandID: 100, ProductCount: 2},
		{BrandID: 200, ProductCount: 1},
	}, view.Brands)
}

func TestBuildCatalogView_DefaultSortIsNewest(t *testing.T) {
	_, uc := newTestUseCase(t)

	view, err := uc.BuildCatalogView(context.Background(), 10, query())
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 3, 1}, productIDs(view.Products))
}

func TestBuildCatalogView_PriceSort(t *testing.T) {
	_, uc := newTestUseCase(t)

	t.Run("ascending", func(t *testing.T) {
		q := query()
		q.Sort = model.SortPriceAsc
		view, err := uc.BuildCatalogView(context.Background(), 10, q)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 1, 3}, productIDs(view.Products))
	})

	t.Run("descending", func(t *testing.T) {
		q := query()
		q.Sort = model.SortPriceDesc
		view, err := uc.BuildCatalogView(context.Background(), 10, q)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 1, 2}, productIDs(view.Products))
	})
}

func TestBuildCatalogView_Pagination(t *testing.T) {
	_, uc := newTestUseCase(t)

	q := query()
	q.PerPage = 2

	first, err := uc.BuildCatalogView(context.Background(), 10, q)
	require.NoError(t, err)
	assert.Len(t, first.Products.Items, 2)
	assert.Equal(t, 3, first.Products.Total)

	q.Page = 2
	second, err := uc.BuildCatalogView(context.Background(), 10, q)
	require.NoError(t, err)
	assert.Len(t, second.Products.Items, 1)

	q.Page = 5
	beyond, err := uc.BuildCatalogView(context.Background(), 10, q)
	require.NoError(t, err)
	assert.Empty(t, beyond.Products.Items)
	assert.Equal(t, 3, beyond.Products.Total)
}

func TestBuildCatalogView_AttributeFilter(t *testing.T) {
	_, uc := newTestUseCase(t)

	q := query()
	q.Filters["color"] = []string{"1"} // red

	view, err := uc.BuildCatalogView(context.Background(), 10, q)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 3}, productIDs(view.Products))
	// Brands follow the filtered result set.
	assert.Equal(t, []model.BrandCount{
		{BrandID: 100, ProductCount: 1},
		{BrandID: 200, ProductCount: 1},
	}, view.Brands)
}

func TestBuildCatalogView_UnknownFilterKeyIgnored(t *testing.T) {
	_, uc := newTestUseCase(t)

	q := query()
	q.Filters["warranty"] = []string{"1"}

	view, err := uc.BuildCatalogView(context.Background(), 10, q)
	require.NoError(t, err)

	assert.Equal(t, 3, view.Products.Total, "unknown keys never narrow the result")
}

func TestBuildCatalogView_MalformedValuesIgnored(t *testing.T) {
	_, uc := newTestUseCase(t)

	q := query()
	q.Filters["color"] = []string{"not-a-number"}
	q.MinPrice = "cheap"
	q.MaxPrice = "-3"

	view, err := uc.BuildCatalogView(context.Background(), 10, q)
	require.NoError(t, err)

	assert.Equal(t, 3, view.Products.Total)
}

func TestBuildCatalogView_InvertedPriceBoundsSwapped(t *testing.T) {
	_, uc := newTestUseCase(t)

	q := query()
	q.MinPrice = "60"
	q.MaxPrice = "40"

	view, err := uc.BuildCatalogView(context.Background(), 10, q)
	require.NoError(t, err)

	// Effective bounds are [40, 60]: only product 1 at 50.00.
	assert.Equal(t, []int64{1}, productIDs(view.Products))
}

func TestBuildCatalogView_EmptyCategory(t *testing.T) {
	_, uc := newTestUseCase(t)

	view, err := uc.BuildCatalogView(context.Background(), 99, query())
	require.NoError(t, err)

	assert.Empty(t, view.Products.Items)
	assert.Zero(t, view.Products.Total)
	assert.Empty(t, view.Filters)
	assert.Empty(t, view.Brands)
	assert.Zero(t, view.PriceRange.Min)
}

func TestBuildCatalogView_FacetSelfExclusion(t *testing.T) {
	_, uc := newTestUseCase(t)

	q := query()
	q.Filters["color"] = []string{"1"} // red

	view, err := uc.BuildCatalogView(context.Background(), 10, q)
	require.NoError(t, err)
	require.Len(t, view.Filters, 2)

	colors := view.Filters[0]
	require.Equal(t, "color", colors.Slug)
	for _, v := range colors.Values {
		assert.True(t, v.IsAvailable, "selecting red must not hide blue")
	}
}

func TestBuildCatalogView_AttributeCatalogCached(t *testing.T) {
	counting, uc := newTestUseCase(t)

	_, err := uc.BuildCatalogView(context.Background(), 10, query())
	require.NoError(t, err)
	_, err = uc.BuildCatalogView(context.Background(), 10, query())
	require.NoError(t, err)

	assert.Equal(t, int64(1), counting.calls.Load())
}
