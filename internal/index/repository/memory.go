package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ricestyle/catalog-service/internal/index"
	"github.com/ricestyle/catalog-service/internal/model"
)

// variantRow is the grouped view of one variant: its facts share price,
// stock, activity and grouping keys, so those live once per variant with the
// (attribute, value) pairs collected into a membership set.
type variantRow struct {
	productID     int64
	variantID     int64
	categoryID    int64
	brandID       int64
	productTypeID int64
	price         float64
	stock         int
	active        bool
	createdAt     time.Time
	values        map[model.AttributeRef]map[int64]bool
}

// MemoryIndex keeps the whole fact set in process, grouped per variant for
// semi-join evaluation. Reads run concurrently; the rebuild writer swaps data
// under the write lock. Useful for tests and for embedding the engine without
// a database.
type MemoryIndex struct {
	mu       sync.RWMutex
	facts    []model.VariantFact
	variants map[int64]*variantRow
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{variants: make(map[int64]*variantRow)}
}

// NewMemoryIndexWith builds an index pre-populated with facts. Test helper.
func NewMemoryIndexWith(facts ...model.VariantFact) *MemoryIndex {
	idx := NewMemoryIndex()
	_ = idx.InsertBatch(context.Background(), facts)
	return idx
}

func (m *MemoryIndex) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts = nil
	m.variants = make(map[int64]*variantRow)
	return nil
}

func (m *MemoryIndex) InsertBatch(ctx context.Context, facts []model.VariantFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range facts {
		m.facts = append(m.facts, f)
		row, ok := m.variants[f.VariantID]
		if !ok {
			row = &variantRow{
				productID:     f.ProductID,
				variantID:     f.VariantID,
				categoryID:    f.CategoryID,
				brandID:       f.BrandID,
				productTypeID: f.ProductTypeID,
				price:         f.Price,
				stock:         f.StockQuantity,
				active:        f.IsActive,
				createdAt:     f.ProductCreatedAt,
				values:        make(map[model.AttributeRef]map[int64]bool),
			}
			m.variants[f.VariantID] = row
		}
		set := row.values[f.AttributeRef]
		if set == nil {
			set = make(map[int64]bool)
			row.values[f.AttributeRef] = set
		}
		set[f.ValueID] = true
	}
	return nil
}

// matches evaluates the full predicate, semi-joins included, for one variant.
func (r *variantRow) matches(p index.Predicate) bool {
	if !r.active || r.stock <= 0 {
		return false
	}
	if p.CategoryID != 0 && r.categoryID != p.CategoryID {
		return false
	}
	if len(p.BrandIDs) > 0 && !containsID(p.BrandIDs, r.brandID) {
		return false
	}
	if len(p.ProductTypeIDs) > 0 && !containsID(p.ProductTypeIDs, r.productTypeID) {
		return false
	}
	if p.MinPrice != nil && r.price < *p.MinPrice {
		return false
	}
	if p.MaxPrice != nil && r.price > *p.MaxPrice {
		return false
	}
	for ref, allowed := range p.Selections {
		if len(allowed) == 0 {
			continue
		}
		owned := r.values[ref]
		found := false
		for _, v := range allowed {
			if owned[v] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (m *MemoryIndex) matchingVariants(p index.Predicate) map[int64]*variantRow {
	out := make(map[int64]*variantRow)
	for id, row := range m.variants {
		if row.matches(p) {
			out[id] = row
		}
	}
	return out
}

func (m *MemoryIndex) Scan(ctx context.Context, p index.Predicate) ([]model.VariantFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matching := m.matchingVariants(p)
	out := make([]model.VariantFact, 0)
	for _, f := range m.facts {
		if _, ok := matching[f.VariantID]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MemoryIndex) ProductIDs(ctx context.Context, p index.Predicate) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[int64]bool)
	out := make([]int64, 0)
	for _, row := range m.matchingVariants(p) {
		if !seen[row.productID] {
			seen[row.productID] = true
			out = append(out, row.productID)
		}
	}
	return out, nil
}

func (m *MemoryIndex) VariantIDs(ctx context.Context, p index.Predicate) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, 0)
	for id := range m.matchingVariants(p) {
		out = append(out, id)
	}
	return out, nil
}

func (m *MemoryIndex) ProductStats(ctx context.Context, p index.Predicate) ([]model.ProductSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byProduct := make(map[int64]*model.ProductSummary)
	for _, row := range m.matchingVariants(p) {
		stat, ok := byProduct[row.productID]
		if !ok {
			stat = &model.ProductSummary{
				ProductID: row.productID,
				MinPrice:  row.price,
				CreatedAt: row.createdAt,
			}
			byProduct[row.productID] = stat
		}
		if row.price < stat.MinPrice {
			stat.MinPrice = row.price
		}
		if row.createdAt.After(stat.CreatedAt) {
			stat.CreatedAt = row.createdAt
		}
		stat.VariantCount++
	}

	out := make([]model.ProductSummary, 0, len(byProduct))
	for _, stat := range byProduct {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (m *MemoryIndex) AvailableValues(ctx context.Context, perAttr map[model.AttributeRef]index.Predicate) (map[model.AttributeRef]map[int64]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[model.AttributeRef]map[int64]bool, len(perAttr))
	for ref, p := range perAttr {
		available := make(map[int64]bool)
		for _, row := range m.variants {
			if !row.matches(p) {
				continue
			}
			for v := range row.values[ref] {
				available[v] = true
			}
		}
		out[ref] = available
	}
	return out, nil
}

func (m *MemoryIndex) PriceRange(ctx context.Context, categoryID int64) (model.PriceRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pr model.PriceRange
	first := true
	for _, row := range m.variants {
		if !row.active || row.stock <= 0 || row.categoryID != categoryID {
			continue
		}
		if first {
			pr.Min, pr.Max = row.price, row.price
			first = false
			continue
		}
		if row.price < pr.Min {
			pr.Min = row.price
		}
		if row.price > pr.Max {
			pr.Max = row.price
		}
	}
	return pr, nil
}

func (m *MemoryIndex) BrandCounts(ctx context.Context, p index.Predicate) ([]model.BrandCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := make(map[int64]map[int64]bool) // brand -> product set
	for _, row := range m.matchingVariants(p) {
		set := products[row.brandID]
		if set == nil {
			set = make(map[int64]bool)
			products[row.brandID] = set
		}
		set[row.productID] = true
	}

	out := make([]model.BrandCount, 0, len(products))
	for brandID, set := range products {
		out = append(out, model.BrandCount{BrandID: brandID, ProductCount: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BrandID < out[j].BrandID })
	return out, nil
}
