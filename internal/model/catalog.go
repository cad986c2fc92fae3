package model

import "time"

// Sort options accepted by the catalog view. Price sorting uses the minimum
// eligible retail price across a product's variants.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// FacetValue is one selectable option of a facet, flagged with whether picking
// it on top of the other active filters would still yield at least one result.
type FacetValue struct {
	ValueID     int64  `json:"value_id"`
	RawValue    string `json:"value"`
	Label       string `json:"label"`
	Priority    int    `json:"priority"`
	IsAvailable bool   `json:"is_available"`
}

// FacetResult is the sidebar model for one attribute. Recomputed per request,
// never persisted.
type FacetResult struct {
	Attribute   AttributeRef `json:"attribute"`
	Slug        string       `json:"slug"`
	DisplayName string       `json:"name"`
	UnitSymbol  string       `json:"unit,omitempty"`
	Values      []FacetValue `json:"options"`
}

// ProductSummary is the per-product projection handed to the rendering layer.
type ProductSummary struct {
	ProductID    int64     `db:"product_id" json:"product_id"`
	MinPrice     float64   `db:"min_price" json:"min_price"`
	VariantCount int       `db:"variant_count" json:"variant_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// BrandCount is one brand present in the current result set.
type BrandCount struct {
	BrandID      int64 `db:"brand_id" json:"brand_id"`
	ProductCount int   `db:"product_count" json:"product_count"`
}

// PriceRange is the global min/max of eligible facts in a category.
type PriceRange struct {
	Min float64 `db:"min" json:"min"`
	Max float64 `db:"max" json:"max"`
}

// ProductPage is one page of the filtered result list.
type ProductPage struct {
	Items   []ProductSummary `json:"data"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Total   int              `json:"total"`
}

// CatalogView is the full read model for one category page.
type CatalogView struct {
	Products   ProductPage   `json:"products"`
	Filters    []FacetResult `json:"filters"`
	PriceRange PriceRange    `json:"price_range"`
	Brands     []BrandCount  `json:"brands"`
}

// EmptyCatalogView is the well-defined "no results" view. Returned instead of
// an error when the category has no eligible products or the index is mid
// rebuild.
func EmptyCatalogView(page, perPage int) *CatalogView {
	return &CatalogView{
		Products:   ProductPage{Items: []ProductSummary{}, Page: page, PerPage: perPage},
		Filters:    []FacetResult{},
		PriceRange: PriceRange{},
		Brands:     []BrandCount{},
	}
}
