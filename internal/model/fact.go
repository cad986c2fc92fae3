package model

import "time"

// VariantFact is one row of the denormalized smart-filter index: a variant
// owning one (attribute, value) pair, together with its retail price, summed
// stock and grouping keys. A variant with three attributes produces three
// facts. Facts are rebuilt wholesale from the normalized catalog tables and
// are never edited in place.
type VariantFact struct {
	ProductID     int64 `db:"product_id" json:"product_id"`
	VariantID     int64 `db:"product_variant_id" json:"product_variant_id"`
	CategoryID    int64 `db:"category_id" json:"category_id"`
	BrandID       int64 `db:"brand_id" json:"brand_id"`
	ProductTypeID int64 `db:"product_type_id" json:"product_type_id"`

	AttributeRef
	ValueID int64 `db:"property_value_id" json:"property_value_id"`

	Price         float64 `db:"price" json:"price"`
	StockQuantity int     `db:"stock" json:"stock"`
	IsActive      bool    `db:"is_active" json:"is_active"`

	// ProductCreatedAt lets the index answer "newest" sorting on its own.
	ProductCreatedAt time.Time `db:"product_created_at" json:"product_created_at"`
}

// Eligible reports whether the fact may contribute to filter results or facet
// availability at all.
func (f VariantFact) Eligible() bool {
	return f.IsActive && f.StockQuantity > 0
}
