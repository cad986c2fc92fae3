package reindex

import (
	"context"
	"time"
)

// PropertyValueRef is one custom property value attached to a product.
type PropertyValueRef struct {
	PropertyID int64 `db:"property_id"`
	ValueID    int64 `db:"value_id"`
}

// SourceVariant is one authoritative variant record assembled from the
// normalized catalog tables: grouping keys, the three system attribute value
// IDs (zero when absent), the retail price and the stock summed over all
// warehouses.
type SourceVariant struct {
	ProductID        int64     `db:"product_id"`
	VariantID        int64     `db:"variant_id"`
	CategoryID       int64     `db:"category_id"`
	BrandID          int64     `db:"brand_id"`
	ProductTypeID    int64     `db:"product_type_id"`
	ColorID          int64     `db:"color_id"`
	SizeID           int64     `db:"size_id"`
	GenderID         int64     `db:"gender_id"`
	Price            float64   `db:"price"`
	Stock            int       `db:"stock"`
	IsActive         bool      `db:"is_active"`
	ProductCreatedAt time.Time `db:"product_created_at"`

	PropertyValues []PropertyValueRef `db:"-"`
}

// Source streams the authoritative records the rebuild expands into facts.
type Source interface {
	ListVariants(ctx context.Context) ([]SourceVariant, error)
}
