package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ricestyle/catalog-service/internal/reindex"
)

// Price filtering and sorting run on the retail price row; other price types
// never reach the index.
const retailPriceTypeID = 1

// PGSource reads the authoritative variant records from the normalized
// tables. The write path of the index is the only consumer.
type PGSource struct {
	DB *sqlx.DB
}

func NewPGSource(db *sqlx.DB) *PGSource {
	return &PGSource{DB: db}
}

func (s *PGSource) ListVariants(ctx context.Context) ([]reindex.SourceVariant, error) {
	query := `
        SELECT
            p.id                        AS product_id,
            pv.id                       AS variant_id,
            p.category_id               AS category_id,
            COALESCE(p.brand_id, 0)     AS brand_id,
            COALESCE(p.product_type_id, 0) AS product_type_id,
            COALESCE(pv.color_id, 0)    AS color_id,
            COALESCE(pv.size_id, 0)     AS size_id,
            COALESCE(pv.gender_id, 0)   AS gender_id,
            COALESCE(pr.price, 0)       AS price,
            COALESCE(st.total, 0)       AS stock,
            p.is_active                 AS is_active,
            p.created_at                AS product_created_at
        FROM product_variants pv
        JOIN products p ON p.id = pv.product_id
        LEFT JOIN LATERAL (
            SELECT price FROM prices
            WHERE product_variant_id = pv.id AND price_type_id = $1
            ORDER BY id
            LIMIT 1
        ) pr ON true
        LEFT JOIN (
            SELECT product_variant_id, SUM(quantity) AS total
            FROM stocks
            GROUP BY product_variant_id
        ) st ON st.product_variant_id = pv.id
        ORDER BY pv.id
    `
	variants := []reindex.SourceVariant{}
	if err := s.DB.SelectContext(ctx, &variants, query, retailPriceTypeID); err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return variants, nil
	}

	props, err := s.productProperties(ctx)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		variants[i].PropertyValues = props[variants[i].ProductID]
	}
	return variants, nil
}

func (s *PGSource) productProperties(ctx context.Context) (map[int64][]reindex.PropertyValueRef, error) {
	query := `
        SELECT pp.product_id, v.property_id, v.id AS value_id
        FROM product_properties pp
        JOIN property_values v ON v.id = pp.property_value_id
        ORDER BY pp.product_id, v.property_id, v.id
    `
	rows := []struct {
		ProductID  int64 `db:"product_id"`
		PropertyID int64 `db:"property_id"`
		ValueID    int64 `db:"value_id"`
	}{}
	if err := s.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	out := make(map[int64][]reindex.PropertyValueRef)
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], reindex.PropertyValueRef{
			PropertyID: row.PropertyID,
			ValueID:    row.ValueID,
		})
	}
	return out, nil
}
