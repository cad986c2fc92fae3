package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ricestyle/catalog-service/internal/index"
	"github.com/ricestyle/catalog-service/internal/model"
)

// PGIndex backs the fact index with the smart_filter_index table. Attribute
// selections become EXISTS semi-joins against the same table; the batched
// availability query is a UNION ALL over the per-attribute predicates so the
// whole sidebar costs one round trip.
type PGIndex struct {
	DB *sqlx.DB
}

func NewPGIndex(db *sqlx.DB) *PGIndex {
	return &PGIndex{DB: db}
}

// buildWhere renders the predicate as a WHERE clause over alias s with ?
// placeholders. Callers expand slices via sqlx.In and rebind for postgres.
func buildWhere(p index.Predicate) (string, []interface{}) {
	conditions := []string{"s.is_active = true", "s.stock > 0"}
	args := []interface{}{}

	if p.CategoryID != 0 {
		conditions = append(conditions, "s.category_id = ?")
		args = append(args, p.CategoryID)
	}
	if len(p.BrandIDs) > 0 {
		conditions = append(conditions, "s.brand_id IN (?)")
		args = append(args, p.BrandIDs)
	}
	if len(p.ProductTypeIDs) > 0 {
		conditions = append(conditions, "s.product_type_id IN (?)")
		args = append(args, p.ProductTypeIDs)
	}
	if p.MinPrice != nil {
		conditions = append(conditions, "s.price >= ?")
		args = append(args, *p.MinPrice)
	}
	if p.MaxPrice != nil {
		conditions = append(conditions, "s.price <= ?")
		args = append(args, *p.MaxPrice)
	}

	for _, ref := range sortedRefs(p.Selections) {
		values := p.Selections[ref]
		if len(values) == 0 {
			continue
		}
		conditions = append(conditions, `EXISTS (
            SELECT 1 FROM smart_filter_index sj
            WHERE sj.product_variant_id = s.product_variant_id
              AND sj.attribute_kind = ?
              AND sj.property_id = ?
              AND sj.property_value_id IN (?)
        )`)
		args = append(args, string(ref.Kind), ref.PropertyID, values)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// sortedRefs fixes the selection order so generated SQL is deterministic.
func sortedRefs(selections map[model.AttributeRef][]int64) []model.AttributeRef {
	refs := make([]model.AttributeRef, 0, len(selections))
	for ref := range selections {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })
	return refs
}

func (r *PGIndex) selectWithPredicate(ctx context.Context, dest interface{}, head string, p index.Predicate, tail string) error {
	where, args := buildWhere(p)
	query, inArgs, err := sqlx.In(head+where+tail, args...)
	if err != nil {
		return err
	}
	query = r.DB.Rebind(query)
	return r.DB.SelectContext(ctx, dest, query, inArgs...)
}

func (r *PGIndex) Scan(ctx context.Context, p index.Predicate) ([]model.VariantFact, error) {
	facts := []model.VariantFact{}
	head := `SELECT s.product_id, s.product_variant_id, s.category_id, s.brand_id, s.product_type_id,
        s.attribute_kind, s.property_id, s.property_value_id,
        s.price, s.stock, s.is_active, s.product_created_at
    FROM smart_filter_index s`
	err := r.selectWithPredicate(ctx, &facts, head, p, "")
	return facts, err
}

func (r *PGIndex) ProductIDs(ctx context.Context, p index.Predicate) ([]int64, error) {
	ids := []int64{}
	err := r.selectWithPredicate(ctx, &ids, "SELECT DISTINCT s.product_id FROM smart_filter_index s", p, "")
	return ids, err
}

func (r *PGIndex) VariantIDs(ctx context.Context, p index.Predicate) ([]int64, error) {
	ids := []int64{}
	err := r.selectWithPredicate(ctx, &ids, "SELECT DISTINCT s.product_variant_id FROM smart_filter_index s", p, "")
	return ids, err
}

func (r *PGIndex) ProductStats(ctx context.Context, p index.Predicate) ([]model.ProductSummary, error) {
	stats := []model.ProductSummary{}
	head := `SELECT s.product_id,
        MIN(s.price) AS min_price,
        COUNT(DISTINCT s.product_variant_id) AS variant_count,
        MAX(s.product_created_at) AS created_at
    FROM smart_filter_index s`
	err := r.selectWithPredicate(ctx, &stats, head, p, " GROUP BY s.product_id ORDER BY s.product_id")
	return stats, err
}

func (r *PGIndex) AvailableValues(ctx context.Context, perAttr map[model.AttributeRef]index.Predicate) (map[model.AttributeRef]map[int64]bool, error) {
	out := make(map[model.AttributeRef]map[int64]bool, len(perAttr))
	if len(perAttr) == 0 {
		return out, nil
	}

	byKey := make(map[string]model.AttributeRef, len(perAttr))
	parts := make([]string, 0, len(perAttr))
	args := []interface{}{}

	refs := make([]model.AttributeRef, 0, len(perAttr))
	for ref := range perAttr {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })

	for _, ref := range refs {
		key := ref.String()
		byKey[key] = ref
		out[ref] = make(map[int64]bool)

		where, whereArgs := buildWhere(perAttr[ref])
		part := fmt.Sprintf(`SELECT ?::text AS attr_key, s.property_value_id AS value_id
            FROM smart_filter_index s%s
              AND s.attribute_kind = ? AND s.property_id = ?
            GROUP BY s.property_value_id`, where)
		parts = append(parts, part)
		args = append(args, key)
		args = append(args, whereArgs...)
		args = append(args, string(ref.Kind), ref.PropertyID)
	}

	query, inArgs, err := sqlx.In(strings.Join(parts, "\nUNION ALL\n"), args...)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	rows, err := r.DB.QueryxContext(ctx, query, inArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var valueID int64
		if err := rows.Scan(&key, &valueID); err != nil {
			return nil, err
		}
		if ref, ok := byKey[key]; ok {
			out[ref][valueID] = true
		}
	}
	return out, rows.Err()
}

func (r *PGIndex) PriceRange(ctx context.Context, categoryID int64) (model.PriceRange, error) {
	var pr model.PriceRange
	query := `SELECT COALESCE(MIN(price), 0) AS min, COALESCE(MAX(price), 0) AS max
        FROM smart_filter_index
        WHERE is_active = true AND stock > 0 AND category_id = $1`
	err := r.DB.GetContext(ctx, &pr, query, categoryID)
	return pr, err
}

func (r *PGIndex) BrandCounts(ctx context.Context, p index.Predicate) ([]model.BrandCount, error) {
	counts := []model.BrandCount{}
	head := `SELECT s.brand_id, COUNT(DISTINCT s.product_id) AS product_count
    FROM smart_filter_index s`
	err := r.selectWithPredicate(ctx, &counts, head, p, " GROUP BY s.brand_id ORDER BY s.brand_id")
	return counts, err
}

func (r *PGIndex) Truncate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "TRUNCATE TABLE smart_filter_index")
	return err
}

func (r *PGIndex) InsertBatch(ctx context.Context, facts []model.VariantFact) error {
	if len(facts) == 0 {
		return nil
	}
	query := `
        INSERT INTO smart_filter_index (
            product_id, product_variant_id, category_id, brand_id, product_type_id,
            attribute_kind, property_id, property_value_id,
            price, stock, is_active, product_created_at
        )
        VALUES (
            :product_id, :product_variant_id, :category_id, :brand_id, :product_type_id,
            :attribute_kind, :property_id, :property_value_id,
            :price, :stock, :is_active, :product_created_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, facts)
	return err
}
