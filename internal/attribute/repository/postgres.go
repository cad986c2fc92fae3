package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ricestyle/catalog-service/internal/model"
)

// System attribute groups render ahead of custom properties in the sidebar;
// custom property priorities start at 100 by seeding convention.
const (
	colorPriority  = 1
	sizePriority   = 2
	genderPriority = 3
)

// PGRepository assembles the attribute catalog from the normalized reference
// tables: colors, sizes and genders for the system attributes, properties and
// property_values for the custom ones. Custom properties are scoped to the
// category through the products that reference their values.
type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

type valueRow struct {
	ID         int64  `db:"id"`
	PropertyID int64  `db:"property_id"`
	Value      string `db:"value"`
	Label      string `db:"label"`
	Priority   int    `db:"priority"`
}

type propertyRow struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Slug     string `db:"slug"`
	Unit     string `db:"unit"`
	Priority int    `db:"priority"`
}

func (r *PGRepository) ListByCategory(ctx context.Context, categoryID int64) ([]model.AttributeDefinition, error) {
	defs := []model.AttributeDefinition{}

	system := []struct {
		ref      model.AttributeRef
		name     string
		table    string
		priority int
	}{
		{model.Color(), "Color", "colors", colorPriority},
		{model.Size(), "Size", "sizes", sizePriority},
		{model.Gender(), "Gender", "genders", genderPriority},
	}

	for _, sys := range system {
		values, err := r.systemValues(ctx, sys.table)
		if err != nil {
			return nil, err
		}
		defs = append(defs, model.AttributeDefinition{
			Ref:         sys.ref,
			Slug:        string(sys.ref.Kind),
			DisplayName: sys.name,
			Priority:    sys.priority,
			Values:      values,
		})
	}

	custom, err := r.customDefinitions(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return append(defs, custom...), nil
}

func (r *PGRepository) systemValues(ctx context.Context, table string) ([]model.AttributeValue, error) {
	// Table name comes from the fixed list above, never from input.
	query := `SELECT id, title AS value, '' AS label, priority FROM ` + table + ` ORDER BY priority, id`
	rows := []valueRow{}
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return toValues(rows), nil
}

func (r *PGRepository) customDefinitions(ctx context.Context, categoryID int64) ([]model.AttributeDefinition, error) {
	propQuery := `
        SELECT p.id, p.name, p.slug, COALESCE(m.symbol, '') AS unit, p.priority
        FROM properties p
        LEFT JOIN measures m ON m.id = p.measure_id
        WHERE EXISTS (
            SELECT 1
            FROM property_values v
            JOIN product_properties pp ON pp.property_value_id = v.id
            JOIN products pr ON pr.id = pp.product_id
            WHERE v.property_id = p.id AND pr.category_id = $1
        )
        ORDER BY p.priority, p.id
    `
	props := []propertyRow{}
	if err := r.DB.SelectContext(ctx, &props, propQuery, categoryID); err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}

	valQuery, args, err := sqlx.In(`
        SELECT id, property_id, value, COALESCE(label, '') AS label, priority
        FROM property_values
        WHERE property_id IN (?)
        ORDER BY priority, id
    `, ids)
	if err != nil {
		return nil, err
	}
	valQuery = r.DB.Rebind(valQuery)

	values := []valueRow{}
	if err := r.DB.SelectContext(ctx, &values, valQuery, args...); err != nil {
		return nil, err
	}

	byProperty := make(map[int64][]model.AttributeValue, len(props))
	for _, v := range values {
		byProperty[v.PropertyID] = append(byProperty[v.PropertyID], model.AttributeValue{
			ID:           v.ID,
			RawValue:     v.Value,
			DisplayLabel: v.Label,
			Priority:     v.Priority,
		})
	}

	defs := make([]model.AttributeDefinition, 0, len(props))
	for _, p := range props {
		defs = append(defs, model.AttributeDefinition{
			Ref:         model.CustomProperty(p.ID),
			Slug:        p.Slug,
			DisplayName: p.Name,
			UnitSymbol:  p.Unit,
			Priority:    p.Priority,
			Values:      byProperty[p.ID],
		})
	}
	return defs, nil
}

func toValues(rows []valueRow) []model.AttributeValue {
	out := make([]model.AttributeValue, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.AttributeValue{
			ID:           row.ID,
			RawValue:     row.Value,
			DisplayLabel: row.Label,
			Priority:     row.Priority,
		})
	}
	return out
}
