package attribute

import (
	"context"

	"github.com/ricestyle/catalog-service/internal/model"
)

// Repository loads the attribute catalog for one category: the three system
// attributes plus every custom property that appears on the category's
// products, each with its full value list. Reference data; ordered by
// priority ascending.
type Repository interface {
	ListByCategory(ctx context.Context, categoryID int64) ([]model.AttributeDefinition, error)
}
