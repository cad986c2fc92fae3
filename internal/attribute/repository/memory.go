package repository

import (
	"context"

	"github.com/ricestyle/catalog-service/internal/model"
)

// MemoryRepository serves a fixed attribute catalog per category. Used by
// tests and by embedders that load reference data at startup.
type MemoryRepository struct {
	byCategory map[int64][]model.AttributeDefinition
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byCategory: make(map[int64][]model.AttributeDefinition)}
}

// SetCategory replaces the catalog for one category.
func (r *MemoryRepository) SetCategory(categoryID int64, defs []model.AttributeDefinition) {
	r.byCategory[categoryID] = defs
}

func (r *MemoryRepository) ListByCategory(ctx context.Context, categoryID int64) ([]model.AttributeDefinition, error) {
	return r.byCategory[categoryID], nil
}
