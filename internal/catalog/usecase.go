package catalog

import (
	"context"

	"github.com/ricestyle/catalog-service/internal/catalog/dto"
	"github.com/ricestyle/catalog-service/internal/model"
)

// UseCase is the read path for one category page: filtered product list with
// sorting and pagination, the availability sidebar, price range and brand
// summary. A category with nothing eligible yields the empty view, never an
// error.
type UseCase interface {
	BuildCatalogView(ctx context.Context, categoryID int64, q *dto.CatalogQuery) (*model.CatalogView, error)
}
