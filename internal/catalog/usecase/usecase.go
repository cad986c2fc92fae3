package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ricestyle/catalog-service/internal/attribute"
	"github.com/ricestyle/catalog-service/internal/catalog"
	"github.com/ricestyle/catalog-service/internal/catalog/dto"
	"github.com/ricestyle/catalog-service/internal/facet"
	"github.com/ricestyle/catalog-service/internal/filter"
	"github.com/ricestyle/catalog-service/internal/index"
	"github.com/ricestyle/catalog-service/internal/model"
	"github.com/ricestyle/catalog-service/pkg/cache"
	"github.com/ricestyle/catalog-service/pkg/logger"
)

// Cache TTLs follow how often the underlying data moves: the base product set
// shifts with stock, the price range only with catalog composition, and the
// attribute catalog is near-static reference data.
const (
	baseSetTTL    = time.Minute
	priceRangeTTL = 10 * time.Minute
	attrsTTL      = time.Hour
)

// Options tune the orchestrator.
type Options struct {
	// RequestTimeout bounds one whole BuildCatalogView call. Zero means the
	// caller's context is the only deadline.
	RequestTimeout time.Duration
}

type catalogUseCase struct {
	attrs  attribute.Repository
	filter *filter.Engine
	facets *facet.Engine
	idx    index.Index
	cache  cache.Cache
	logger logger.Logger
	opts   Options
}

func NewCatalogUseCase(
	attrs attribute.Repository,
	filterEngine *filter.Engine,
	facetEngine *facet.Engine,
	idx index.Index,
	c cache.Cache,
	log logger.Logger,
	opts Options,
) catalog.UseCase {
	return &catalogUseCase{
		attrs:  attrs,
		filter: filterEngine,
		facets: facetEngine,
		idx:    idx,
		cache:  c,
		logger: log,
		opts:   opts,
	}
}

func (uc *catalogUseCase) BuildCatalogView(ctx context.Context, categoryID int64, q *dto.CatalogQuery) (*model.CatalogView, error) {
	if uc.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.RequestTimeout)
		defer cancel()
	}

	defs, err := uc.loadAttributes(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	resolver := attribute.NewResolver(defs)
	criteria := uc.resolveCriteria(categoryID, q, resolver)

	// The unfiltered eligible set doubles as the "does this category have
	// anything at all" probe. Empty means the empty view, also while the
	// index is mid rebuild.
	baseIDs, err := uc.baseProductIDs(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(baseIDs) == 0 {
		return model.EmptyCatalogView(q.Page, q.PerPage), nil
	}

	view := &model.CatalogView{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := uc.filter.MatchingProductStats(gctx, criteria)
		if err != nil {
			return err
		}
		view.Products = paginate(sortStats(stats, q.Sort), q.Page, q.PerPage)
		return nil
	})

	g.Go(func() error {
		facets, err := uc.facets.ComputeFacets(gctx, criteria, defs)
		if err != nil {
			return err
		}
		view.Filters = facets
		return nil
	})

	g.Go(func() error {
		pr, err := uc.priceRange(gctx, categoryID)
		if err != nil {
			return err
		}
		view.PriceRange = pr
		return nil
	})

	g.Go(func() error {
		brands, err := uc.idx.BrandCounts(gctx, filter.BuildPredicate(criteria, nil))
		if err != nil {
			return err
		}
		view.Brands = brands
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// resolveCriteria normalizes the boundary payload: slugs resolve through the
// category's attribute catalog, unknown keys and malformed numbers are
// dropped silently. Validation lives upstream.
func (uc *catalogUseCase) resolveCriteria(categoryID int64, q *dto.CatalogQuery, resolver *attribute.Resolver) model.FilterCriteria {
	criteria := model.FilterCriteria{
		CategoryID:     categoryID,
		Selections:     make(map[model.AttributeRef][]int64, len(q.Filters)),
		MinPrice:       dto.ParsePrice(q.MinPrice),
		MaxPrice:       dto.ParsePrice(q.MaxPrice),
		BrandIDs:       dto.ParseIDs(q.Brands),
		ProductTypeIDs: dto.ParseIDs(q.ProductTypes),
	}

	for slug, raw := range q.Filters {
		ref, ok := resolver.Resolve(slug)
		if !ok {
			uc.logger.Debug("ignoring unknown filter key", zap.String("key", slug))
			continue
		}
		ids := dto.ParseIDs(raw)
		if len(ids) == 0 {
			continue
		}
		criteria.Selections[ref] = append(criteria.Selections[ref], ids...)
	}

	if criteria.MinPrice != nil && criteria.MaxPrice != nil && *criteria.MinPrice > *criteria.MaxPrice {
		criteria.MinPrice, criteria.MaxPrice = criteria.MaxPrice, criteria.MinPrice
	}
	return criteria.Normalize()
}

func (uc *catalogUseCase) loadAttributes(ctx context.Context, categoryID int64) ([]model.AttributeDefinition, error) {
	key := fmt.Sprintf("catalog:attrs:%d", categoryID)
	data, err := uc.cache.Remember(ctx, key, attrsTTL, func() ([]byte, error) {
		defs, err := uc.attrs.ListByCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(defs)
	})
	if err != nil {
		return nil, err
	}
	var defs []model.AttributeDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (uc *catalogUseCase) baseProductIDs(ctx context.Context, categoryID int64) ([]int64, error) {
	key := fmt.Sprintf("catalog:base:%d", categoryID)
	data, err := uc.cache.Remember(ctx, key, baseSetTTL, func() ([]byte, error) {
		ids, err := uc.filter.MatchingProductIDs(ctx, model.FilterCriteria{CategoryID: categoryID})
		if err != nil {
			return nil, err
		}
		return json.Marshal(ids)
	})
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (uc *catalogUseCase) priceRange(ctx context.Context, categoryID int64) (model.PriceRange, error) {
	key := fmt.Sprintf("catalog:pricerange:%d", categoryID)
	data, err := uc.cache.Remember(ctx, key, priceRangeTTL, func() ([]byte, error) {
		pr, err := uc.idx.PriceRange(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(pr)
	})
	if err != nil {
		return model.PriceRange{}, err
	}
	var pr model.PriceRange
	err = json.Unmarshal(data, &pr)
	return pr, err
}

func sortStats(stats []model.ProductSummary, sortBy string) []model.ProductSummary {
	out := make([]model.ProductSummary, len(stats))
	copy(out, stats)
	switch sortBy {
	case model.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].MinPrice < out[j].MinPrice })
	case model.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].MinPrice > out[j].MinPrice })
	default: // newest
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

func paginate(stats []model.ProductSummary, page, perPage int) model.ProductPage {
	total := len(stats)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return model.ProductPage{
		Items:   stats[start:end],
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}
}
