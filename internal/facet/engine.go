// Package facet computes the sidebar: for every attribute in the catalog,
// which of its values would still yield at least one in-stock result if
// selected next.
package facet

import (
	"context"
	"sort"

	"github.com/ricestyle/catalog-service/internal/filter"
	"github.com/ricestyle/catalog-service/internal/index"
	"github.com/ricestyle/catalog-service/internal/model"
)

// Engine computes per-attribute availability against the fact index. It
// reuses the filter package's predicate builder; the only difference from the
// result-set query is that each attribute is evaluated with its own selection
// removed.
type Engine struct {
	idx index.Index
}

func NewEngine(idx index.Index) *Engine {
	return &Engine{idx: idx}
}

// ComputeFacets returns one FacetResult per catalog attribute, in catalog
// (priority) order. Availability for attribute A is decided under the active
// criteria minus A's own selection, so selecting "Red" keeps "Blue"
// selectable. All known values of A are reported, available or not; values
// are ordered by priority then value ID, and duplicate raw values collapse to
// the first seen.
func (e *Engine) ComputeFacets(ctx context.Context, criteria model.FilterCriteria, defs []model.AttributeDefinition) ([]model.FacetResult, error) {
	if len(defs) == 0 {
		return []model.FacetResult{}, nil
	}

	// One predicate per attribute, all answered by a single batched index
	// pass instead of a scan per attribute.
	perAttr := make(map[model.AttributeRef]index.Predicate, len(defs))
	for _, def := range defs {
		ref := def.Ref
		perAttr[ref] = filter.BuildPredicate(criteria, &ref)
	}

	available, err := e.idx.AvailableValues(ctx, perAttr)
	if err != nil {
		return nil, err
	}

	ordered := make([]model.AttributeDefinition, len(defs))
	copy(ordered, defs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	results := make([]model.FacetResult, 0, len(ordered))
	for _, def := range ordered {
		results = append(results, model.FacetResult{
			Attribute:   def.Ref,
			Slug:        def.Slug,
			DisplayName: def.DisplayName,
			UnitSymbol:  def.UnitSymbol,
			Values:      buildValues(def.Values, available[def.Ref]),
		})
	}
	return results, nil
}

func buildValues(values []model.AttributeValue, available map[int64]bool) []model.FacetValue {
	ordered := make([]model.AttributeValue, len(values))
	copy(ordered, values)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	seen := make(map[string]bool, len(ordered))
	out := make([]model.FacetValue, 0, len(ordered))
	for _, v := range ordered {
		if seen[v.RawValue] {
			continue
		}
		seen[v.RawValue] = true
		out = append(out, model.FacetValue{
			ValueID:     v.ID,
			RawValue:    v.RawValue,
			Label:       v.Label(),
			Priority:    v.Priority,
			IsAvailable: available[v.ID],
		})
	}
	return out
}
