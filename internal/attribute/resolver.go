package attribute

import (
	"sort"
	"strconv"

	"github.com/ricestyle/catalog-service/internal/model"
)

// Resolver maps incoming filter keys to attribute identities for one
// category. The fixed slugs "color", "size" and "gender" always resolve to
// the system attributes; anything else resolves through the category's custom
// properties, either by slug or by a bare numeric property ID (the request
// format allows both). Unknown keys simply fail to resolve and the caller
// drops them.
type Resolver struct {
	defs   []model.AttributeDefinition
	bySlug map[string]model.AttributeRef
	byRef  map[model.AttributeRef]model.AttributeDefinition
}

func NewResolver(defs []model.AttributeDefinition) *Resolver {
	r := &Resolver{
		defs:   make([]model.AttributeDefinition, len(defs)),
		bySlug: make(map[string]model.AttributeRef, len(defs)),
		byRef:  make(map[model.AttributeRef]model.AttributeDefinition, len(defs)),
	}
	copy(r.defs, defs)
	sort.SliceStable(r.defs, func(i, j int) bool { return r.defs[i].Priority < r.defs[j].Priority })

	for _, def := range r.defs {
		r.bySlug[def.Slug] = def.Ref
		r.byRef[def.Ref] = def
	}
	return r
}

// Resolve maps one filter key to an attribute reference.
func (r *Resolver) Resolve(key string) (model.AttributeRef, bool) {
	switch key {
	case string(model.KindColor):
		return model.Color(), true
	case string(model.KindSize):
		return model.Size(), true
	case string(model.KindGender):
		return model.Gender(), true
	}
	if ref, ok := r.bySlug[key]; ok {
		return ref, true
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		ref := model.CustomProperty(id)
		if _, ok := r.byRef[ref]; ok {
			return ref, true
		}
	}
	return model.AttributeRef{}, false
}

// Definition returns the catalog entry for a resolved reference.
func (r *Resolver) Definition(ref model.AttributeRef) (model.AttributeDefinition, bool) {
	def, ok := r.byRef[ref]
	return def, ok
}

// Definitions returns the catalog ordered by priority ascending.
func (r *Resolver) Definitions() []model.AttributeDefinition {
	return r.defs
}
