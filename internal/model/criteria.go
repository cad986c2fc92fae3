package model

// FilterCriteria is one user's current filter state, passed explicitly through
// every layer. Values inside one attribute selection are OR-combined, distinct
// attributes are AND-combined, price bounds are inclusive.
type FilterCriteria struct {
	CategoryID     int64
	Selections     map[AttributeRef][]int64
	MinPrice       *float64
	MaxPrice       *float64
	BrandIDs       []int64
	ProductTypeIDs []int64
}

// Normalize returns a copy with empty attribute selections dropped. A selected
// attribute with no values means "no constraint", never "match nothing".
func (c FilterCriteria) Normalize() FilterCriteria {
	out := c
	out.Selections = make(map[AttributeRef][]int64, len(c.Selections))
	for ref, values := range c.Selections {
		if ref.IsZero() || len(values) == 0 {
			continue
		}
		out.Selections[ref] = values
	}
	return out
}

// WithoutAttribute returns a copy with the selection for one attribute
// removed. The facet engine uses it so that a selected value never suppresses
// its own sibling options.
func (c FilterCriteria) WithoutAttribute(ref AttributeRef) FilterCriteria {
	out := c
	out.Selections = make(map[AttributeRef][]int64, len(c.Selections))
	for r, values := range c.Selections {
		if r == ref {
			continue
		}
		out.Selections[r] = values
	}
	return out
}

// Selected reports whether the criteria constrain the given attribute.
func (c FilterCriteria) Selected(ref AttributeRef) bool {
	return len(c.Selections[ref]) > 0
}
