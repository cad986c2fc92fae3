package model

import "strconv"

// AttributeKind discriminates the system attributes every variant carries
// (color, size, gender) from merchant-defined custom properties. The kind is
// part of the attribute identity, so system attributes can never collide with
// auto-assigned property IDs.
type AttributeKind string

const (
	KindColor  AttributeKind = "color"
	KindSize   AttributeKind = "size"
	KindGender AttributeKind = "gender"
	KindCustom AttributeKind = "custom"
)

// AttributeRef identifies one filterable attribute. PropertyID is set only for
// custom properties. The zero value is invalid.
type AttributeRef struct {
	Kind       AttributeKind `db:"attribute_kind" json:"kind"`
	PropertyID int64         `db:"property_id" json:"property_id,omitempty"`
}

func Color() AttributeRef  { return AttributeRef{Kind: KindColor} }
func Size() AttributeRef   { return AttributeRef{Kind: KindSize} }
func Gender() AttributeRef { return AttributeRef{Kind: KindGender} }

func CustomProperty(propertyID int64) AttributeRef {
	return AttributeRef{Kind: KindCustom, PropertyID: propertyID}
}

func (r AttributeRef) IsSystem() bool { return r.Kind != KindCustom }

func (r AttributeRef) IsZero() bool { return r.Kind == "" }

// String renders a stable key usable in cache keys and logs.
func (r AttributeRef) String() string {
	if r.Kind != KindCustom {
		return string(r.Kind)
	}
	return "custom:" + strconv.FormatInt(r.PropertyID, 10)
}

// AttributeValue is one selectable value of an attribute.
type AttributeValue struct {
	ID           int64  `db:"id" json:"id"`
	RawValue     string `db:"value" json:"value"`
	DisplayLabel string `db:"label" json:"label"` // Empty means: fall back to RawValue
	Priority     int    `db:"priority" json:"priority"`
}

// Label returns DisplayLabel, falling back to RawValue when absent.
func (v AttributeValue) Label() string {
	if v.DisplayLabel != "" {
		return v.DisplayLabel
	}
	return v.RawValue
}

// AttributeDefinition is the immutable description of one filterable attribute
// within a category: identity, display metadata and the full value list.
// Loaded once per category context and ordered by Priority ascending.
type AttributeDefinition struct {
	Ref         AttributeRef     `json:"ref"`
	Slug        string           `json:"slug"`
	DisplayName string           `json:"name"`
	UnitSymbol  string           `json:"unit,omitempty"` // Nullable in storage
	Priority    int              `json:"priority"`
	Values      []AttributeValue `json:"values"`
}
