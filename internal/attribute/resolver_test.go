package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricestyle/catalog-service/internal/model"
)

func testDefs() []model.AttributeDefinition {
	return []model.AttributeDefinition{
		{Ref: model.CustomProperty(42), Slug: "screen-size", DisplayName: "Screen size", Priority: 5},
		{Ref: model.Color(), Slug: "color", DisplayName: "Color", Priority: 1},
		{Ref: model.CustomProperty(43), Slug: "material", DisplayName: "Material", Priority: 3},
	}
}

func TestResolve_SystemSlugs(t *testing.T) {
	// System slugs resolve even when the category defines no attributes.
	r := NewResolver(nil)

	for key, want := range map[string]model.AttributeRef{
		"color":  model.Color(),
		"size":   model.Size(),
		"gender": model.Gender(),
	} {
		ref, ok := r.Resolve(key)
		require.True(t, ok, key)
		assert.Equal(t, want, ref)
	}
}

func TestResolve_CustomBySlug(t *testing.T) {
	r := NewResolver(testDefs())

	ref, ok := r.Resolve("screen-size")
	require.True(t, ok)
	assert.Equal(t, model.CustomProperty(42), ref)
}

func TestResolve_CustomByNumericID(t *testing.T) {
	r := NewResolver(testDefs())

	t.Run("known property", func(t *testing.T) {
		ref, ok := r.Resolve("43")
		require.True(t, ok)
		assert.Equal(t, model.CustomProperty(43), ref)
	})

	t.Run("unknown property", func(t *testing.T) {
		_, ok := r.Resolve("999")
		assert.False(t, ok)
	})
}

func TestResolve_UnknownKey(t *testing.T) {
	r := NewResolver(testDefs())

	_, ok := r.Resolve("does-not-exist")
	assert.False(t, ok)
}

func TestDefinitions_OrderedByPriority(t *testing.T) {
	r := NewResolver(testDefs())

	defs := r.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "color", defs[0].Slug)
	assert.Equal(t, "material", defs[1].Slug)
	assert.Equal(t, "screen-size", defs[2].Slug)
}

func TestDefinition_Lookup(t *testing.T) {
	r := NewResolver(testDefs())

	def, ok := r.Definition(model.CustomProperty(42))
	require.True(t, ok)
	assert.Equal(t, "screen-size", def.Slug)

	_, ok = r.Definition(model.Size())
	assert.False(t, ok)
}
