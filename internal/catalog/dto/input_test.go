package dto

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery_FilterForms(t *testing.T) {
	t.Run("bracket form", func(t *testing.T) {
		q := ParseQuery(url.Values{"filters[color]": {"1", "2"}})
		assert.Equal(t, []string{"1", "2"}, q.Filters["color"])
	})

	t.Run("array bracket form", func(t *testing.T) {
		q := ParseQuery(url.Values{"filters[size][]": {"21"}})
		assert.Equal(t, []string{"21"}, q.Filters["size"])
	})

	t.Run("comma separated list", func(t *testing.T) {
		q := ParseQuery(url.Values{"filters[color]": {"1,2, 3"}})
		assert.Equal(t, []string{"1", "2", "3"}, q.Filters["color"])
	})

	t.Run("numeric property key", func(t *testing.T) {
		q := ParseQuery(url.Values{"filters[42]": {"7"}})
		assert.Equal(t, []string{"7"}, q.Filters["42"])
	})

	t.Run("malformed bracket keys are ignored", func(t *testing.T) {
		q := ParseQuery(url.Values{"filters[]": {"1"}, "filters": {"2"}})
		assert.Empty(t, q.Filters)
	})
}

func TestParseQuery_Pagination(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q := ParseQuery(url.Values{})
		assert.Equal(t, 1, q.Page)
		assert.Equal(t, DefaultPerPage, q.PerPage)
	})

	t.Run("explicit values", func(t *testing.T) {
		q := ParseQuery(url.Values{"page": {"3"}, "per_page": {"24"}})
		assert.Equal(t, 3, q.Page)
		assert.Equal(t, 24, q.PerPage)
	})

	t.Run("out of range falls back", func(t *testing.T) {
		q := ParseQuery(url.Values{"page": {"0"}, "per_page": {"5000"}})
		assert.Equal(t, 1, q.Page)
		assert.Equal(t, DefaultPerPage, q.PerPage)
	})

	t.Run("garbage falls back", func(t *testing.T) {
		q := ParseQuery(url.Values{"page": {"abc"}, "per_page": {"-1"}})
		assert.Equal(t, 1, q.Page)
		assert.Equal(t, DefaultPerPage, q.PerPage)
	})
}

func TestParseQuery_ScalarFields(t *testing.T) {
	q := ParseQuery(url.Values{
		"min_price":     {"10.5"},
		"max_price":     {"99"},
		"sort":          {"price_asc"},
		"brands":        {"1,2"},
		"product_types": {"7"},
	})

	assert.Equal(t, "10.5", q.MinPrice)
	assert.Equal(t, "99", q.MaxPrice)
	assert.Equal(t, "price_asc", q.Sort)
	assert.Equal(t, []string{"1", "2"}, q.Brands)
	assert.Equal(t, []string{"7"}, q.ProductTypes)
}

func TestParseIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 3}, ParseIDs([]string{"1", "x", "3", "2.5"}))
	assert.Empty(t, ParseIDs(nil))
}

func TestParsePrice(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := ParsePrice("12.50")
		require.NotNil(t, p)
		assert.Equal(t, 12.5, *p)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, ParsePrice(""))
	})

	t.Run("malformed", func(t *testing.T) {
		assert.Nil(t, ParsePrice("cheap"))
	})

	t.Run("negative", func(t *testing.T) {
		assert.Nil(t, ParsePrice("-5"))
	})
}
