package dto

import (
	"net/url"
	"strconv"
	"strings"
)

// Defaults mirror the storefront page size.
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// CatalogQuery is the boundary payload for one catalog request:
// filters keyed by attribute slug (or bare property ID), optional price
// bounds, sort, brand/type selections and pagination. Values arrive as
// strings and are normalized downstream; anything malformed is dropped, not
// rejected.
type CatalogQuery struct {
	Filters      map[string][]string `json:"filters"`
	MinPrice     string              `json:"min_price"`
	MaxPrice     string              `json:"max_price"`
	Sort         string              `json:"sort"`
	Brands       []string            `json:"brands"`
	ProductTypes []string            `json:"product_types"`
	Page         int                 `json:"page"`
	PerPage      int                 `json:"per_page"`
}

// ParseQuery reads a CatalogQuery from URL query parameters. Attribute
// filters use the filters[slug] form, with repeated parameters or
// comma-separated lists both accepted.
func ParseQuery(values url.Values) *CatalogQuery {
	q := &CatalogQuery{
		Filters:      make(map[string][]string),
		MinPrice:     values.Get("min_price"),
		MaxPrice:     values.Get("max_price"),
		Sort:         values.Get("sort"),
		Brands:       splitAll(values["brands"]),
		ProductTypes: splitAll(values["product_types"]),
		Page:         atoiDefault(values.Get("page"), 1),
		PerPage:      atoiDefault(values.Get("per_page"), DefaultPerPage),
	}

	for key, vals := range values {
		slug, ok := filterSlug(key)
		if !ok {
			continue
		}
		q.Filters[slug] = append(q.Filters[slug], splitAll(vals)...)
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > MaxPerPage {
		q.PerPage = DefaultPerPage
	}
	return q
}

// filterSlug extracts "color" from "filters[color]" or "filters[color][]".
func filterSlug(key string) (string, bool) {
	if !strings.HasPrefix(key, "filters[") {
		return "", false
	}
	rest := strings.TrimPrefix(key, "filters[")
	end := strings.IndexByte(rest, ']')
	if end <= 0 {
		return "", false
	}
	return rest[:end], true
}

func splitAll(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ParseIDs converts string IDs to int64, silently dropping anything
// non-numeric.
func ParseIDs(vals []string) []int64 {
	out := make([]int64, 0, len(vals))
	for _, v := range vals {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// ParsePrice parses one price bound; malformed or negative input counts as
// absent.
func ParsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}
