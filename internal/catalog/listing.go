package catalog

import (
	"sort"

	"catalog/internal/models"
)

// ListOptions narrows and orders a product listing.
type ListOptions struct {
	Viewer   models.Viewer
	Query    string
	Category string
	Brand    string

	SortByPrice bool
	Descending  bool

	// Page is 1-based. A zero Page or Limit returns every match.
	Page  int
	Limit int
}

// Page is one window of a listing together with the number of matches
// before paging.
type Page struct {
	Products []models.Product
	Total    int
}

// List filters products for opts.Viewer, searches the result, applies the
// category and brand facets, sorts and pages it. The input is not modified.
func List(products []models.Product, opts ListOptions) Page {
	matches := Search(VisibleTo(products, opts.Viewer), opts.Query)
	matches = byFacet(matches, opts.Category, opts.Brand)

	if opts.SortByPrice {
		sorted := make([]models.Product, len(matches))
		copy(sorted, matches)
		sort.SliceStable(sorted, func(i, j int) bool {
			if opts.Descending {
				return sorted[i].Price > sorted[j].Price
			}
			return sorted[i].Price < sorted[j].Price
		})
		matches = sorted
	}

	total := len(matches)
	if opts.Page > 0 && opts.Limit > 0 {
		// Bounds are compared before multiplying so huge pages cannot overflow.
		start := total
		if opts.Page-1 <= total/opts.Limit {
			start = min((opts.Page-1)*opts.Limit, total)
		}
		end := total
		if opts.Limit < total-start {
			end = start + opts.Limit
		}
		matches = matches[start:end]
	}
	if matches == nil {
		matches = []models.Product{}
	}
	return Page{Products: matches, Total: total}
}

func byFacet(products []models.Product, category, brand string) []models.Product {
	if category == "" && brand == "" {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if brand != "" && p.Brand != brand {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Summary counts products by availability.
type Summary struct {
	Total      int `json:"total"`
	Available  int `json:"available"`
	OutOfStock int `json:"outOfStock"`
	Deleted    int `json:"deleted"`
}

// Summarize counts the products in each availability bucket. Deleted
// products are counted as deleted regardless of stock.
func Summarize(products []models.Product) Summary {
	s := Summary{Total: len(products)}
	for _, p := range products {
		switch {
		case p.IsDeleted():
			s.Deleted++
		case p.IsAvailable():
			s.Available++
		default:
			s.OutOfStock++
		}
	}
	return s
}
