// Package catalog filters, searches and pages an already-fetched product list.
// Nothing here touches the network after the initial load.
package catalog

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/Skotchmaster/pawtopia/internal/models"
)

const (
	PageSize = 8
	AllTypes = "All"
)

// Types is the type selector shown above the product grid.
var Types = []string{AllTypes, "Fur Clothing", "Toys", "Food", "Care Products"}

// folded returns the case-folded form of s. A Caser holds state, so each call gets its own.
func folded(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// ByType keeps products whose type matches typ case-insensitively. An empty
// typ or "All" keeps everything.
func ByType(products []models.Product, typ string) []models.Product {
	want := folded(typ)
	if want == "" || want == folded(AllTypes) {
		return products
	}
	return lo.Filter(products, func(p models.Product, _ int) bool {
		return folded(p.ProductType) == want
	})
}

// Search keeps products whose name or description contains query, ignoring case.
func Search(products []models.Product, query string) []models.Product {
	q := folded(query)
	if q == "" {
		return products
	}
	return lo.Filter(products, func(p models.Product, _ int) bool {
		return strings.Contains(folded(p.ProductName), q) || strings.Contains(folded(p.Description), q)
	})
}

// Filter applies both predicates; the order does not matter.
func Filter(products []models.Product, typ, query string) []models.Product {
	return Search(ByType(products, typ), query)
}

// PageCount is ceil(n / PageSize).
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// Page returns the 1-based page k, i.e. items [8(k-1), min(8k, n)).
// Out-of-range pages are empty.
func Page(products []models.Product, k int) []models.Product {
	if k < 1 || k > PageCount(len(products)) {
		return []models.Product{}
	}
	from := (k - 1) * PageSize
	to := min(from+PageSize, len(products))
	return products[from:to]
}
