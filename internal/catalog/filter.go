package catalog

import "strings"

// Filter returns the products whose code or description contains query,
// case-insensitively and ignoring surrounding whitespace. An empty query
// matches everything. Catalog order is kept.
func Filter(c *Catalog, query string) []Product {
	if c == nil {
		return []Product{}
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return c.All()
	}

	matches := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Code), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			matches = append(matches, p)
		}
	}
	return matches
}
