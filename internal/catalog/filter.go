package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterSchemes keeps the schemes in categoryID (all when empty) whose title
// or description contains query, ignoring case (all when query is empty).
// Input order is preserved.
func FilterSchemes(schemes []Scheme, categoryID, query string) []Scheme {
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]Scheme, 0, len(schemes))
	for _, s := range schemes {
		if categoryID != "" && s.CategoryID != categoryID {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(s.Title), needle) &&
			!strings.Contains(fold.String(s.Description), needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FindCategory returns the category with id, if present.
func FindCategory(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
