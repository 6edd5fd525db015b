package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DefaultPageSize is the number of rows per list page.
const DefaultPageSize = 20

// Sort fields.
const (
	SortName    = "name"
	SortCreated = "creationDate"
)

// Query filters, sorts and pages a list view.
type Query struct {
	// Filter is a case-insensitive substring matched against name or
	// description.
	Filter     string
	SortField  string
	Descending bool
	// Page is 1-based.
	Page     int
	PageSize int
}

// SetFilter changes the filter text and returns to the first page when it
// differs.
func (q *Query) SetFilter(s string) {
	if s == q.Filter {
		return
	}
	q.Filter = s
	q.Page = 1
}

// Page is one page of a filtered list.
type Page[T any] struct {
	Items []T
	// Matches counts items passing the filter; Total counts all items.
	Matches     int
	Total       int
	PagesCount  int
	CurrentPage int
}

// CountText renders the filter counter, e.g. "3 matches".
func (p Page[T]) CountText() string {
	if p.Matches == 1 {
		return "1 match"
	}
	return fmt.Sprintf("%d matches", p.Matches)
}

// Counter renders the header counter, e.g. "(24)".
func (p Page[T]) Counter() string { return fmt.Sprintf("(%d)", p.Matches) }

// Searchable is implemented by rows a Query can filter and sort.
type Searchable interface {
	SearchFields() []string
	SortKey(field string) string
}

func (c Collection) SearchFields() []string { return []string{c.Name, c.Description} }

func (c Collection) SortKey(field string) string {
	if field == SortCreated {
		return c.Created.UTC().Format("20060102150405")
	}
	return c.Name
}

func (g Group) SearchFields() []string { return []string{g.Name, g.Description} }

func (g Group) SortKey(field string) string {
	if field == SortCreated {
		return g.Created.UTC().Format("20060102150405")
	}
	return g.Name
}

func (i Index) SearchFields() []string { return []string{i.Name} }

func (i Index) SortKey(field string) string {
	if field == SortCreated {
		return i.Created.UTC().Format("20060102150405")
	}
	return i.Name
}

// Run applies q to items. Items keep their order unless a sort field is set.
func Run[T Searchable](items []T, q Query) Page[T] {
	filter := strings.ToLower(q.Filter)
	matched := make([]T, 0, len(items))
	for _, it := range items {
		if filter == "" || matches(it, filter) {
			matched = append(matched, it)
		}
	}

	if q.SortField != "" {
		slices.SortStableFunc(matched, func(a, b T) int {
			c := cmp.Compare(a.SortKey(q.SortField), b.SortKey(q.SortField))
			if q.Descending {
				return -c
			}
			return c
		})
	}

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (len(matched) + size - 1) / size
	page := max(q.Page, 1)
	if pages > 0 && page > pages {
		page = pages
	}

	start := min((page-1)*size, len(matched))
	end := min(start+size, len(matched))
	return Page[T]{
		Items:       matched[start:end],
		Matches:     len(matched),
		Total:       len(items),
		PagesCount:  pages,
		CurrentPage: page,
	}
}

func matches(it Searchable, filter string) bool {
	for _, f := range it.SearchFields() {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}
