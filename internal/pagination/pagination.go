// Package pagination computes page metadata, navigation links and Link headers.
package pagination

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of items skipped before the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the page within the whole collection.
type Meta struct {
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
}

// Href wraps a single link target.
type Href struct {
	Href string `json:"href"`
}

// Links are the navigation links of a page.
type Links struct {
	Self  Href  `json:"self"`
	First Href  `json:"first"`
	Last  Href  `json:"last"`
	Prev  *Href `json:"prev,omitempty"`
	Next  *Href `json:"next,omitempty"`
}

// Info is the result of Calculate.
type Info struct {
	Meta  Meta  `json:"_meta"`
	Links Links `json:"_links"`
}

// Rel is an ordered relation name and target pair.
type Rel struct {
	Name string
	Href string
}

// Navigation returns every link except self, in first, last, prev, next order.
func (l Links) Navigation() []Rel {
	rels := []Rel{
		{Name: "first", Href: l.First.Href},
		{Name: "last", Href: l.Last.Href},
	}
	if l.Prev != nil {
		rels = append(rels, Rel{Name: "prev", Href: l.Prev.Href})
	}
	if l.Next != nil {
		rels = append(rels, Rel{Name: "next", Href: l.Next.Href})
	}
	return rels
}

// Calculate builds page metadata and links for baseURL.
// Zero page or limit fall back to the defaults; other values are used as given.
func Calculate(totalItems int64, page, limit int, baseURL string) Info {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))

	links := Links{
		Self:  Href{Href: pageHref(baseURL, page, limit)},
		First: Href{Href: pageHref(baseURL, 1, limit)},
		Last:  Href{Href: pageHref(baseURL, totalPages, limit)},
	}
	if page > 1 {
		links.Prev = &Href{Href: pageHref(baseURL, page-1, limit)}
	}
	if page < totalPages {
		links.Next = &Href{Href: pageHref(baseURL, page+1, limit)}
	}

	return Info{
		Meta: Meta{
			TotalItems:   totalItems,
			ItemsPerPage: limit,
			CurrentPage:  page,
			TotalPages:   totalPages,
		},
		Links: links,
	}
}

// LinkHeader formats links as an RFC 8288 Link header value, omitting self.
func LinkHeader(links Links) string {
	return FormatLinkHeader(links.Navigation())
}

// FormatLinkHeader joins rels as `<href>; rel="name"` separated by ", ".
func FormatLinkHeader(rels []Rel) string {
	parts := make([]string, 0, len(rels))
	for _, r := range rels {
		parts = append(parts, fmt.Sprintf(`<%s>; rel="%s"`, r.Href, r.Name))
	}
	return strings.Join(parts, ", ")
}

// Paginate returns the items of the given page. Out-of-range pages yield an empty slice.
func Paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Window returns items[offset:offset+limit] clamped to the slice bounds.
func Window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func pageHref(baseURL string, page, limit int) string {
	return fmt.Sprintf("%s?page=%d&limit=%d", baseURL, page, limit)
}
