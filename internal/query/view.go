package query

import "github.com/roach88/numberdesk/internal/record"

// View holds query parameters under the table's interaction rules:
// changing the search or page size returns to page 1, header clicks toggle
// the sort, and page navigation stays inside the last observed range.
//
// View is not safe for concurrent use.
type View struct {
	params     Params
	totalPages int
}

// NewView creates a view on page 1 with the given page size.
func NewView(size PageSize) *View {
	if size == 0 {
		size = DefaultPageSize
	}
	return &View{params: Params{PageSize: size, Page: 1}}
}

// ViewOf creates a view from existing parameters.
func ViewOf(p Params) *View {
	v := NewView(p.PageSize)
	v.params.Search = p.Search
	v.params.Sort = p.Sort
	if p.Page > 1 {
		v.params.Page = p.Page
	}
	return v
}

// Params returns a copy of the current parameters.
func (v *View) Params() Params {
	return v.params
}

// Clone returns an independent copy of v.
func (v *View) Clone() *View {
	c := *v
	return &c
}

// SetSearch replaces the search text and returns to page 1.
func (v *View) SetSearch(search string) {
	v.params.Search = search
	v.params.Page = 1
}

// SetPageSize replaces the page size and returns to page 1.
func (v *View) SetPageSize(size PageSize) {
	v.params.PageSize = size
	v.params.Page = 1
}

// SortBy applies a header click on f.
func (v *View) SortBy(f record.Field) {
	v.params.Sort = v.params.Sort.Toggle(f)
}

// Observe records the outcome of executing the view's parameters so page
// navigation can be bounded.
func (v *View) Observe(r Result) {
	v.totalPages = r.TotalPages
	v.params.Page = r.Page
}

// Next advances one page, stopping at the last observed page.
func (v *View) Next() {
	v.params.Page = ClampPage(v.params.Page+1, v.totalPages)
}

// Prev goes back one page, stopping at page 1.
func (v *View) Prev() {
	v.params.Page = max(1, v.params.Page-1)
}

// HasNext reports whether Next would move.
func (v *View) HasNext() bool {
	return v.params.Page < v.totalPages
}

// HasPrev reports whether Prev would move.
func (v *View) HasPrev() bool {
	return v.params.Page > 1
}
