package query

import (
	"golang.org/x/text/language"

	"github.com/roach88/numberdesk/internal/record"
)

// Params are the interactive query parameters.
type Params struct {
	Search   string   `json:"search"`
	Sort     SortKey  `json:"sort"`
	PageSize PageSize `json:"page_size"`
	Page     int      `json:"page"`
}

// Result is one computed page plus pagination metadata.
type Result struct {
	Rows       []Row    `json:"rows"`
	Matched    int      `json:"matched"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	PageSize   PageSize `json:"page_size"`
}

// Range returns the 1-based positions of the first and last rows on the
// page among the Matched rows ("Showing from to to of of"). from is 0 when
// nothing matched.
func (r Result) Range() (from, to, of int) {
	if r.Matched == 0 {
		return 0, 0, 0
	}
	if r.PageSize.IsAll() {
		return 1, r.Matched, r.Matched
	}
	from = (r.Page-1)*int(r.PageSize) + 1
	to = min(r.Page*int(r.PageSize), r.Matched)
	return from, to, r.Matched
}

// Engine runs queries with a fixed collation language.
// Engine is stateless and safe for concurrent use.
type Engine struct {
	tag language.Tag
}

// NewEngine creates an Engine that sorts with the collation rules of tag.
func NewEngine(tag language.Tag) *Engine {
	return &Engine{tag: tag}
}

// Language returns the collation language.
func (e *Engine) Language() language.Tag {
	return e.tag
}

// Execute filters, sorts and paginates records. The requested page is
// clamped to the available range; Result.Page reports the page served.
func (e *Engine) Execute(records []record.Record, p Params) Result {
	filtered := Filter(records, p.Search)
	sorted := Sort(filtered, p.Sort, e.tag)

	size := p.PageSize
	if size == 0 {
		size = DefaultPageSize
	}
	page := ClampPage(p.Page, TotalPages(len(sorted), size))
	rows, totalPages := Paginate(sorted, size, page)

	return Result{
		Rows:       rows,
		Matched:    len(filtered),
		Total:      len(records),
		Page:       page,
		TotalPages: totalPages,
		PageSize:   size,
	}
}
