package web

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/roach88/numberdesk/internal/query"
	"github.com/roach88/numberdesk/internal/record"
)

// parseParams reads query parameters from URL values. Missing values fall
// back to page 1, no sort and defaultSize.
func parseParams(q url.Values, defaultSize query.PageSize) (query.Params, error) {
	p := query.Params{
		Search:   q.Get("search"),
		PageSize: defaultSize,
		Page:     1,
	}

	if s := q.Get("sort"); s != "" {
		f, err := record.ParseField(s)
		if err != nil {
			return query.Params{}, err
		}
		dir, err := query.ParseDirection(q.Get("dir"))
		if err != nil {
			return query.Params{}, err
		}
		if f != record.FieldNone {
			p.Sort = query.SortKey{Field: f, Direction: dir}
		}
	}

	if s := q.Get("page_size"); s != "" {
		size, err := query.ParsePageSize(s)
		if err != nil {
			return query.Params{}, err
		}
		p.PageSize = size
	}

	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return query.Params{}, fmt.Errorf("invalid page %q: must be a positive integer", s)
		}
		p.Page = n
	}

	return p, nil
}

// encodeParams is the inverse of parseParams. Page 1 and an unset sort are
// left out.
func encodeParams(p query.Params) url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Sort.IsSet() {
		v.Set("sort", p.Sort.Field.String())
		v.Set("dir", string(p.Sort.Direction))
	}
	if p.PageSize != 0 {
		v.Set("page_size", p.PageSize.String())
	}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

// link returns the page URL for p.
func link(p query.Params) string {
	q := encodeParams(p).Encode()
	if q == "" {
		return "/"
	}
	return "/?" + q
}
