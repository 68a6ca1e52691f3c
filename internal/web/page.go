package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/numberdesk/internal/desk"
	"github.com/roach88/numberdesk/internal/query"
	"github.com/roach88/numberdesk/internal/record"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type column struct {
	Header string
	Link   string
	Active bool
	Desc   bool
}

type cell struct {
	Value  string
	Status bool
}

type pageRow struct {
	Index  int
	Status record.Status
	Cells  []cell
}

type pageSizeOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Params    query.Params
	Result    query.Result
	Columns   []column
	Rows      []pageRow
	PageSizes []pageSizeOption
	Statuses  []record.Status
	Notices   []desk.Notice
	Status    desk.Status

	// ReloadMillis is the page's self-reload period; zero disables it.
	ReloadMillis int64

	ShowPager        bool
	From, To, Of     int
	PrevLink         string
	NextLink         string
	HasPrev, HasNext bool
}

func (s *Server) handlePage(c *gin.Context) {
	p, err := parseParams(c.Request.URL.Query(), s.pageSize)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	result := s.desk.Query(p)
	data := buildPage(p, result)
	data.Notices = s.desk.Notices().Active()
	data.Status = s.desk.Status()
	if s.reload > 0 {
		data.ReloadMillis = s.reload.Milliseconds()
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(c.Writer, data); err != nil {
		_ = c.Error(err)
	}
}

// buildPage lays out a computed result for the template. Links are derived
// through query.View so header clicks and pager buttons follow the same
// rules as every other client.
func buildPage(p query.Params, result query.Result) pageData {
	view := query.ViewOf(p)
	view.Observe(result)
	current := view.Params()

	data := pageData{
		Params:    current,
		Result:    result,
		Statuses:  record.ValidStatuses,
		ShowPager: !result.PageSize.IsAll(),
		HasPrev:   view.HasPrev(),
		HasNext:   view.HasNext(),
	}
	data.From, data.To, data.Of = result.Range()

	for _, f := range record.Fields() {
		v := view.Clone()
		v.SortBy(f)
		data.Columns = append(data.Columns, column{
			Header: f.Header(),
			Link:   link(v.Params()),
			Active: current.Sort.Field == f,
			Desc:   current.Sort.Field == f && current.Sort.Direction == query.Desc,
		})
	}

	for _, row := range result.Rows {
		pr := pageRow{Index: row.Index, Status: row.Record.CallCenterStatus}
		for _, f := range record.Fields() {
			pr.Cells = append(pr.Cells, cell{
				Value:  row.Record.DisplayValue(f),
				Status: f == record.FieldCallCenterStatus,
			})
		}
		data.Rows = append(data.Rows, pr)
	}

	for _, size := range query.PageSizeChoices {
		label := size.String()
		if size.IsAll() {
			label = "All"
		}
		data.PageSizes = append(data.PageSizes, pageSizeOption{
			Value:    size.String(),
			Label:    label,
			Selected: size == result.PageSize || (size.IsAll() && result.PageSize.IsAll()),
		})
	}

	prev := view.Clone()
	prev.Prev()
	data.PrevLink = link(prev.Params())
	next := view.Clone()
	next.Next()
	data.NextLink = link(next.Params())

	return data
}
