package query

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PageSize is the number of rows per page. PageSizeAll shows every row on
// a single page.
type PageSize int

const (
	PageSizeAll     PageSize = -1
	DefaultPageSize PageSize = 10
)

// PageSizeChoices are the sizes offered by the page-size selector.
var PageSizeChoices = []PageSize{10, 20, 50, 100, PageSizeAll}

// ParsePageSize accepts "all", "-1", or a positive integer.
func ParsePageSize(s string) (PageSize, error) {
	if s == "all" || s == "-1" {
		return PageSizeAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid page size %q: must be a positive integer or \"all\"", s)
	}
	return PageSize(n), nil
}

// IsAll reports whether s is the show-everything sentinel (or any
// non-positive size, which is treated the same way).
func (s PageSize) IsAll() bool {
	return s <= 0
}

// String returns "all" or the decimal size.
func (s PageSize) String() string {
	if s.IsAll() {
		return "all"
	}
	return strconv.Itoa(int(s))
}

// MarshalJSON encodes PageSizeAll as "all" and other sizes as numbers.
func (s PageSize) MarshalJSON() ([]byte, error) {
	if s.IsAll() {
		return []byte(`"all"`), nil
	}
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalJSON accepts a number or a string understood by ParsePageSize.
func (s *PageSize) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		v, err := ParsePageSize(str)
		if err != nil {
			return err
		}
		*s = v
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid page size %s", data)
	}
	v, err := ParsePageSize(strconv.Itoa(n))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParsePageSize.
func (s *PageSize) UnmarshalText(text []byte) error {
	v, err := ParsePageSize(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// TotalPages returns ceil(n/size), or 1 for PageSizeAll. Zero rows give
// zero pages.
func TotalPages(n int, size PageSize) int {
	if size.IsAll() {
		return 1
	}
	return (n + int(size) - 1) / int(size)
}

// Paginate returns the rows on page (1-based) and the total page count.
// It does not clamp page; an out-of-range page yields an empty slice.
func Paginate(rows []Row, size PageSize, page int) ([]Row, int) {
	total := TotalPages(len(rows), size)
	if size.IsAll() {
		return rows, total
	}

	offset := (page - 1) * int(size)
	if page < 1 || offset >= len(rows) {
		return []Row{}, total
	}
	end := min(offset+int(size), len(rows))
	return rows[offset:end], total
}

// ClampPage clamps page to [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	return max(1, min(page, max(totalPages, 1)))
}
