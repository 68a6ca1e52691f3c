package query

import (
	"strings"

	"github.com/roach88/numberdesk/internal/record"
)

// Row is a record paired with its index in the sequence it was filtered from.
type Row struct {
	Index  int           `json:"index"`
	Record record.Record `json:"record"`
}

// Rows wraps every record with its index, preserving order.
func Rows(records []record.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{Index: i, Record: r}
	}
	return rows
}

// Terms splits a search string into lower-cased terms.
// Returns nil when the search is blank.
func Terms(search string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(search)))
}

// Filter returns the records matching every term of search.
// A blank search returns every record in its original order.
func Filter(records []record.Record, search string) []Row {
	terms := Terms(search)
	if len(terms) == 0 {
		return Rows(records)
	}

	rows := make([]Row, 0, len(records))
	for i, r := range records {
		if matchAll(r, terms) {
			rows = append(rows, Row{Index: i, Record: r})
		}
	}
	return rows
}

func matchAll(r record.Record, terms []string) bool {
	for _, term := range terms {
		if !MatchTerm(r, term) {
			return false
		}
	}
	return true
}

// MatchTerm reports whether r satisfies a single lower-cased term.
func MatchTerm(r record.Record, term string) bool {
	if strings.Contains(term, ":") {
		return matchCategoryNumber(r, term)
	}

	msisdn := r.MSISDN
	if isDigits(term) && strings.HasSuffix(msisdn, term) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Category), term) {
		return true
	}
	if strings.Contains(msisdn, term) {
		return true
	}
	return matchAnyField(r, term)
}

// matchCategoryNumber handles "category:number". Both halves must be
// non-empty after trimming.
func matchCategoryNumber(r record.Record, term string) bool {
	category, number, _ := strings.Cut(term, ":")
	category = strings.TrimSpace(category)
	number = strings.TrimSpace(number)
	if category == "" || number == "" {
		return false
	}
	return strings.Contains(strings.ToLower(r.Category), category) &&
		strings.Contains(r.MSISDN, number)
}

func matchAnyField(r record.Record, term string) bool {
	for _, f := range record.Fields() {
		if strings.Contains(strings.ToLower(r.Value(f)), term) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
