package query

import (
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/numberdesk/internal/record"
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc", "desc" or "" (treated as asc).
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
	}
}

// SortKey selects the column and direction to sort by.
// The zero value means unsorted.
type SortKey struct {
	Field     record.Field `json:"field"`
	Direction Direction    `json:"direction"`
}

// IsSet reports whether k names a column.
func (k SortKey) IsSet() bool {
	return k.Field != record.FieldNone
}

// Toggle returns the key after a header click on f: the same column flips
// direction, a different column starts ascending.
func (k SortKey) Toggle(f record.Field) SortKey {
	if k.Field == f {
		if k.Direction == Desc {
			return SortKey{Field: f, Direction: Asc}
		}
		return SortKey{Field: f, Direction: Desc}
	}
	return SortKey{Field: f, Direction: Asc}
}

// Sort orders rows by the plain string value of key.Field using the
// collation rules of tag. Ties keep their input order in both directions.
// The input slice is never reordered; an unset key returns it as is.
func Sort(rows []Row, key SortKey, tag language.Tag) []Row {
	if !key.IsSet() {
		return rows
	}

	// Collators keep scratch buffers and are not safe for concurrent use.
	coll := collate.New(tag)

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		av := a.Record.Value(key.Field)
		bv := b.Record.Value(key.Field)
		if key.Direction == Desc {
			return coll.CompareString(bv, av)
		}
		return coll.CompareString(av, bv)
	})
	return sorted
}
