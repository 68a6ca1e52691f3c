package record

import (
	"fmt"
	"strings"
	"unicode"
)

// Field identifies one column of a Record.
type Field int

const (
	FieldNone Field = iota
	FieldAssignDate
	FieldMSISDN
	FieldCategory
	FieldCallCenterStatus
	FieldBackOfficeStatus
	FieldDate
	FieldOwner
)

var fieldNames = map[Field]string{
	FieldAssignDate:       "assignDate",
	FieldMSISDN:           "msisdn",
	FieldCategory:         "category",
	FieldCallCenterStatus: "statusByCallCenter",
	FieldBackOfficeStatus: "statusByBackOffice",
	FieldDate:             "date",
	FieldOwner:            "owner",
}

// Fields returns every column in sheet order.
func Fields() []Field {
	return []Field{
		FieldAssignDate,
		FieldMSISDN,
		FieldCategory,
		FieldCallCenterStatus,
		FieldBackOfficeStatus,
		FieldDate,
		FieldOwner,
	}
}

// String returns the JSON name of the field, or "" for FieldNone.
func (f Field) String() string {
	return fieldNames[f]
}

// ParseField resolves a JSON column name. The empty string and "none"
// resolve to FieldNone.
func ParseField(name string) (Field, error) {
	if name == "" || name == "none" {
		return FieldNone, nil
	}
	for _, f := range Fields() {
		if fieldNames[f] == name {
			return f, nil
		}
	}
	return FieldNone, fmt.Errorf("unknown field %q", name)
}

// Header returns the column title: the JSON name split before each
// upper-case letter ("statusByCallCenter" -> "status By Call Center").
func (f Field) Header() string {
	name := f.String()
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
