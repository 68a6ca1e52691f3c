package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Cell is a sheet cell decoded to its plain string form.
//
// Sheets serializes numeric columns (phone numbers in particular) as JSON
// numbers. A number is rendered in decimal without exponent or grouping, so
// 971501234567 and "971501234567" decode to the same Cell.
type Cell string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty cell")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cell(s)
	case 'n':
		*c = ""
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = Cell(strconv.FormatBool(b))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("unsupported cell %s", data)
		}
		*c = Cell(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}
