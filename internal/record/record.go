package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the call-center status, the only field a user may change.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusReserved Status = "Reserved"
)

// ValidStatuses lists the accepted statuses in display order.
var ValidStatuses = []Status{StatusOpen, StatusReserved}

// ParseStatus converts s to a Status. Matching is exact, as the sheet stores
// the values verbatim.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusReserved:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid status %q: must be one of %v", s, ValidStatuses)
	}
}

// Valid reports whether s is one of ValidStatuses.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// MSISDNPrefix is the international prefix replaced by a leading zero for display.
const MSISDNPrefix = "971"

// Record is one row of the backing sheet.
type Record struct {
	AssignDate       string `json:"assignDate"`
	MSISDN           string `json:"msisdn"`
	Category         string `json:"category"`
	CallCenterStatus Status `json:"statusByCallCenter"`
	BackOfficeStatus string `json:"statusByBackOffice"`
	Date             string `json:"date"`
	Owner            string `json:"owner"`
}

// wireRecord accepts cells that the sheet may serialize as strings or numbers.
type wireRecord struct {
	AssignDate       Cell `json:"assignDate"`
	MSISDN           Cell `json:"msisdn"`
	Category         Cell `json:"category"`
	CallCenterStatus Cell `json:"statusByCallCenter"`
	BackOfficeStatus Cell `json:"statusByBackOffice"`
	Date             Cell `json:"date"`
	Owner            Cell `json:"owner"`
}

// UnmarshalJSON implements json.Unmarshaler.
// Fails if statusByCallCenter is not a valid Status.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	status, err := ParseStatus(string(w.CallCenterStatus))
	if err != nil {
		return fmt.Errorf("statusByCallCenter: %w", err)
	}

	*r = Record{
		AssignDate:       string(w.AssignDate),
		MSISDN:           string(w.MSISDN),
		Category:         string(w.Category),
		CallCenterStatus: status,
		BackOfficeStatus: string(w.BackOfficeStatus),
		Date:             string(w.Date),
		Owner:            string(w.Owner),
	}
	return nil
}

// Value returns the plain string form of field f.
// The subscriber number is returned as stored, not display-normalized.
func (r Record) Value(f Field) string {
	switch f {
	case FieldAssignDate:
		return r.AssignDate
	case FieldMSISDN:
		return r.MSISDN
	case FieldCategory:
		return r.Category
	case FieldCallCenterStatus:
		return string(r.CallCenterStatus)
	case FieldBackOfficeStatus:
		return r.BackOfficeStatus
	case FieldDate:
		return r.Date
	case FieldOwner:
		return r.Owner
	default:
		return ""
	}
}

// DisplayValue returns the value of f as it is shown to a user.
func (r Record) DisplayValue(f Field) string {
	if f == FieldMSISDN {
		return DisplayMSISDN(r.MSISDN)
	}
	return r.Value(f)
}

// WithStatus returns a copy of r with CallCenterStatus set to s.
func (r Record) WithStatus(s Status) Record {
	r.CallCenterStatus = s
	return r
}

// DisplayMSISDN replaces a leading MSISDNPrefix with "0".
//
//	DisplayMSISDN("971501234567") // "0501234567"
//	DisplayMSISDN("0501234567")   // "0501234567"
func DisplayMSISDN(msisdn string) string {
	if rest, ok := strings.CutPrefix(msisdn, MSISDNPrefix); ok {
		return "0" + rest
	}
	return msisdn
}
