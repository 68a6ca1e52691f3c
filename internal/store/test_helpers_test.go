package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/numberdesk/internal/record"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecords() []record.Record {
	return []record.Record{
		{AssignDate: "2024-01-02", MSISDN: "971501234567", Category: "Gold", CallCenterStatus: record.StatusOpen, BackOfficeStatus: "Pending", Date: "2024-01-03", Owner: "Sara"},
		{MSISDN: "971559998888", Category: "Silver", CallCenterStatus: record.StatusReserved, Owner: "Omar"},
	}
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
