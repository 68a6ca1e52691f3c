package desk

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/roach88/numberdesk/internal/record"
	"github.com/roach88/numberdesk/internal/sheet"
	"github.com/roach88/numberdesk/internal/testutil"
)

type update struct {
	index  int
	status record.Status
}

// fakeStore is an in-memory sheet.Store. It starts no goroutines, which
// keeps leak checks meaningful.
type fakeStore struct {
	mu          sync.Mutex
	records     []record.Record
	fetches     int
	updates     []update
	fetchErr    error
	updateErr   error
	beforeFetch func(n int)
}

func newFakeStore(records []record.Record) *fakeStore {
	return &fakeStore{records: slices.Clone(records)}
}

func (f *fakeStore) Fetch(ctx context.Context) ([]record.Record, error) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	out := slices.Clone(f.records)
	err := f.fetchErr
	hook := f.beforeFetch
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, index int, status record.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, update{index: index, status: status})
	if f.updateErr != nil {
		return f.updateErr
	}
	f.records[index].CallCenterStatus = status
	return nil
}

func (f *fakeStore) setRecords(records []record.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = slices.Clone(records)
}

func (f *fakeStore) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeStore) setUpdateErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErr = err
}

func (f *fakeStore) onFetch(hook func(n int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeFetch = hook
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeStore) updateCalls() []update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.updates)
}

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seedRecords() []record.Record {
	return []record.Record{
		{MSISDN: "971501234567", Category: "Gold", CallCenterStatus: record.StatusOpen, Owner: "Sara"},
		{MSISDN: "971559998888", Category: "Silver", CallCenterStatus: record.StatusReserved, Owner: "Omar"},
		{MSISDN: "0521114567", Category: "Gold", CallCenterStatus: record.StatusOpen, Owner: "Lina"},
	}
}

func newTestDesk(t *testing.T, src sheet.Store, opts ...Option) *Desk {
	t.Helper()
	base := []Option{
		WithIDGenerator(testutil.NewSequentialIDs("change")),
		WithNow(func() time.Time { return fixedTime }),
	}
	return New(src, append(base, opts...)...)
}
