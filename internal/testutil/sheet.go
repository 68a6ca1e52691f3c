// Package testutil provides deterministic test doubles shared across
// numberdesk packages.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/roach88/numberdesk/internal/record"
)

// Update is a POST received by FakeSheet.
type Update struct {
	RowIndex  int           `json:"rowIndex"`
	NewStatus record.Status `json:"newStatus"`
}

// FakeSheet is an in-memory record store served over HTTP.
//
// GET returns the current records; POST applies a status change by row
// index. Failures can be injected per method, and OnFetch lets a test hold
// a response open to exercise ordering.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeSheet struct {
	mu          sync.Mutex
	records     []record.Record
	fetches     int
	updates     []Update
	fetchStatus int
	updateStat  int
	onFetch     func(n int)
	server      *httptest.Server
}

// NewFakeSheet starts a fake store holding records. The server is closed
// when the test finishes.
func NewFakeSheet(t testing.TB, records []record.Record) *FakeSheet {
	t.Helper()

	f := &FakeSheet{records: slices.Clone(records)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the endpoint.
func (f *FakeSheet) URL() string {
	return f.server.URL
}

// Records returns a copy of the stored records.
func (f *FakeSheet) Records() []record.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.records)
}

// SetRecords replaces the stored records.
func (f *FakeSheet) SetRecords(records []record.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = slices.Clone(records)
}

// Fetches returns how many GET requests were received.
func (f *FakeSheet) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// Updates returns every POST received, including failed ones.
func (f *FakeSheet) Updates() []Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.updates)
}

// FailFetch makes GET respond with status. Zero restores success.
func (f *FakeSheet) FailFetch(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchStatus = status
}

// FailUpdate makes POST respond with status without applying the change.
// Zero restores success.
func (f *FakeSheet) FailUpdate(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateStat = status
}

// OnFetch registers a hook called with the 1-based fetch number after the
// response body has been captured and before it is written.
func (f *FakeSheet) OnFetch(hook func(n int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFetch = hook
}

func (f *FakeSheet) serveHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f.serveFetch(w)
	case http.MethodPost:
		f.serveUpdate(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *FakeSheet) serveFetch(w http.ResponseWriter) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	status := f.fetchStatus
	hook := f.onFetch
	body, err := json.Marshal(f.records)
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if status != 0 {
		http.Error(w, "injected failure", status)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (f *FakeSheet) serveUpdate(w http.ResponseWriter, r *http.Request) {
	var u Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.updates = append(f.updates, u)
	status := f.updateStat
	if status == 0 {
		if u.RowIndex < 0 || u.RowIndex >= len(f.records) {
			status = http.StatusBadRequest
		} else {
			f.records[u.RowIndex].CallCenterStatus = u.NewStatus
		}
	}
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, "update rejected", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"success"}`))
}
