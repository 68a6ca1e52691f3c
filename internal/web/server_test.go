package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/numberdesk/internal/desk"
	"github.com/roach88/numberdesk/internal/query"
	"github.com/roach88/numberdesk/internal/record"
	"github.com/roach88/numberdesk/internal/sheet"
	"github.com/roach88/numberdesk/internal/store"
	"github.com/roach88/numberdesk/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testRecords(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		category := "Gold"
		if i%2 == 1 {
			category = "Silver"
		}
		out[i] = record.Record{
			MSISDN:           fmt.Sprintf("97150%07d", i),
			Category:         category,
			CallCenterStatus: record.StatusOpen,
			Owner:            fmt.Sprintf("owner-%02d", i),
		}
	}
	return out
}

type fixture struct {
	fake   *testutil.FakeSheet
	desk   *desk.Desk
	server *Server
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	fake := testutil.NewFakeSheet(t, testRecords(25))
	d := desk.New(sheet.NewClient(fake.URL()), desk.WithIDGenerator(testutil.NewSequentialIDs("change")))
	require.NoError(t, d.Load(context.Background()))
	return &fixture{fake: fake, desk: d, server: New(d, opts...)}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRowsDefaults(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/rows", "")
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[query.Result](t, w)
	assert.Len(t, res.Rows, 10)
	assert.Equal(t, 25, res.Matched)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, query.DefaultPageSize, res.PageSize)
}

func TestRowsQuery(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/rows?search=silver&sort=owner&dir=desc&page_size=5&page=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[query.Result](t, w)
	assert.Equal(t, 12, res.Matched)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Rows, 5)
	// Silver rows are the odd indexes; descending by owner, page 2 starts
	// at the sixth highest.
	assert.Equal(t, 13, res.Rows[0].Index)
	assert.Equal(t, "owner-13", res.Rows[0].Record.Owner)
}

func TestRowsPageSizeAll(t *testing.T) {
	f := newFixture(t)

	res := decode[query.Result](t, f.do(t, http.MethodGet, "/api/rows?page_size=all", ""))
	assert.Len(t, res.Rows, 25)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, query.PageSizeAll, res.PageSize)
}

func TestRowsRejectsBadParams(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{
		"/api/rows?sort=colour",
		"/api/rows?sort=owner&dir=sideways",
		"/api/rows?page_size=0",
		"/api/rows?page=0",
		"/api/rows?page=two",
	} {
		t.Run(target, func(t *testing.T) {
			w := f.do(t, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, codeInvalidRequest, decode[errorBody](t, w).Error)
		})
	}
}

func TestStatusReservedNeedsConfirmation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/rows/4/status", `{"status":"Reserved"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, codeConfirmationRequired, decode[errorBody](t, w).Error)
	assert.Empty(t, f.fake.Updates())

	w = f.do(t, http.MethodPost, "/api/rows/4/status", `{"status":"Reserved","confirmed":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	change := decode[store.Change](t, w)
	assert.Equal(t, store.OutcomeApplied, change.Outcome)
	assert.Equal(t, 4, change.RowIndex)
	assert.Equal(t, []testutil.Update{{RowIndex: 4, NewStatus: record.StatusReserved}}, f.fake.Updates())
	assert.Equal(t, record.StatusReserved, f.desk.Records()[4].CallCenterStatus)
}

func TestStatusOpenNeedsNoConfirmation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/rows/0/status", `{"status":"Open"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.fake.Updates(), 1)
}

func TestStatusRejects(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		target string
		body   string
		code   int
		errStr string
	}{
		{"non-numeric index", "/api/rows/x/status", `{"status":"Open"}`, http.StatusBadRequest, codeInvalidRequest},
		{"missing status", "/api/rows/0/status", `{}`, http.StatusBadRequest, codeInvalidRequest},
		{"unknown status", "/api/rows/0/status", `{"status":"Sold"}`, http.StatusBadRequest, codeInvalidRequest},
		{"malformed body", "/api/rows/0/status", `{`, http.StatusBadRequest, codeInvalidRequest},
		{"out of range", "/api/rows/25/status", `{"status":"Open"}`, http.StatusNotFound, codeRowNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.errStr, decode[errorBody](t, w).Error)
		})
	}
	assert.Empty(t, f.fake.Updates())
}

func TestStatusUpdateFailure(t *testing.T) {
	f := newFixture(t)
	f.fake.FailUpdate(http.StatusInternalServerError)

	w := f.do(t, http.MethodPost, "/api/rows/2/status", `{"status":"Reserved","confirmed":true}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	body := decode[errorBody](t, w)
	assert.Equal(t, codeUpdateFailed, body.Error)
	assert.Equal(t, desk.MsgUpdateFailed, body.Message)
	assert.Equal(t, record.StatusOpen, f.desk.Records()[2].CallCenterStatus)

	notices := decode[noticesResponse](t, f.do(t, http.MethodGet, "/api/notices", ""))
	require.Len(t, notices.Active, 1)
	assert.Equal(t, desk.NoticeUpdateFailed, notices.Active[0].Kind)
	assert.Equal(t, desk.MsgUpdateFailed, notices.Active[0].Message)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	f.fake.SetRecords(testRecords(3))

	w := f.do(t, http.MethodPost, "/api/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[desk.Status](t, w).Rows)
	assert.Len(t, f.desk.Records(), 3)
}

func TestRefreshFailure(t *testing.T) {
	f := newFixture(t)
	f.fake.FailFetch(http.StatusServiceUnavailable)

	w := f.do(t, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, desk.MsgLoadFailed, decode[errorBody](t, w).Message)
	assert.Len(t, f.desk.Records(), 25)
}

func TestRefreshRateLimit(t *testing.T) {
	f := newFixture(t, WithRefreshLimit(1, 2))

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/refresh", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/refresh", "").Code)

	w := f.do(t, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, codeRateLimited, decode[errorBody](t, w).Error)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/health", "").Code)
}

func TestRefreshUnlimited(t *testing.T) {
	f := newFixture(t, WithRefreshLimit(0, 0))
	for range 10 {
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/refresh", "").Code)
	}
}

func TestNoticesEmpty(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/notices", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"active":[],"history":[]}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[healthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 25, resp.Desk.Rows)
	assert.False(t, resp.Desk.Stale)
}

func TestWithPageSize(t *testing.T) {
	f := newFixture(t, WithPageSize(20))

	res := decode[query.Result](t, f.do(t, http.MethodGet, "/api/rows", ""))
	assert.Len(t, res.Rows, 20)
	assert.Equal(t, 2, res.TotalPages)
}
