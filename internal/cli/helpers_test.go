package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/numberdesk/internal/record"
	"github.com/roach88/numberdesk/internal/testutil"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleRecords() []record.Record {
	return []record.Record{
		{AssignDate: "2024-01-05", MSISDN: "971501234567", Category: "Gold", CallCenterStatus: record.StatusOpen, BackOfficeStatus: "Pending", Date: "2024-02-01", Owner: "Sara"},
		{AssignDate: "2024-01-06", MSISDN: "971559998888", Category: "Silver", CallCenterStatus: record.StatusReserved, BackOfficeStatus: "Done", Date: "2024-02-02", Owner: "Omar"},
		{AssignDate: "2024-01-07", MSISDN: "971521114567", Category: "Gold", CallCenterStatus: record.StatusOpen, Date: "2024-02-03", Owner: "Lina"},
	}
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the root command with deterministic ids and timestamps.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	return runCLIWith(t, &RootOptions{
		IDGenerator: testutil.NewSequentialIDs("change"),
		Now:         func() time.Time { return fixedTime },
	}, stdin, args...)
}

func runCLIWith(t *testing.T, opts *RootOptions, stdin string, args ...string) cliResult {
	t.Helper()
	cmd := newRootCommand(opts)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// jsonEqual compares two JSON documents ignoring formatting and key order.
func jsonEqual(actual, expected []byte) bool {
	var a, e any
	if err := json.Unmarshal(actual, &a); err != nil {
		return false
	}
	if err := json.Unmarshal(expected, &e); err != nil {
		return false
	}
	return reflect.DeepEqual(a, e)
}

// assertGoldenJSON compares JSON output against testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/cli -update
func assertGoldenJSON(t *testing.T, name string, actual string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
		goldie.WithEqualFn(jsonEqual),
	)
	g.Assert(t, name, []byte(actual))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "numberdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
