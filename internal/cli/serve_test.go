package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/numberdesk/internal/testutil"
)

func TestServeStopsOnCancel(t *testing.T) {
	fake := testutil.NewFakeSheet(t, sampleRecords())
	cfgPath := writeConfig(t, "endpoint: "+fake.URL()+"\nrefresh_interval: 20ms\nlisten: 127.0.0.1:0\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--config", cfgPath})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// The refresh loop keeps polling.
	require.Eventually(t, func() bool { return fake.Fetches() >= 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	assert.Contains(t, buf.String(), "Serving on http://127.0.0.1:0")
}

func TestServeRequiresEndpoint(t *testing.T) {
	res := runCLI(t, "", "serve")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
}

func TestServeListenError(t *testing.T) {
	fake := testutil.NewFakeSheet(t, sampleRecords())

	res := runCLI(t, "", "serve", "--endpoint", fake.URL(), "--listen", "256.0.0.1:99999")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "server error")
}
