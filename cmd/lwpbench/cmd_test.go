package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"

	"github.com/lwproc/lwproc"
	"github.com/lwproc/lwproc/gen"
	"github.com/lwproc/lwproc/node"
)

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, lwproc.FrameworkVersion.String()+"\n", out)
}

func TestSpawnCmd(t *testing.T) {
	out, err := execute(t, "spawn", "--log-level", "error", "--processes", "100", "--workers", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "spawn stateless 100 ops")
	require.Contains(t, lines[1], "spawn stateful  100 ops")
}

func TestSendCmd(t *testing.T) {
	out, err := execute(t, "send", "--log-level", "error", "--messages", "1000", "--kind", "stateful", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
	require.Contains(t, out, "send  stateful  1,000 ops")
	require.NotContains(t, out, "stateless")
}

func TestConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lwpbench.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
kind = "stateless"
workers = 2

[runtime]
pool-size = 4
`), 0o600))

	out, err := execute(t, "config", "--config", path, "--workers", "5")
	require.NoError(t, err)

	cfg := GetDefaultConfig()
	require.NoError(t, cfg.configFromString(out))
	require.Equal(t, "stateless", cfg.Kind)
	require.Equal(t, 5, cfg.Workers)
	require.Equal(t, 4, cfg.Runtime.PoolSize)
}

func TestCmdInvalidConfig(t *testing.T) {
	_, err := execute(t, "spawn", "--kind", "actor")
	require.True(t, errConfigInvalid.Equal(err), "unexpected error %v", err)
}

func TestShare(t *testing.T) {
	total := 0
	for i := 0; i < 3; i++ {
		total += share(10, 3, i)
	}
	require.Equal(t, 10, total)
	require.Equal(t, 4, share(10, 3, 0))
	require.Equal(t, 3, share(10, 3, 2))
}

func TestReport(t *testing.T) {
	mock := clock.NewMock()
	rt, err := node.Start(gen.RuntimeOptions{Name: "report"})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, rt.Stop())
	}()

	cfg := GetDefaultConfig()
	cfg.Processes = 10
	cfg.Workers = 2
	b := newBench(rt, mock, cfg)

	r, err := b.spawn(context.Background(), gen.KindStateless)
	require.NoError(t, err)
	require.Equal(t, 10, r.Count)
	// the mock clock doesn't move on its own
	require.Equal(t, time.Duration(0), r.Elapsed)
	require.Empty(t, rt.PidList())

	r.Elapsed = 25 * time.Millisecond
	r.Count = 2500
	r.Allocated = 2048
	require.Equal(t, "spawn stateless 2,500 ops in 25ms, 10µs/op, 2.0 KiB allocated", r.String())
}

func TestSendCanceled(t *testing.T) {
	rt, err := node.Start(gen.RuntimeOptions{Name: "canceled"})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, rt.Stop())
	}()

	cfg := GetDefaultConfig()
	cfg.Messages = 10
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newBench(rt, clock.New(), cfg).send(ctx, gen.KindStateless)
	require.Equal(t, context.Canceled, errors.Cause(err))
	require.Empty(t, rt.PidList())
}

func TestSendWaitsForHandlers(t *testing.T) {
	rt, err := node.Start(gen.RuntimeOptions{Name: "send-wait"})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, rt.Stop())
	}()

	cfg := GetDefaultConfig()
	cfg.Messages = 200000
	b := newBench(rt, clock.New(), cfg)
	// the senders finish long before the handlers drain the messages
	for _, kind := range []gen.ProcessKind{gen.KindStateful, gen.KindStateless} {
		r, err := b.send(context.Background(), kind)
		require.NoError(t, err, "kind %s", kind)
		require.Equal(t, 200000, r.Count)
		require.Equal(t, kind, r.Kind)
	}
	require.Empty(t, rt.PidList())
}
