package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/augtree/internal/config"
	"github.com/aretw0/augtree/internal/testutils"
	"github.com/aretw0/augtree/pkg/adapters/memory"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostsRoot(t *testing.T) string {
	t.Helper()
	return testutils.WriteTree(t, map[string]string{"etc/hosts": "127.0.0.1\tlocalhost\n"})
}

func newStack(t *testing.T, cfg *config.Config) *Stack {
	t.Helper()
	stack, err := NewStack(cfg, NewLogger(false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })
	return stack
}

func TestNewStack_ConfiguredTransforms(t *testing.T) {
	cfg := config.Default()
	cfg.Root = hostsRoot(t)
	cfg.Transforms = []config.TransformConfig{{Lens: "Hosts", Incl: []string{"/etc/hosts"}}}
	stack := newStack(t, cfg)

	var out bytes.Buffer
	err := Run(context.Background(), stack.Engine, RunOptions{
		Args:   []string{"match /files/etc/hosts/1/canonical"},
		JSON:   true,
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"changed": false, "result": [
		["match /files/etc/hosts/1/canonical", [{"label": "/files/etc/hosts/1/canonical", "value": "localhost"}]]
	]}`, out.String())
}

func TestNewStack_FileBackendKeepsFreeNodes(t *testing.T) {
	cfg := config.Default()
	cfg.Root = t.TempDir()
	cfg.Backend = config.BackendFile
	cfg.SnapshotDir = t.TempDir()
	stack := newStack(t, cfg)
	ctx := context.Background()

	_, err := stack.Engine.Run(ctx, "set /files/app/mode production")
	require.NoError(t, err)

	// A fresh stack reads the same snapshot directory.
	report, err := newStack(t, cfg).Engine.Run(ctx, "match /files/app/mode")
	require.NoError(t, err)
	require.Len(t, report.Entries[0].Result.Matches, 1)
	assert.Equal(t, "production", *report.Entries[0].Result.Matches[0].Value)

	_, err = os.Stat(filepath.Join(cfg.SnapshotDir, "default.yaml"))
	assert.NoError(t, err)
}

func TestNewStack_RedisBackendWithLock(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Root = t.TempDir()
	cfg.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.LockTTL = config.Duration{Duration: 5 * time.Second}
	stack := newStack(t, cfg)
	ctx := context.Background()

	report, err := stack.Engine.Run(ctx, "set /files/app/mode production")
	require.NoError(t, err)
	assert.True(t, report.Changed)

	assert.True(t, mr.Exists("augtree:snapshot:default"))
	assert.False(t, mr.Exists("augtree:lock:augtree"), "run lock is released after the run")
}

func TestReadBlock(t *testing.T) {
	block, err := ReadBlock(RunOptions{Args: []string{"set /files/a 1", "load"}})
	require.NoError(t, err)
	assert.Equal(t, "set /files/a 1\nload", block)

	block, err = ReadBlock(RunOptions{File: "-", Stdin: strings.NewReader("load\n")})
	require.NoError(t, err)
	assert.Equal(t, "load\n", block)

	path := filepath.Join(t.TempDir(), "block.aug")
	require.NoError(t, os.WriteFile(path, []byte("rm /files/a"), 0644))
	block, err = ReadBlock(RunOptions{File: path})
	require.NoError(t, err)
	assert.Equal(t, "rm /files/a", block)

	_, err = ReadBlock(RunOptions{})
	assert.Error(t, err)

	_, err = ReadBlock(RunOptions{Args: []string{"load"}, File: path})
	assert.Error(t, err)
}

func TestRun_FailureIsReported(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	stack := newStack(t, config.Default())

	var out bytes.Buffer
	err := Run(context.Background(), stack.Engine, RunOptions{
		Args:   []string{"ins x before /files/missing"},
		Root:   t.TempDir(),
		Stdout: &out,
	})
	assert.ErrorIs(t, err, ErrFailed)
	assert.True(t, strings.HasPrefix(out.String(), "error: "), out.String())
}

func TestModule(t *testing.T) {
	cfg := config.Default()
	cfg.Root = t.TempDir()
	stack := newStack(t, cfg)
	ctx := context.Background()

	var out bytes.Buffer
	err := Module(ctx, stack.Engine.Host(), strings.NewReader(`{"command": "set", "path": "/files/a", "value": "1"}`), &out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"changed": true, "result": true}`, out.String())

	out.Reset()
	err = Module(ctx, stack.Engine.Host(), strings.NewReader(`{"command": "set"`), &out)
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, out.String(), `"failed":true`)
	assert.Contains(t, out.String(), "failed to decode module arguments")
}

func TestCheck(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Check("set /files/a \"x y\"\nload", &out))
	assert.Equal(t, "set /files/a 'x y'\nload\n>>> 2 command(s) ok.\n", out.String())

	out.Reset()
	assert.ErrorIs(t, Check("frobnicate", &out), ErrFailed)
	assert.Contains(t, out.String(), "frobnicate")
}

func TestListPlaybooks(t *testing.T) {
	source := memory.NewPlaybooks(map[string]string{
		"b": "load",
		"a": "load",
	})

	var out bytes.Buffer
	require.NoError(t, ListPlaybooks(context.Background(), source, &out))
	assert.Equal(t, "a\nb\n", out.String())
}

func TestWriteDocs_PlainWhenNotATerminal(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteDocs(&out, "# augtree\n"))
	assert.Equal(t, "# augtree\n", out.String())
}

func TestNewStack_EncryptedSnapshots(t *testing.T) {
	cfg := config.Default()
	cfg.Root = t.TempDir()
	cfg.Backend = config.BackendFile
	cfg.SnapshotDir = t.TempDir()
	cfg.EncryptionKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=" // 32 bytes
	ctx := context.Background()

	_, err := newStack(t, cfg).Engine.Run(ctx, "set /files/app/password hunter2")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.SnapshotDir, "default.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "__encrypted__")
	assert.NotContains(t, string(data), "hunter2")

	report, err := newStack(t, cfg).Engine.Run(ctx, "match /files/app/password")
	require.NoError(t, err)
	require.Len(t, report.Entries[0].Result.Matches, 1)
	assert.Equal(t, "hunter2", *report.Entries[0].Result.Matches[0].Value)
}

func TestNewStack_RejectsBadEncryptionKey(t *testing.T) {
	cfg := config.Default()
	cfg.EncryptionKey = "c2hvcnQ="
	_, err := NewStack(cfg, NewLogger(false))
	assert.Error(t, err)
}
