package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/augtree/pkg/adapters/memory"
	"github.com/aretw0/augtree/pkg/host"
	"github.com/aretw0/augtree/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	snapshots := memory.NewSnapshotStore()
	root := t.TempDir()
	return NewServer(host.New(func(ctx context.Context, opts ports.OpenOptions) (ports.TreeStore, error) {
		return memory.Open(memory.WithRoot(root), memory.WithSnapshotBackend(snapshots))
	}, nil))
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return content.Text
}

func TestHandleRun(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleRun(ctx, call("run_commands", map[string]any{
		"command": "set",
		"path":    "/files/etc/motd/text",
		"value":   "hi",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"changed": true, "result": true}`, text(t, res))

	res, err = s.handleRun(ctx, call("run_commands", map[string]any{
		"commands": "match /files/etc/motd/text",
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"changed": false, "result": [
		["match /files/etc/motd/text", [{"label": "/files/etc/motd/text", "value": "hi"}]]
	]}`, text(t, res))
}

func TestHandleRun_FailureIsToolError(t *testing.T) {
	s := newServer(t)

	res, err := s.handleRun(context.Background(), call("run_commands", map[string]any{
		"commands": "frobnicate",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "frobnicate")
}

func TestHandleRun_NoArguments(t *testing.T) {
	s := newServer(t)

	res, err := s.handleRun(context.Background(), call("run_commands", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "one of the following is required: command, commands")
}

func TestHandleCheck(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleCheck(ctx, call("check_commands", map[string]any{
		"commands": "set   /files/a  \"x y\"\n\nload",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "set /files/a 'x y'\nload", text(t, res))

	res, err = s.handleCheck(ctx, call("check_commands", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
