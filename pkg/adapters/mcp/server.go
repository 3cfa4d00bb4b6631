package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/augtree"
	"github.com/aretw0/augtree/internal/compiler"
	"github.com/aretw0/augtree/pkg/host"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const specURI = "augtree://spec"

// Runner executes host invocations.
type Runner interface {
	RunRaw(ctx context.Context, raw map[string]any) host.Response
}

// Server wraps a Runner and exposes it as an MCP Server.
type Server struct {
	runner    Runner
	mcpServer *server.MCPServer
	mu        sync.Mutex
}

// NewServer creates a new MCP Server instance.
func NewServer(runner Runner) *Server {
	s := &Server{
		runner:    runner,
		mcpServer: server.NewMCPServer("augtree-mcp", strings.TrimSpace(augtree.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: run_commands
	runTool := mcp.NewTool("run_commands",
		mcp.WithDescription("Run one augtree command, or a block of newline-separated commands, against the configuration tree. Changes are saved only when every command succeeds."),
		mcp.WithString("commands", mcp.Description("Newline-separated command block. Mutually exclusive with command.")),
		mcp.WithString("command", mcp.Description("Single command to run."),
			mcp.Enum("set", "rm", "match", "lensmatch", "ins", "transform", "load")),
		mcp.WithString("path", mcp.Description("Tree path the single command operates on")),
		mcp.WithString("value", mcp.Description("Value for set")),
		mcp.WithString("label", mcp.Description("Label of the node created by ins")),
		mcp.WithString("where", mcp.Description("Placement for ins: before or after")),
		mcp.WithString("lens", mcp.Description("Lens name for lensmatch and transform")),
		mcp.WithString("file", mcp.Description("File for lensmatch and transform")),
		mcp.WithString("filter", mcp.Description("incl or excl for transform")),
		mcp.WithString("root", mcp.Description("Filesystem root override")),
	)
	s.mcpServer.AddTool(runTool, s.handleRun)

	// TOOL: check_commands
	checkTool := mcp.NewTool("check_commands",
		mcp.WithDescription("Parse a command block without running it and return it in canonical form."),
		mcp.WithString("commands", mcp.Required(), mcp.Description("Newline-separated command block")),
	)
	s.mcpServer.AddTool(checkTool, s.handleCheck)
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		args = map[string]any{}
	}

	s.mu.Lock()
	resp := s.runner.RunRaw(ctx, args)
	s.mu.Unlock()

	if resp.Failed {
		slog.Warn("MCP Run: commands failed", "msg", resp.Msg)
		return mcp.NewToolResultError(resp.Msg), nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	block, err := request.RequireString("commands")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	seq, err := compiler.Parse(block)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(compiler.Format(seq)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: augtree://spec
	s.mcpServer.AddResource(mcp.NewResource(specURI, "Accepted argument dictionary",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(host.Spec)
		if err != nil {
			return nil, fmt.Errorf("failed to encode spec: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      specURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
