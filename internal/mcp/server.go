package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/sandbox"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Generator produces blueprints and page code.
type Generator interface {
	GenerateBlueprint(ctx context.Context, p generator.Params) (*blueprint.Blueprint, error)
	GeneratePageCode(ctx context.Context, bp *blueprint.Blueprint, slug string) (string, error)
	RegenerateSection(ctx context.Context, bp *blueprint.Blueprint, slug, sectionID string) (string, error)
}

// Server wraps an MCP server that exposes site generation tools. It keeps no
// state between calls: blueprints travel as tool arguments.
type Server struct {
	gen     Generator
	sandbox *sandbox.Renderer
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(gen Generator, renderer *sandbox.Renderer) *Server {
	s := &Server{
		gen:     gen,
		sandbox: renderer,
	}

	s.mcp = server.NewMCPServer(
		"instasite",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(generateBlueprintTool, s.handleGenerateBlueprint)
	s.mcp.AddTool(generatePageCodeTool, s.handleGeneratePageCode)
	s.mcp.AddTool(regenerateSectionTool, s.handleRegenerateSection)
	s.mcp.AddTool(renderPreviewTool, s.handleRenderPreview)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
