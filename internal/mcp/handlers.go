package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/generator"
)

// handleGenerateBlueprint plans a site from the brief in the arguments.
func (s *Server) handleGenerateBlueprint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := request.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: goal"), nil
	}
	audience, err := request.RequireString("audience")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: audience"), nil
	}
	pages, err := request.RequireString("pages")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: pages"), nil
	}

	p := generator.Params{
		Goal:     goal,
		Audience: audience,
		Type:     request.GetString("type", "Business"),
		Pages:    splitList(pages),
		Colors:   splitList(request.GetString("colors", "")),
		Tone:     request.GetString("tone", "Professional"),
	}

	bp, err := s.gen.GenerateBlueprint(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("blueprint generation failed: %v", err)), nil
	}

	out, err := json.MarshalIndent(bp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding blueprint: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleGeneratePageCode generates the source of one page.
func (s *Server) handleGeneratePageCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bp, errResult := blueprintArg(request)
	if errResult != nil {
		return errResult, nil
	}
	slug, err := request.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slug"), nil
	}

	code, err := s.gen.GeneratePageCode(ctx, bp, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("page generation failed: %v", err)), nil
	}
	return mcp.NewToolResultText(code), nil
}

// handleRegenerateSection generates a standalone component for one section.
func (s *Server) handleRegenerateSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bp, errResult := blueprintArg(request)
	if errResult != nil {
		return errResult, nil
	}
	slug, err := request.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slug"), nil
	}
	sectionID, err := request.RequireString("section_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: section_id"), nil
	}

	fragment, err := s.gen.RegenerateSection(ctx, bp, slug, sectionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("section generation failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fragment), nil
}

// handleRenderPreview returns the sandbox document for the given source.
func (s *Server) handleRenderPreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: code"), nil
	}

	doc, err := s.sandbox.Render(code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering preview: %v", err)), nil
	}
	return mcp.NewToolResultText(string(doc.HTML)), nil
}

// blueprintArg parses and validates the blueprint argument.
func blueprintArg(request mcp.CallToolRequest) (*blueprint.Blueprint, *mcp.CallToolResult) {
	raw, err := request.RequireString("blueprint")
	if err != nil {
		return nil, mcp.NewToolResultError("missing required parameter: blueprint")
	}
	bp, err := blueprint.Parse(raw)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid blueprint: %v", err))
	}
	return bp, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
