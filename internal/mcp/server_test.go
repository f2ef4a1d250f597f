package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/llm/llmtest"
	"github.com/ziadkadry99/instasite/internal/sandbox"
)

const testBlueprint = `{
  "website_goal": "Book yoga classes",
  "audience": "Busy professionals",
  "pages": [
    {"slug": "home", "title": "Home", "goal": "Welcome visitors",
     "sections": [{"id": "hero", "type": "hero", "purpose": "Headline and CTA"}]}
  ],
  "navigation": ["home"],
  "global_style": {"primary_color": "#4F46E5", "secondary_color": "#0F172A",
                   "accent_color": "#22C55E", "font_family": "Inter", "tone": "Friendly"}
}`

func newTestServer(t *testing.T, replies ...llmtest.Reply) (*Server, *llmtest.Provider) {
	t.Helper()
	fake := llmtest.New(replies...)
	renderer, err := sandbox.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return NewServer(generator.New(fake, generator.Options{}), renderer), fake
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"generate_blueprint", generateBlueprintTool, "generate_blueprint"},
		{"generate_page_code", generatePageCodeTool, "generate_page_code"},
		{"regenerate_section", regenerateSectionTool, "regenerate_section"},
		{"render_preview", renderPreviewTool, "render_preview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(t)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.sandbox == nil {
		t.Error("sandbox renderer not set")
	}
}

func TestHandleGenerateBlueprint(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv, fake := newTestServer(t, llmtest.Text(testBlueprint))
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"goal":     "Book yoga classes",
			"audience": "Busy professionals",
			"pages":    "home, ,",
			"colors":   "#4F46E5,#0F172A",
		}

		result, err := srv.handleGenerateBlueprint(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(resultText(t, result), `"website_goal": "Book yoga classes"`) {
			t.Errorf("result = %s", resultText(t, result))
		}

		prompt := fake.Calls()[0].Messages[len(fake.Calls()[0].Messages)-1].Content
		for _, want := range []string{"Business", "Professional", "#0F172A"} {
			if !strings.Contains(prompt, want) {
				t.Errorf("prompt missing default or argument %q", want)
			}
		}
	})

	t.Run("missing goal", func(t *testing.T) {
		srv, fake := newTestServer(t)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"audience": "a", "pages": "home"}

		result, err := srv.handleGenerateBlueprint(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing goal")
		}
		if fake.CallCount() != 0 {
			t.Error("no model call expected")
		}
	})

	t.Run("model failure", func(t *testing.T) {
		srv, _ := newTestServer(t, llmtest.Fail(errors.New("rate limited")))
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"goal": "g", "audience": "a", "pages": "home"}

		result, _ := srv.handleGenerateBlueprint(ctx, req)
		if !result.IsError || !strings.Contains(resultText(t, result), "rate limited") {
			t.Errorf("expected failure result, got %v", result.Content)
		}
	})
}

func TestHandleGeneratePageCode(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestServer(t, llmtest.Text("```jsx\nexport default function App() { return null }\n```"))

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"blueprint": testBlueprint, "slug": "home"}
	result, err := srv.handleGeneratePageCode(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if got := resultText(t, result); got != "export default function App() { return null }" {
		t.Errorf("code = %q", got)
	}

	t.Run("invalid blueprint", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"blueprint": `{"pages": []}`, "slug": "home"}
		result, _ := srv.handleGeneratePageCode(ctx, req)
		if !result.IsError {
			t.Error("expected error for invalid blueprint")
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"blueprint": testBlueprint, "slug": "blog"}
		result, _ := srv.handleGeneratePageCode(ctx, req)
		if !result.IsError {
			t.Error("expected error for unknown slug")
		}
	})
}

func TestHandleRegenerateSection(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestServer(t, llmtest.Text("function Hero() { return <section /> }"))

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"blueprint": testBlueprint, "slug": "home", "section_id": "hero"}
	result, err := srv.handleRegenerateSection(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError || !strings.Contains(resultText(t, result), "function Hero") {
		t.Errorf("unexpected result: %v", result.Content)
	}

	req.Params.Arguments = map[string]any{"blueprint": testBlueprint, "slug": "home"}
	result, _ = srv.handleRegenerateSection(ctx, req)
	if !result.IsError {
		t.Error("expected error for missing section_id")
	}
}

func TestHandleRenderPreview(t *testing.T) {
	srv, _ := newTestServer(t)
	code := "const App = () => <h1>Hi</h1>;"

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"code": code}
	result, err := srv.handleRenderPreview(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := resultText(t, result)
	if !strings.Contains(html, code) || !strings.Contains(html, `<div id="root"></div>`) {
		t.Error("preview document missing source or root node")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" home, pricing,,contact ")
	want := []string{"home", "pricing", "contact"}
	if len(got) != len(want) {
		t.Fatalf("splitList = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if splitList("") != nil {
		t.Error("empty input should yield nil")
	}
}
