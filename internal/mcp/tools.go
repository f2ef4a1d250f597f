package mcp

import "github.com/mark3labs/mcp-go/mcp"

// generateBlueprintTool defines the generate_blueprint MCP tool.
var generateBlueprintTool = mcp.NewTool("generate_blueprint",
	mcp.WithDescription("Plan a multi-page website from a short brief. Returns the blueprint as JSON: pages, sections, navigation and global style."),
	mcp.WithString("goal",
		mcp.Required(),
		mcp.Description("What the website should achieve"),
	),
	mcp.WithString("audience",
		mcp.Required(),
		mcp.Description("Who the website is for"),
	),
	mcp.WithString("pages",
		mcp.Required(),
		mcp.Description("Comma-separated page slugs, e.g. home,features,pricing"),
	),
	mcp.WithString("type",
		mcp.Description("Kind of website (default Business)"),
		mcp.Enum("Business", "Portfolio", "E-commerce", "SaaS", "Personal Brand"),
	),
	mcp.WithString("colors",
		mcp.Description("Comma-separated brand colors as hex values"),
	),
	mcp.WithString("tone",
		mcp.Description("Brand tone (default Professional)"),
		mcp.Enum("Professional", "Friendly", "Minimalist", "Bold & Playful", "Elegant"),
	),
)

// generatePageCodeTool defines the generate_page_code MCP tool.
var generatePageCodeTool = mcp.NewTool("generate_page_code",
	mcp.WithDescription("Generate the React component source of one page of a blueprint."),
	mcp.WithString("blueprint",
		mcp.Required(),
		mcp.Description("Blueprint JSON as returned by generate_blueprint"),
	),
	mcp.WithString("slug",
		mcp.Required(),
		mcp.Description("Slug of the page to generate"),
	),
)

// regenerateSectionTool defines the regenerate_section MCP tool.
var regenerateSectionTool = mcp.NewTool("regenerate_section",
	mcp.WithDescription("Generate a standalone component for one section of a page."),
	mcp.WithString("blueprint",
		mcp.Required(),
		mcp.Description("Blueprint JSON as returned by generate_blueprint"),
	),
	mcp.WithString("slug",
		mcp.Required(),
		mcp.Description("Slug of the page containing the section"),
	),
	mcp.WithString("section_id",
		mcp.Required(),
		mcp.Description("ID of the section to regenerate"),
	),
)

// renderPreviewTool defines the render_preview MCP tool.
var renderPreviewTool = mcp.NewTool("render_preview",
	mcp.WithDescription("Wrap page source in the self-contained preview document used by the editor. Returns HTML."),
	mcp.WithString("code",
		mcp.Required(),
		mcp.Description("Page component source"),
	),
)
