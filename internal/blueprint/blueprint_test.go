package blueprint

import (
	"strings"
	"testing"
)

const sampleJSON = `{
  "website_goal": "Sell handmade pottery",
  "audience": "Home decor enthusiasts",
  "pages": [
    {"slug": "home", "title": "Home", "goal": "Introduce the studio",
     "sections": [{"id": "hero", "type": "hero", "purpose": "First impression"},
                  {"id": "footer", "type": "footer", "purpose": "Links"}]},
    {"slug": "pricing", "title": "Pricing", "goal": "Show prices",
     "sections": [{"id": "plans", "type": "pricing", "purpose": "Compare plans"}]}
  ],
  "navigation": ["home", "pricing"],
  "global_style": {"primary_color": "#4F46E5", "secondary_color": "#0F172A",
                   "accent_color": "#22C55E", "font_family": "Inter", "tone": "Professional"}
}`

func sample(t *testing.T) *Blueprint {
	t.Helper()
	bp, err := Parse(sampleJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return bp
}

func TestParseValid(t *testing.T) {
	bp := sample(t)

	if bp.WebsiteGoal != "Sell handmade pottery" {
		t.Errorf("website goal = %q", bp.WebsiteGoal)
	}
	if len(bp.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(bp.Pages))
	}
	home, ok := bp.Home()
	if !ok || home.Slug != "home" {
		t.Errorf("home page = %+v", home)
	}
	if bp.GlobalStyle.Tone != "Professional" {
		t.Errorf("tone = %q", bp.GlobalStyle.Tone)
	}
	for _, p := range bp.Pages {
		if p.Generated() {
			t.Errorf("page %q should start ungenerated", p.Slug)
		}
	}
}

func TestParseStripsJSONFence(t *testing.T) {
	bp, err := Parse("```json\n" + sampleJSON + "\n```")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(bp.Pages) != 2 {
		t.Errorf("expected 2 pages, got %d", len(bp.Pages))
	}
}

func TestParseDropsCodeFromResponse(t *testing.T) {
	raw := strings.Replace(sampleJSON, `"goal": "Show prices",`, `"goal": "Show prices", "code": "function App(){}",`, 1)
	bp, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, _ := bp.PageBySlug("pricing")
	if p.Generated() {
		t.Error("code supplied by the blueprint response must be ignored")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "Sure! Here is your blueprint."},
		{"missing navigation", `{"website_goal":"g","audience":"a","pages":[{"slug":"home","title":"t","goal":"g","sections":[]}],"global_style":{}}`},
		{"null pages", `{"website_goal":"g","audience":"a","pages":null,"navigation":[],"global_style":{}}`},
		{"no pages", `{"website_goal":"g","audience":"a","pages":[],"navigation":[],"global_style":{}}`},
		{"page missing slug", `{"website_goal":"g","audience":"a","pages":[{"title":"t","goal":"g","sections":[]}],"navigation":[],"global_style":{}}`},
		{"section missing purpose", `{"website_goal":"g","audience":"a","pages":[{"slug":"home","title":"t","goal":"g","sections":[{"id":"x","type":"hero"}]}],"navigation":["home"],"global_style":{}}`},
		{"duplicate slug", `{"website_goal":"g","audience":"a","pages":[{"slug":"home","title":"t","goal":"g","sections":[]},{"slug":"home","title":"t","goal":"g","sections":[]}],"navigation":["home"],"global_style":{}}`},
		{"dangling navigation", `{"website_goal":"g","audience":"a","pages":[{"slug":"home","title":"t","goal":"g","sections":[]}],"navigation":["home","blog"],"global_style":{}}`},
		{"wrong type", `{"website_goal":"g","audience":"a","pages":"home","navigation":[],"global_style":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if bp, err := Parse(tt.raw); err == nil {
				t.Errorf("expected error, got %+v", bp)
			}
		})
	}
}

func TestValidateDuplicateSectionID(t *testing.T) {
	bp := sample(t)
	bp.Pages[0].Sections = append(bp.Pages[0].Sections, Section{ID: "hero", Type: "hero"})
	if err := bp.Validate(); err == nil {
		t.Error("expected duplicate section id error")
	}
}

func TestWithPageCodeDoesNotMutateReceiver(t *testing.T) {
	bp := sample(t)

	updated, err := bp.WithPageCode("pricing", "function App() { return null }")
	if err != nil {
		t.Fatalf("WithPageCode: %v", err)
	}

	orig, _ := bp.PageBySlug("pricing")
	if orig.Generated() {
		t.Error("original blueprint was mutated")
	}
	p, _ := updated.PageBySlug("pricing")
	if !p.Generated() {
		t.Error("updated blueprint is missing page code")
	}

	if _, err := bp.WithPageCode("missing", "x"); err == nil {
		t.Error("expected error for unknown slug")
	}
}

func TestWithSectionContent(t *testing.T) {
	bp := sample(t)

	updated, err := bp.WithSectionContent("home", "hero", "function Hero() {}")
	if err != nil {
		t.Fatalf("WithSectionContent: %v", err)
	}
	home, _ := updated.PageBySlug("home")
	sec, ok := home.SectionByID("hero")
	if !ok || sec.Content != "function Hero() {}" {
		t.Errorf("section content = %+v", sec)
	}
	if home.Generated() {
		t.Error("section content must not be merged into page code")
	}

	orig, _ := bp.PageBySlug("home")
	if s, _ := orig.SectionByID("hero"); s.Content != "" {
		t.Error("original blueprint was mutated")
	}

	if _, err := bp.WithSectionContent("home", "nope", "x"); err == nil {
		t.Error("expected error for unknown section")
	}
}

func TestCloneIsDeep(t *testing.T) {
	bp := sample(t)
	c := bp.Clone()
	c.Navigation[0] = "changed"
	c.Pages[0].Sections[0].Purpose = "changed"

	if bp.Navigation[0] != "home" {
		t.Error("navigation shared between clone and original")
	}
	if bp.Pages[0].Sections[0].Purpose == "changed" {
		t.Error("sections shared between clone and original")
	}
}

func TestPlanDropsGeneratedArtifacts(t *testing.T) {
	bp := sample(t)
	withCode, err := bp.WithPageCode("home", "const App = () => null;")
	if err != nil {
		t.Fatal(err)
	}
	withCode, err = withCode.WithSectionContent("home", withCode.Pages[0].Sections[0].ID, "<Hero />")
	if err != nil {
		t.Fatal(err)
	}

	plan := withCode.Plan()
	if plan.Pages[0].Code != "" || plan.Pages[0].Sections[0].Content != "" {
		t.Error("plan still carries generated artifacts")
	}
	if withCode.Pages[0].Code == "" {
		t.Error("Plan modified the receiver")
	}
}

func TestSchemaRequiredFields(t *testing.T) {
	s := Schema()
	req, ok := s["required"].([]any)
	if !ok {
		t.Fatalf("required has type %T", s["required"])
	}
	if len(req) != len(RequiredFields) {
		t.Errorf("required = %v", req)
	}

	// Mutating one schema must not leak into the next.
	s["type"] = "changed"
	if Schema()["type"] != "object" {
		t.Error("Schema returned shared state")
	}
}

func TestOutline(t *testing.T) {
	out := Outline(sample(t))

	for _, want := range []string{"# Site Plan", "Sell handmade pottery", "1. `home`", "2. `pricing`", "`#4F46E5`", "### Pricing (`/pricing`)", "**pricing** (`plans`): Compare plans"} {
		if !strings.Contains(out, want) {
			t.Errorf("outline missing %q\n%s", want, out)
		}
	}
}
