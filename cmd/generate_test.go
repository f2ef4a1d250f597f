package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/llm/llmtest"
)

const siteJSON = `{
  "website_goal": "Promote a bakery",
  "audience": "Locals",
  "pages": [
    {"slug": "home", "title": "Home", "goal": "Welcome", "sections": [{"id": "hero", "type": "hero", "purpose": "Greet"}]},
    {"slug": "menu", "title": "Menu", "goal": "List bread", "sections": [{"id": "list", "type": "list", "purpose": "Show items"}]},
    {"slug": "contact", "title": "Contact", "goal": "Reach us", "sections": [{"id": "form", "type": "form", "purpose": "Contact form"}]}
  ],
  "navigation": ["home", "menu", "contact"],
  "global_style": {"primary_color": "#000000", "secondary_color": "#111111", "accent_color": "#222222", "font_family": "Inter", "tone": "Friendly"}
}`

type nopReporter struct{ updates int }

func (r *nopReporter) Start(int)          {}
func (r *nopReporter) Update(int, string) { r.updates++ }
func (r *nopReporter) Finish()            {}

var bakeryParams = generator.Params{Goal: "Promote a bakery", Audience: "Locals", Pages: []string{"home", "menu", "contact"}}

func TestBuildSiteGeneratesAllPages(t *testing.T) {
	fake := llmtest.New(
		llmtest.Text(siteJSON),
		llmtest.Text("const App = () => <h1>Home</h1>;"),
		llmtest.Fail(errors.New("overloaded")),
		llmtest.Text("const App = () => <h1>Contact</h1>;"),
	)
	gen := generator.New(fake, generator.Options{})

	bp, failed, err := buildSite(context.Background(), gen, bakeryParams, false, &nopReporter{})
	if err != nil {
		t.Fatalf("buildSite: %v", err)
	}
	for slug, want := range map[string]bool{"home": true, "menu": false, "contact": true} {
		p, _ := bp.PageBySlug(slug)
		if p.Generated() != want {
			t.Errorf("%s generated = %v, want %v", slug, p.Generated(), want)
		}
	}
	if _, ok := failed["menu"]; !ok || len(failed) != 1 {
		t.Errorf("failed = %v", failed)
	}
}

func TestBuildSiteHomeOnly(t *testing.T) {
	fake := llmtest.New(llmtest.Text(siteJSON), llmtest.Text("const App = () => null;"))
	gen := generator.New(fake, generator.Options{})

	bp, _, err := buildSite(context.Background(), gen, bakeryParams, true, &nopReporter{})
	if err != nil {
		t.Fatalf("buildSite: %v", err)
	}
	if fake.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", fake.CallCount())
	}
	if p, _ := bp.PageBySlug("menu"); p.Generated() {
		t.Error("menu should not be generated")
	}
}

func TestBuildSiteHomeFailureAborts(t *testing.T) {
	fake := llmtest.New(llmtest.Text(siteJSON), llmtest.Fail(errors.New("boom")))
	gen := generator.New(fake, generator.Options{})

	bp, _, err := buildSite(context.Background(), gen, bakeryParams, false, &nopReporter{})
	if err == nil || bp != nil {
		t.Fatalf("expected failure, got bp=%v err=%v", bp, err)
	}
	if !generator.IsGenerationError(err) {
		t.Errorf("expected generation error, got %v", err)
	}
}
