package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/instasite/internal/deploy"
	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/llm/llmtest"
	"github.com/ziadkadry99/instasite/internal/sandbox"
)

const blueprintJSON = `{
  "website_goal": "Sell handmade pottery",
  "audience": "Home decor enthusiasts",
  "pages": [
    {"slug": "home", "title": "Home", "goal": "Introduce the studio",
     "sections": [{"id": "hero", "type": "hero", "purpose": "First impression"}]},
    {"slug": "pricing", "title": "Pricing", "goal": "Show prices",
     "sections": [{"id": "plans", "type": "pricing", "purpose": "Compare plans"}]}
  ],
  "navigation": ["home", "pricing"],
  "global_style": {"primary_color": "#4F46E5", "secondary_color": "#0F172A",
                   "accent_color": "#22C55E", "font_family": "Inter", "tone": "Professional"}
}`

const homeCode = "```tsx\nexport default function App() { return <h1>Home</h1> }\n```"

var params = generator.Params{
	Goal:     "Sell handmade pottery",
	Audience: "Home decor enthusiasts",
	Type:     "E-commerce",
	Pages:    []string{"home", "pricing"},
	Colors:   []string{"#4F46E5"},
	Tone:     "Professional",
}

func newTestManager(fake *llmtest.Provider) *Manager {
	gen := generator.New(fake, generator.Options{BlueprintModel: "fast", PageModel: "strong"})
	return NewManager(gen, Options{DeployDelay: time.Millisecond})
}

// editorSession returns a session that has reached the editor.
func editorSession(t *testing.T, fake *llmtest.Provider) *Controller {
	t.Helper()
	fake.Push(llmtest.Text(blueprintJSON), llmtest.Text(homeCode))
	c := newTestManager(fake).Create()
	if err := c.StartSetup(); err != nil {
		t.Fatalf("StartSetup: %v", err)
	}
	if err := c.Generate(context.Background(), params); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return c
}

func waitFor(t *testing.T, c *Controller, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := c.Snapshot(); cond(snap) {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s; state %+v", what, c.Snapshot())
	return Snapshot{}
}

func TestGenerateReachesEditor(t *testing.T) {
	fake := llmtest.New()
	c := editorSession(t, fake)

	snap := c.Snapshot()
	if snap.Screen != ScreenEditor {
		t.Fatalf("screen = %s", snap.Screen)
	}
	if snap.Step != StepFinalizing {
		t.Errorf("step = %d", snap.Step)
	}
	if snap.CurrentPage != "home" {
		t.Errorf("current page = %q", snap.CurrentPage)
	}
	home, _ := snap.Blueprint.PageBySlug("home")
	if !strings.HasPrefix(home.Code, "export default function App") {
		t.Errorf("home code = %q", home.Code)
	}
	pricing, _ := snap.Blueprint.PageBySlug("pricing")
	if pricing.Generated() {
		t.Error("sibling pages must not be generated eagerly")
	}
	if fake.CallCount() != 2 {
		t.Errorf("calls = %d", fake.CallCount())
	}
	if snap.Params.Goal != params.Goal {
		t.Error("params not retained")
	}
}

func TestGenerateRequiresSetupScreen(t *testing.T) {
	fake := llmtest.New()
	c := newTestManager(fake).Create()

	err := c.Generate(context.Background(), params)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from landing, got %v", err)
	}
	if fake.CallCount() != 0 {
		t.Error("no call expected")
	}
}

func TestGenerateRejectsInvalidParams(t *testing.T) {
	fake := llmtest.New()
	c := newTestManager(fake).Create()
	c.StartSetup()

	err := c.Generate(context.Background(), generator.Params{Audience: "x", Pages: []string{"home"}})
	if !errors.Is(err, generator.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if c.Snapshot().Screen != ScreenSetup {
		t.Error("screen should stay on setup")
	}
}

func TestGenerateBlueprintFailureRevertsToSetup(t *testing.T) {
	fake := llmtest.New(llmtest.Fail(errors.New("service unreachable")))
	c := newTestManager(fake).Create()
	c.StartSetup()

	err := c.Generate(context.Background(), params)
	if !generator.IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}

	snap := c.Snapshot()
	if snap.Screen != ScreenSetup || snap.Step != StepNone {
		t.Errorf("screen/step = %s/%d", snap.Screen, snap.Step)
	}
	if snap.Blueprint != nil {
		t.Error("no blueprint should be installed")
	}
	if snap.Notice == nil || !strings.Contains(snap.Notice.Message, "service unreachable") {
		t.Errorf("notice = %+v", snap.Notice)
	}
}

func TestGenerateHomeFailureKeepsNoPartialBlueprint(t *testing.T) {
	fake := llmtest.New(llmtest.Text(blueprintJSON), llmtest.Fail(errors.New("timeout")))
	c := newTestManager(fake).Create()
	c.StartSetup()

	if err := c.Generate(context.Background(), params); err == nil {
		t.Fatal("expected failure")
	}
	snap := c.Snapshot()
	if snap.Blueprint != nil {
		t.Error("blueprint installed although home page failed")
	}
	if snap.Screen != ScreenSetup {
		t.Errorf("screen = %s", snap.Screen)
	}
}

func TestFailedRegenerationKeepsPreviousBlueprint(t *testing.T) {
	fake := llmtest.New()
	c := editorSession(t, fake)
	before := c.Snapshot().Blueprint

	if err := c.StartSetup(); err != nil {
		t.Fatal(err)
	}
	fake.Push(llmtest.Text(`not json`))
	if err := c.Generate(context.Background(), params); err == nil {
		t.Fatal("expected failure")
	}

	snap := c.Snapshot()
	if snap.Blueprint != before {
		t.Error("previous blueprint was replaced")
	}
	home, _ := snap.Blueprint.PageBySlug("home")
	if !home.Generated() {
		t.Error("previous blueprint lost its code")
	}
	if snap.Notice == nil {
		t.Error("expected a notice")
	}
}

func TestGenerateWhileGeneratingIsBusy(t *testing.T) {
	fake := llmtest.New(llmtest.Text(blueprintJSON), llmtest.Text(homeCode))
	fake.Gate = make(chan struct{})
	c := newTestManager(fake).Create()
	c.StartSetup()

	if err := c.GenerateAsync(context.Background(), params); err != nil {
		t.Fatalf("GenerateAsync: %v", err)
	}
	if err := c.Generate(context.Background(), params); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := c.StartSetup(); !errors.Is(err, ErrBusy) {
		t.Errorf("StartSetup while generating: %v", err)
	}
	if snap := c.Snapshot(); snap.Screen != ScreenGenerating || snap.Step != StepAnalyzing {
		t.Errorf("screen/step = %s/%d", snap.Screen, snap.Step)
	}

	fake.Gate <- struct{}{}
	waitFor(t, c, "building step", func(s Snapshot) bool { return s.Step == StepBuilding })
	fake.Gate <- struct{}{}
	waitFor(t, c, "editor", func(s Snapshot) bool { return s.Screen == ScreenEditor })
}

func TestSelectPageGeneratesOnce(t *testing.T) {
	fake := llmtest.New()
	c := editorSession(t, fake)

	fake.Push(llmtest.Text("```jsx\nconst App = () => <h1>Pricing</h1>;\n```"))
	if err := c.SelectPage(context.Background(), "pricing"); err != nil {
		t.Fatalf("SelectPage: %v", err)
	}
	snap := c.Snapshot()
	page, _ := snap.Current()
	if page.Slug != "pricing" || page.Code != "const App = () => <h1>Pricing</h1>;" {
		t.Errorf("current page = %+v", page)
	}

	if err := c.SelectPage(context.Background(), "home"); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectPage(context.Background(), "pricing"); err != nil {
		t.Fatal(err)
	}
	if fake.CallCount() != 3 {
		t.Errorf("selecting generated pages must not call the service; calls = %d", fake.CallCount())
	}
}

func TestSelectPageNotFound(t *testing.T) {
	fake := llmtest.New()
	c := editorSession(t, fake)

	err := c.SelectPage(context.Background(), "missing-slug")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if fake.CallCount() != 2 {
		t.Error("NotFound must not issue a call")
	}
	if c.Snapshot().CurrentPage != "home" {
		t.Error("selection changed on NotFound")
	}
}

func TestEditorOperationsNeedBlueprint(t *testing.T) {
	c := newTestManager(llmtest.New()).Create()

	if err := c.SelectPage(context.Background(), "home"); !errors.Is(err, ErrNoBlueprint) {
		t.Errorf("SelectPage: %v", err)
	}
	if _, err := c.RegenerateSection(context.Background(), "home", "hero"); !errors.Is(err, ErrNoBlueprint) {
		t.Errorf("RegenerateSection: %v", err)
	}
	if _, err := c.Deploy(); !errors.Is(err, ErrNoBlueprint) {
		t.Errorf("Deploy: %v", err)
	}
}

func TestRegeneratePageInFlightIsRejected(t *testing.T) {
	fake := llmtest.New()
	c := editorSession(t, fake)

	fake.Push(llmtest.Text("const App = () => <h1>v1</h1>;"))
	fake.Gate = make(chan struct{})
	if err := c.SelectPageAsync(context.Background(), "pricing"); err != nil {
		t.Fatalf("SelectPageAsync: %v", err)
	}
	waitFor(t, c, "pricing in flight", func(s Snapshot) bool { return s.Generating("pricing") })

	if err := c.RegeneratePage(context.Background(), "pricing"); !errors.Is(err, ErrGenerationInProgress) {
		t.Errorf("expected ErrGenerationInProgress, got %v", err)
	}
	if !IsConflict(ErrGenerationInProgress) {
		t.Error("in-progress should be a conflict")
	}
	// Selecting again only switches the view.
	if err := c.SelectPage(context.Background(), "pricing"); err != nil {
		t.Errorf("reselect while generating: %v", err)
	}

	fake.Gate <- struct{}{}
	snap := waitFor(t, c, "pricing generated", func(s Snapshot) bool { return !s.Generating("pricing") })
	page, _ := snap.Blueprint.PageBySlug("pricing")
	if page.Code != "const App = () => <h1>v1</h1>;" {
		t.Errorf("code = %q", page.Code)
	}
	if fake.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", fake.CallCount())
	}
}

func TestSiblingPagesGenerateIndependently(t *testing.T) {
	fake := llmtest.New()
	c := editorSession(t, fake)

	fake.Push(llmtest.Text("const App = () => <h1>Home v2</h1>;"), llmtest.Text("const App = () => <h1>Pricing</h1>;"))
	fake.Gate = make(chan struct{})

	if err := c.RegeneratePageAsync(context.Background(), "home"); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectPageAsync(context.Background(), "pricing"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, c, "both in flight", func(s Snapshot) bool { return s.Generating("home") && s.Generating("pricing") })

	fake.Gate <- struct{}{}
	fake.Gate <- struct{}{}
	snap := waitFor(t, c, "both done", func(s Snapshot) bool { return len(s.InFlight) == 0 })

	for _, slug := range []string{"home", "pricing"} {
		page, _ := snap.Blueprint.PageBySlug(slug)
		if !page.Generated() {
			t.Errorf("page %s lost its update", slug)
		}
	}
}

func TestPageFailureLeavesCodeUnset(t *testing.T) {
	fake := llmtest.New()
	c := editorSession(t, fake)

	fake.Push(llmtest.Fail(errors.New("quota exceeded")))
	err := c.SelectPage(context.Background(), "pricing")
	if !generator.IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}

	snap := c.Snapshot()
	page, _ := snap.Current()
	if page.Slug != "pricing" || page.Generated() {
		t.Errorf("page = %+v", page)
	}
	if snap.Generating("pricing") {
		t.Error("in-flight marker not cleared")
	}
	if snap.Notice == nil || !strings.Contains(snap.Notice.Message, "quota exceeded") {
		t.Errorf("notice = %+v", snap.Notice)
	}
	if snap.Screen != ScreenEditor {
		t.Errorf("screen = %s", snap.Screen)
	}
}

func TestRegenerateSectionCachesFragment(t *testing.T) {
	fake := llmtest.New()
	c := editorSession(t, fake)
	before, _ := c.Snapshot().Blueprint.PageBySlug("home")

	fake.Push(llmtest.Text("```tsx\nfunction Hero() { return <section>New</section> }\n```"))
	frag, err := c.RegenerateSection(context.Background(), "home", "hero")
	if err != nil {
		t.Fatalf("RegenerateSection: %v", err)
	}
	if frag != "function Hero() { return <section>New</section> }" {
		t.Errorf("fragment = %q", frag)
	}

	after, _ := c.Snapshot().Blueprint.PageBySlug("home")
	if after.Code != before.Code {
		t.Error("page code must not change on section regeneration")
	}
	section, _ := after.SectionByID("hero")
	if section.Content != frag {
		t.Errorf("section content = %q", section.Content)
	}

	if _, err := c.RegenerateSection(context.Background(), "home", "nope"); !IsNotFound(err) {
		t.Errorf("unknown section: %v", err)
	}
}

func TestReportSandboxError(t *testing.T) {
	c := editorSession(t, llmtest.New())
	home, _ := c.Snapshot().Current()

	stale, _ := sandbox.NewRenderError("home", "0000", "runtime", "old")
	if c.ReportSandboxError(stale) {
		t.Error("stale report recorded")
	}
	other, _ := sandbox.NewRenderError("pricing", sandbox.Version(home.Code), "runtime", "x")
	if c.ReportSandboxError(other) {
		t.Error("report for another page recorded")
	}

	re, _ := sandbox.NewRenderError("home", sandbox.Version(home.Code), "entry", "no entry point found")
	if !c.ReportSandboxError(re) {
		t.Fatal("report not recorded")
	}
	if got := c.Snapshot().SandboxError; got == nil || got.Kind != sandbox.ErrEntry {
		t.Errorf("sandbox error = %+v", got)
	}
}

func TestRepeatedSandboxErrorKeepsRevision(t *testing.T) {
	c := editorSession(t, llmtest.New())
	home, _ := c.Snapshot().Current()
	version := sandbox.Version(home.Code)

	re, _ := sandbox.NewRenderError("home", version, "entry", "no entry point found")
	if !c.ReportSandboxError(re) {
		t.Fatal("report not recorded")
	}
	rev := c.Snapshot().Revision

	for i := 0; i < 2; i++ {
		again, _ := sandbox.NewRenderError("home", version, "entry", "no entry point found")
		if !c.ReportSandboxError(again) {
			t.Errorf("repeat %d: recorded error not acknowledged", i)
		}
		if got := c.Snapshot().Revision; got != rev {
			t.Errorf("repeat %d: revision moved from %d to %d", i, rev, got)
		}
	}

	changed, _ := sandbox.NewRenderError("home", version, "runtime", "boom")
	if !c.ReportSandboxError(changed) {
		t.Fatal("changed report not recorded")
	}
	if got := c.Snapshot().Revision; got <= rev {
		t.Errorf("a different error should publish, revision %d -> %d", rev, got)
	}
}

func TestSubscribeReceivesLatestSnapshot(t *testing.T) {
	c := newTestManager(llmtest.New()).Create()
	ch, cancel := c.Subscribe()
	defer cancel()

	first := <-ch
	if first.Screen != ScreenLanding {
		t.Errorf("initial screen = %s", first.Screen)
	}

	c.StartSetup()
	select {
	case snap := <-ch:
		if snap.Screen != ScreenSetup || snap.Revision <= first.Revision {
			t.Errorf("snapshot = %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	cancel()
	c.StartSetup()
	select {
	case <-ch:
		t.Error("update after cancel")
	default:
	}
}

func TestDeploy(t *testing.T) {
	c := editorSession(t, llmtest.New())

	st, err := c.Deploy()
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if st.State != deploy.StateDeploying {
		t.Errorf("state = %s", st.State)
	}
	snap := waitFor(t, c, "deploy success", func(s Snapshot) bool { return s.Deploy.State == deploy.StateSuccess })
	if !strings.HasPrefix(snap.Deploy.URL, "https://swift-site-") {
		t.Errorf("url = %q", snap.Deploy.URL)
	}

	c.CloseDeploy()
	if c.DeployStatus().State != deploy.StateIdle {
		t.Error("close should reset the deployment")
	}
}

func TestManager(t *testing.T) {
	m := newTestManager(llmtest.New())
	c := m.Create()

	got, err := m.Get(c.ID())
	if err != nil || got != c {
		t.Fatalf("Get: %v", err)
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	if n := m.Prune(time.Hour); n != 0 {
		t.Errorf("pruned active session")
	}
	time.Sleep(5 * time.Millisecond)
	if n := m.Prune(time.Millisecond); n != 1 || m.Len() != 0 {
		t.Errorf("prune removed %d, %d left", n, m.Len())
	}
}
