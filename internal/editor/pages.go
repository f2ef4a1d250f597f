package editor

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/sandbox"
	"github.com/ziadkadry99/instasite/internal/session"
)

// Editor views.
const (
	viewPreview = "preview"
	viewCode    = "code"
	viewPlan    = "plan"
)

// Sidebar tabs.
const (
	tabPages  = "pages"
	tabStyles = "styles"
)

// screenData is the data passed to the screen templates.
type screenData struct {
	Snap         session.Snapshot
	Layout       string
	WebsiteTypes []string
	Tones        []string
	PageOptions  []string

	// Generating screen only.
	Steps []stepView

	// Editor only.
	View        string
	Tab         string
	Page        blueprint.Page
	HasPage     bool
	Generating  bool
	PreviewURL  string
	SandboxAttr string
	// MessageSource tags messages posted by preview documents.
	MessageSource string
	Outline       template.HTML
	CodeHTML      template.HTML
	Sections      []sectionView
}

type stepView struct {
	N      int
	Label  string
	Done   bool
	Active bool
}

type sectionView struct {
	blueprint.Section
	ContentHTML template.HTML
	Generating  bool
}

var templateFuncs = template.FuncMap{
	"contains": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
	"colorAt": func(colors []string, i int) string {
		if i < len(colors) {
			return colors[i]
		}
		return "#000000"
	},
}

func (e *Editor) handleLanding(w http.ResponseWriter, r *http.Request) {
	e.render(w, r, "landing", screenData{Snap: session.Snapshot{Screen: session.ScreenLanding}})
}

func (e *Editor) handleNewSession(w http.ResponseWriter, r *http.Request) {
	c := e.sessions.Create()
	// The landing page's call to action leads straight to the form.
	if err := c.StartSetup(); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/s/"+url.PathEscape(c.ID()), http.StatusSeeOther)
}

func (e *Editor) handleScreen(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	snap := c.Snapshot()

	data := screenData{
		Snap:         snap,
		Layout:       layoutKey(snap),
		WebsiteTypes: session.WebsiteTypes,
		Tones:        session.Tones,
		PageOptions:  session.PageOptions,
	}

	switch snap.Screen {
	case session.ScreenEditor:
		if err := e.fillEditor(r, &data); err != nil {
			e.logger.Error("rendering editor", zap.Error(err))
			http.Error(w, "failed to render editor", http.StatusInternalServerError)
			return
		}
		e.render(w, r, "editor", data)
	case session.ScreenGenerating:
		data.Steps = steps(snap.Step)
		e.render(w, r, "generating", data)
	case session.ScreenSetup:
		e.render(w, r, "setup", data)
	default:
		e.render(w, r, "landing", data)
	}
}

func (e *Editor) fillEditor(r *http.Request, data *screenData) error {
	snap := data.Snap
	data.View = pick(r.URL.Query().Get("view"), viewPreview, viewCode, viewPlan)
	data.Tab = pick(r.URL.Query().Get("tab"), tabPages, tabStyles)
	data.SandboxAttr = sandbox.SandboxAttr
	data.MessageSource = sandbox.MessageSource

	outline, err := e.md.Outline(snap.Blueprint)
	if err != nil {
		return err
	}
	data.Outline = outline

	page, ok := snap.Current()
	if !ok {
		return nil
	}
	data.Page, data.HasPage = page, true
	data.Generating = snap.Generating(page.Slug)

	if page.Generated() {
		v := url.Values{"v": {sandbox.Version(page.Code)}}
		data.PreviewURL = "/s/" + url.PathEscape(snap.ID) + "/preview/" + url.PathEscape(page.Slug) + "?" + v.Encode()
		if data.View == viewCode {
			if data.CodeHTML, err = e.md.Code(page.Code, "tsx"); err != nil {
				return err
			}
		}
	}

	for _, s := range page.Sections {
		sv := sectionView{Section: s, Generating: snap.Generating(page.Slug + "/" + s.ID)}
		if s.Content != "" {
			if sv.ContentHTML, err = e.md.Code(s.Content, "tsx"); err != nil {
				return err
			}
		}
		data.Sections = append(data.Sections, sv)
	}
	return nil
}

// handlePreview serves the standalone sandbox document of one page. The
// response carries a sandbox CSP so the document is isolated even when it is
// opened outside the editor's iframe.
func (e *Editor) handlePreview(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	slug := chi.URLParam(r, "slug")
	snap := c.Snapshot()
	if snap.Blueprint == nil {
		http.NotFound(w, r)
		return
	}
	page, ok := snap.Blueprint.PageBySlug(slug)
	if !ok {
		http.NotFound(w, r)
		return
	}

	h := w.Header()
	h.Set("Content-Security-Policy", sandbox.ContentSecurityPolicy())
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Cache-Control", "no-store")

	if !page.Generated() {
		h.Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(notGeneratedHTML))
		return
	}

	doc, err := e.sandbox.Render(page.Code)
	if err != nil {
		e.logger.Error("rendering preview", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "failed to render preview", http.StatusInternalServerError)
		return
	}
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("ETag", `"`+doc.Version+`"`)
	w.Write(doc.HTML)
}

func (e *Editor) render(w http.ResponseWriter, r *http.Request, name string, data screenData) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		e.logger.Error("executing template", zap.String("template", name), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func steps(current session.Step) []stepView {
	all := []session.Step{session.StepAnalyzing, session.StepBuilding, session.StepFinalizing}
	out := make([]stepView, 0, len(all))
	for _, st := range all {
		out = append(out, stepView{
			N:      int(st),
			Label:  st.Label(),
			Done:   st < current,
			Active: st == current,
		})
	}
	return out
}

func pick(v string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return allowed[0]
}

const notGeneratedHTML = `<!DOCTYPE html><html><body style="font-family:sans-serif;color:#64748b;display:flex;align-items:center;justify-content:center;height:100vh;margin:0">This page has not been generated yet.</body></html>`
