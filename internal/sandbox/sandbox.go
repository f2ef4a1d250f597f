// Package sandbox turns generated page source into a standalone preview
// document meant to run inside an origin-isolated iframe.
//
// The document loads a fixed set of external resources, exposes a closed set
// of icon components, injects the page source unchanged into a Babel script
// block and mounts the page's entry component at #root. Failures inside the
// document are posted to the parent window rather than thrown at the host.
package sandbox

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// ResourceKind names the capability an external resource grants.
type ResourceKind string

const (
	KindStyleEngine ResourceKind = "style-engine"
	KindFont        ResourceKind = "font"
	KindRuntime     ResourceKind = "runtime"
	KindRenderer    ResourceKind = "renderer"
	KindTransformer ResourceKind = "transformer"
	KindIcons       ResourceKind = "icons"
)

// Resource is one external asset the preview document loads.
type Resource struct {
	Kind ResourceKind
	URL  string
}

// Resources are loaded in this order. Nothing else is referenced by the
// document itself.
var Resources = []Resource{
	{KindStyleEngine, "https://cdn.tailwindcss.com"},
	{KindFont, "https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap"},
	{KindRuntime, "https://unpkg.com/react@18/umd/react.development.js"},
	{KindRenderer, "https://unpkg.com/react-dom@18/umd/react-dom.development.js"},
	{KindTransformer, "https://unpkg.com/@babel/standalone/babel.min.js"},
	{KindIcons, "https://unpkg.com/lucide-react@latest/dist/umd/lucide-react.js"},
}

// IconNamespace is the global the icon library is exposed under.
const IconNamespace = "LucideReact"

// Icons is the closed set of icon components bound for generated code.
// Any other icon name is an unresolved identifier inside the preview.
var Icons = []string{
	"ArrowRight", "ArrowLeft", "ChevronLeft", "ChevronRight", "ChevronDown",
	"Monitor", "Layout", "Zap", "Rocket", "Sparkles", "Palette",
	"Check", "CheckCircle", "Menu", "X",
	"Facebook", "Twitter", "Instagram", "Linkedin",
	"Search", "User", "ShoppingCart",
	"Star", "Clock", "Globe",
	"Send", "Mail", "Phone", "MapPin",
	"RefreshCw", "Eye", "Code", "ExternalLink", "Play",
}

// EntryPoints lists, in priority order, the identifiers checked for the
// component to mount. DefaultExport also matches an `export default`.
// A call to registerPage(Component) takes precedence over all of them.
var EntryPoints = []string{"App", "DefaultExport", "Page"}

// RegisterFunc is the global function generated code may call to name its
// entry component explicitly.
const RegisterFunc = "registerPage"

// RootID is the id of the node the entry component is mounted at.
const RootID = "root"

// MessageSource tags every message the preview posts to its parent.
const MessageSource = "instasite-sandbox"

// SandboxAttr is the iframe sandbox attribute for preview frames: scripts,
// modals and popups only; no same-origin access, no top-level navigation.
const SandboxAttr = "allow-scripts allow-modals allow-popups"

// Document is a rendered preview.
type Document struct {
	HTML []byte
	// Version identifies the source the document was built from.
	Version string
	// EntryPoint is the entry the document is expected to mount, as detected
	// from the source. Empty when none was found.
	EntryPoint string
}

// Renderer builds preview documents.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the document template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("preview").Parse(documentTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing preview template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type documentData struct {
	Scripts       []string
	FontURL       string
	IconNamespace string
	// Icons is a JS list of quoted icon names.
	Icons         string
	EntryPoints   []string
	RegisterFunc  string
	RootID        string
	MessageSource string
	Version       string
	Code          string
}

// Render assembles the preview document for code. The result depends only on
// code: rendering the same source twice yields identical documents.
func (r *Renderer) Render(code string) (*Document, error) {
	version := Version(code)

	data := documentData{
		IconNamespace: IconNamespace,
		Icons:         `"` + strings.Join(Icons, `", "`) + `"`,
		EntryPoints:   EntryPoints,
		RegisterFunc:  RegisterFunc,
		RootID:        RootID,
		MessageSource: MessageSource,
		Version:       version,
		Code:          escapeScript(code),
	}
	for _, res := range Resources {
		if res.Kind == KindFont {
			data.FontURL = res.URL
			continue
		}
		data.Scripts = append(data.Scripts, res.URL)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering preview: %w", err)
	}

	entry, _ := ResolveEntryPoint(code)
	return &Document{
		HTML:       buf.Bytes(),
		Version:    version,
		EntryPoint: entry,
	}, nil
}

// Version returns a short content hash of code.
func Version(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])[:16]
}

var (
	scriptCloseRe   = regexp.MustCompile(`(?i)</script`)
	commentOpenRe   = regexp.MustCompile(`<!--`)
	entryPatternFmt = `(?m)(\bfunction\s+%[1]s\s*[(<]|\b(?:const|let|var)\s+%[1]s\s*[=:]|\bclass\s+%[1]s\b)`
	defaultExportRe = regexp.MustCompile(`(?m)\bexport\s+default\b`)
	registerCallRe  = regexp.MustCompile(`\b` + RegisterFunc + `\s*\(`)
	entryPatterns   = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(EntryPoints))
		for _, name := range EntryPoints {
			m[name] = regexp.MustCompile(fmt.Sprintf(entryPatternFmt, name))
		}
		return m
	}()
)

// escapeScript keeps the source from terminating the enclosing script element.
// Inside JavaScript strings and regular expressions the rewritten sequences
// are equivalent to the originals.
func escapeScript(code string) string {
	code = scriptCloseRe.ReplaceAllStringFunc(code, func(m string) string {
		return `<\/` + m[2:]
	})
	return commentOpenRe.ReplaceAllString(code, `<\!--`)
}

// ResolveEntryPoint reports which entry the preview will mount for code,
// following the same precedence as the document: an explicit registerPage
// call, then App, DefaultExport (or an export default), then Page.
func ResolveEntryPoint(code string) (string, bool) {
	if registerCallRe.MatchString(code) {
		return RegisterFunc, true
	}
	for _, name := range EntryPoints {
		if entryPatterns[name].MatchString(code) {
			return name, true
		}
		if name == "DefaultExport" && defaultExportRe.MatchString(code) {
			return name, true
		}
	}
	return "", false
}
