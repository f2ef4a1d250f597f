package sandbox

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrorKind classifies a failure reported from inside the preview.
type ErrorKind string

const (
	ErrTransform ErrorKind = "transform"
	ErrRuntime   ErrorKind = "runtime"
	ErrRender    ErrorKind = "render"
	ErrEntry     ErrorKind = "entry"
	ErrLoad      ErrorKind = "load"
)

var validKinds = map[ErrorKind]bool{
	ErrTransform: true,
	ErrRuntime:   true,
	ErrRender:    true,
	ErrEntry:     true,
	ErrLoad:      true,
}

const maxMessageLen = 2000

// RenderError is a failure that happened inside a preview document and was
// relayed to the host. It never originates from host code.
type RenderError struct {
	Slug    string    `json:"slug"`
	Version string    `json:"version"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("sandbox %s error on page %q (version %s): %s", e.Kind, e.Slug, e.Version, e.Message)
}

// NewRenderError validates and normalizes a report received from a preview.
// The report is untrusted input: unknown kinds are rejected and the message
// is truncated.
func NewRenderError(slug, version, kind, message string) (*RenderError, error) {
	k := ErrorKind(kind)
	if !validKinds[k] {
		return nil, fmt.Errorf("unknown sandbox error kind %q", kind)
	}
	if slug == "" {
		return nil, fmt.Errorf("sandbox report is missing the page slug")
	}
	message = strings.TrimSpace(message)
	if len(message) > maxMessageLen {
		message = message[:maxMessageLen] + "…"
	}
	if len(version) > 64 {
		version = version[:64]
	}
	return &RenderError{Slug: slug, Version: version, Kind: k, Message: message}, nil
}

// ContentSecurityPolicy returns the policy served with preview documents.
// The sandbox directive isolates the document even when it is opened outside
// an iframe; the fetch directives admit only the enumerated resources and the
// placeholder image host.
func ContentSecurityPolicy() string {
	scriptHosts := map[string]bool{}
	styleHosts := map[string]bool{}
	for _, res := range Resources {
		origin := originOf(res.URL)
		if res.Kind == KindFont {
			styleHosts[origin] = true
			continue
		}
		scriptHosts[origin] = true
	}

	directives := []string{
		"sandbox " + SandboxAttr,
		"default-src 'none'",
		"script-src 'unsafe-inline' 'unsafe-eval' " + joinSorted(scriptHosts),
		"style-src 'unsafe-inline' " + joinSorted(styleHosts),
		"font-src https://fonts.gstatic.com",
		"img-src data: " + PlaceholderImageOrigin + " https://fastly.picsum.photos",
		"connect-src 'none'",
		"frame-ancestors 'self'",
		"base-uri 'none'",
		"form-action 'none'",
	}
	return strings.Join(directives, "; ")
}

// PlaceholderImageOrigin is the only image host generated pages may use.
const PlaceholderImageOrigin = "https://picsum.photos"

// PlaceholderImageURL is the placeholder pattern given to the generator.
const PlaceholderImageURL = PlaceholderImageOrigin + "/800/600"

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

func joinSorted(set map[string]bool) string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}
