package editor

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/ziadkadry99/instasite/internal/blueprint"
)

// renderer turns model-authored text into HTML for the editor. The plan
// outline is sanitized because every string in it comes from the model;
// source listings are escaped by the highlighter.
type renderer struct {
	outline goldmark.Markdown
	code    goldmark.Markdown
	policy  *bluemonday.Policy
}

func newRenderer() *renderer {
	return &renderer{
		outline: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		code: goldmark.New(
			goldmark.WithExtensions(
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Outline renders the blueprint plan as sanitized HTML.
func (r *renderer) Outline(bp *blueprint.Blueprint) (template.HTML, error) {
	if bp == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.outline.Convert([]byte(blueprint.Outline(bp)), &buf); err != nil {
		return "", fmt.Errorf("rendering outline: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Code renders source as a highlighted listing.
func (r *renderer) Code(source, lang string) (template.HTML, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	fence := "```"
	for strings.Contains(source, fence) {
		fence += "`"
	}
	md := fence + lang + "\n" + source + "\n" + fence + "\n"

	var buf bytes.Buffer
	if err := r.code.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("rendering code: %w", err)
	}
	return template.HTML(buf.String()), nil
}
