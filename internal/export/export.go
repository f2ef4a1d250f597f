// Package export writes a generated site to disk: the blueprint, a plan
// outline and one standalone preview document per generated page.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/sandbox"
)

// Result lists what Write produced.
type Result struct {
	Dir     string
	Files   []string
	Skipped []string // slugs without generated code
}

// Write exports bp into dir, creating it if needed. Pages without code are
// skipped and listed in the result.
func Write(dir string, bp *blueprint.Blueprint, r *sandbox.Renderer) (*Result, error) {
	if bp == nil {
		return nil, fmt.Errorf("nothing to export: no blueprint")
	}
	if err := os.MkdirAll(filepath.Join(dir, "pages"), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	res := &Result{Dir: dir}

	data, err := json.MarshalIndent(bp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding blueprint: %w", err)
	}
	if err := res.write("blueprint.json", append(data, '\n')); err != nil {
		return nil, err
	}

	if err := res.write("sitemap.md", []byte(blueprint.Outline(bp))); err != nil {
		return nil, err
	}

	owners := make(map[string]string, len(bp.Pages))
	for _, page := range bp.Pages {
		name := pageFile(page.Slug)
		if prev, ok := owners[name]; ok {
			return nil, fmt.Errorf("pages %q and %q both export to pages/%s", prev, page.Slug, name)
		}
		owners[name] = page.Slug
	}

	for _, page := range bp.Pages {
		if !page.Generated() {
			res.Skipped = append(res.Skipped, page.Slug)
			continue
		}
		doc, err := r.Render(page.Code)
		if err != nil {
			return nil, fmt.Errorf("rendering page %q: %w", page.Slug, err)
		}
		if err := res.write(filepath.Join("pages", pageFile(page.Slug)), doc.HTML); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *Result) write(rel string, data []byte) error {
	path := filepath.Join(r.Dir, rel)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	r.Files = append(r.Files, rel)
	return nil
}

// pageFile maps a slug to a file name that stays inside the pages directory.
// Nested slugs keep every segment: "blog/post" becomes "blog_post.html".
func pageFile(slug string) string {
	clean := strings.Trim(path.Clean("/"+strings.ReplaceAll(slug, "\\", "/")), "/")
	if clean == "" {
		return "index.html"
	}
	return strings.ReplaceAll(clean, "/", "_") + ".html"
}
