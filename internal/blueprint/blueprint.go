package blueprint

import (
	"fmt"
	"strings"
)

// Section is a named content block within a page's plan.
type Section struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Purpose string `json:"purpose"`
	// Content caches the last regenerated source fragment for the section.
	Content string `json:"content,omitempty"`
}

// Page is one page of the site plan. Code is empty until the page has been
// generated.
type Page struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Goal     string    `json:"goal"`
	Sections []Section `json:"sections"`
	Code     string    `json:"code,omitempty"`
}

// Generated reports whether page source has been produced for the page.
func (p Page) Generated() bool {
	return p.Code != ""
}

// SectionByID returns the section with the given id.
func (p Page) SectionByID(id string) (Section, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// GlobalStyle holds the design tokens shared by every page.
type GlobalStyle struct {
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	FontFamily     string `json:"font_family"`
	Tone           string `json:"tone"`
}

// Blueprint is the structured site plan produced before any page code is
// written. Values are treated as immutable: updates go through the With*
// methods, which return a modified copy.
type Blueprint struct {
	WebsiteGoal string      `json:"website_goal"`
	Audience    string      `json:"audience"`
	Pages       []Page      `json:"pages"`
	Navigation  []string    `json:"navigation"`
	GlobalStyle GlobalStyle `json:"global_style"`
}

// Home returns the first page, which is the landing page by convention.
func (b *Blueprint) Home() (Page, bool) {
	if b == nil || len(b.Pages) == 0 {
		return Page{}, false
	}
	return b.Pages[0], true
}

// PageBySlug looks up a page by its slug.
func (b *Blueprint) PageBySlug(slug string) (Page, bool) {
	if b == nil {
		return Page{}, false
	}
	for _, p := range b.Pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// Slugs returns the page slugs in blueprint order.
func (b *Blueprint) Slugs() []string {
	slugs := make([]string, 0, len(b.Pages))
	for _, p := range b.Pages {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

// Clone returns a deep copy of the blueprint.
func (b *Blueprint) Clone() *Blueprint {
	if b == nil {
		return nil
	}
	out := *b
	out.Navigation = append([]string(nil), b.Navigation...)
	out.Pages = make([]Page, len(b.Pages))
	for i, p := range b.Pages {
		p.Sections = append([]Section(nil), p.Sections...)
		out.Pages[i] = p
	}
	return &out
}

// Plan returns a copy of the blueprint with all generated code and cached
// section content removed.
func (b *Blueprint) Plan() *Blueprint {
	out := b.Clone()
	if out == nil {
		return nil
	}
	for i := range out.Pages {
		out.Pages[i].Code = ""
		for j := range out.Pages[i].Sections {
			out.Pages[i].Sections[j].Content = ""
		}
	}
	return out
}

// WithPageCode returns a copy of the blueprint whose page slug carries code.
// The receiver is not modified.
func (b *Blueprint) WithPageCode(slug, code string) (*Blueprint, error) {
	out := b.Clone()
	for i := range out.Pages {
		if out.Pages[i].Slug == slug {
			out.Pages[i].Code = code
			return out, nil
		}
	}
	return nil, fmt.Errorf("page %q not in blueprint", slug)
}

// WithSectionContent returns a copy of the blueprint with the cached content of
// one section replaced. Page code is left untouched.
func (b *Blueprint) WithSectionContent(slug, sectionID, content string) (*Blueprint, error) {
	out := b.Clone()
	for i := range out.Pages {
		if out.Pages[i].Slug != slug {
			continue
		}
		for j := range out.Pages[i].Sections {
			if out.Pages[i].Sections[j].ID == sectionID {
				out.Pages[i].Sections[j].Content = content
				return out, nil
			}
		}
		return nil, fmt.Errorf("section %q not in page %q", sectionID, slug)
	}
	return nil, fmt.Errorf("page %q not in blueprint", slug)
}

// Validate checks the structural invariants: at least one page, non-empty
// unique slugs, unique section ids per page, and navigation entries that all
// name an existing page.
func (b *Blueprint) Validate() error {
	if b == nil {
		return fmt.Errorf("blueprint is nil")
	}
	if len(b.Pages) == 0 {
		return fmt.Errorf("blueprint has no pages")
	}

	slugs := make(map[string]bool, len(b.Pages))
	for i, p := range b.Pages {
		if strings.TrimSpace(p.Slug) == "" {
			return fmt.Errorf("page %d has an empty slug", i)
		}
		if slugs[p.Slug] {
			return fmt.Errorf("duplicate page slug %q", p.Slug)
		}
		slugs[p.Slug] = true

		ids := make(map[string]bool, len(p.Sections))
		for _, s := range p.Sections {
			if ids[s.ID] {
				return fmt.Errorf("page %q: duplicate section id %q", p.Slug, s.ID)
			}
			ids[s.ID] = true
		}
	}

	for _, nav := range b.Navigation {
		if !slugs[nav] {
			return fmt.Errorf("navigation entry %q does not match any page", nav)
		}
	}
	return nil
}
