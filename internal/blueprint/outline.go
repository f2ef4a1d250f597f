package blueprint

import (
	"fmt"
	"strings"
)

// Outline renders the plan as a markdown document: site goal and audience,
// navigation order, style tokens, and the section list of every page.
func Outline(b *Blueprint) string {
	var sb strings.Builder

	sb.WriteString("# Site Plan\n\n")
	fmt.Fprintf(&sb, "**Goal:** %s\n\n", oneLine(b.WebsiteGoal))
	fmt.Fprintf(&sb, "**Audience:** %s\n\n", oneLine(b.Audience))

	if len(b.Navigation) > 0 {
		sb.WriteString("## Navigation\n\n")
		for i, slug := range b.Navigation {
			fmt.Fprintf(&sb, "%d. `%s`\n", i+1, slug)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Global Style\n\n")
	sb.WriteString("| Token | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Primary | `%s` |\n", b.GlobalStyle.PrimaryColor)
	fmt.Fprintf(&sb, "| Secondary | `%s` |\n", b.GlobalStyle.SecondaryColor)
	fmt.Fprintf(&sb, "| Accent | `%s` |\n", b.GlobalStyle.AccentColor)
	fmt.Fprintf(&sb, "| Font | %s |\n", oneLine(b.GlobalStyle.FontFamily))
	fmt.Fprintf(&sb, "| Tone | %s |\n\n", oneLine(b.GlobalStyle.Tone))

	sb.WriteString("## Pages\n")
	for _, p := range b.Pages {
		fmt.Fprintf(&sb, "\n### %s (`/%s`)\n\n", oneLine(p.Title), p.Slug)
		if p.Goal != "" {
			fmt.Fprintf(&sb, "%s\n\n", oneLine(p.Goal))
		}
		for _, s := range p.Sections {
			fmt.Fprintf(&sb, "- **%s** (`%s`): %s\n", oneLine(s.Type), s.ID, oneLine(s.Purpose))
		}
	}
	return sb.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
