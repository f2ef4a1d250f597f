package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/sandbox"
)

const systemPrompt = `You are a world-class AI Website Architect & Senior Frontend Engineer.
Your task is to analyze user needs and build multi-page websites that are consistent, modern, and ready to deploy.
Principles:
- Focus on MVP structure.
- Use modular components.
- Maintain consistent global styles across all pages.
- Output high-quality React + Tailwind code.`

const blueprintPromptTemplate = `Based on the following user input:
- Website Goal: %s
- Target Audience: %s
- Website Type: %s
- Pages Requested: %s
- Colors: %s
- Tone: %s

Create a WEBSITE BLUEPRINT in JSON format. Do not output HTML.
Every page needs a unique lowercase slug and every section a unique id within its page.
Ensure all pages are connected via the navigation, listing page slugs only.`

const pagePromptTemplate = `Use the following WEBSITE BLUEPRINT:
%s

Build the full React code for the page:
- slug: %s
- title: %s

Requirements:
- Use React + Tailwind CSS.
- Include a consistent Navbar (using slugs from blueprint: %s) and Footer.
- Each section from the blueprint must be implemented, in order: %s.
- Use Lucide icons from "lucide-react". Only these icons are available: %s.
- Use the global styles: %s.
- The code must be self-contained in one block.
- DO NOT use external assets except placeholder images (%s).
- The page component must be the default export.
- Output ONLY the component code starting from imports to export default.`

const sectionPromptTemplate = `Regenerate the code for this specific section:
- Page: %s
- Section Id: %s
- Section Type: %s
- Purpose: %s
- Brand Tone: %s
- Audience: %s

Constraints:
- Must fit the current global styles: %s.
- Only these Lucide icons are available: %s.
- DO NOT use external assets except placeholder images (%s).
- Only provide the JSX/React code for that specific section as a functional component.`

func buildBlueprintPrompt(p Params) string {
	return fmt.Sprintf(blueprintPromptTemplate,
		p.Goal,
		p.Audience,
		p.Type,
		strings.Join(p.Pages, ", "),
		strings.Join(p.Colors, ", "),
		p.Tone,
	)
}

func buildPagePrompt(bp *blueprint.Blueprint, page blueprint.Page) (string, error) {
	full, err := json.MarshalIndent(bp.Plan(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding blueprint: %w", err)
	}
	style, err := json.Marshal(bp.GlobalStyle)
	if err != nil {
		return "", fmt.Errorf("encoding global style: %w", err)
	}

	sections := make([]string, 0, len(page.Sections))
	for _, s := range page.Sections {
		sections = append(sections, s.ID+" ("+s.Type+")")
	}

	return fmt.Sprintf(pagePromptTemplate,
		full,
		page.Slug,
		page.Title,
		strings.Join(bp.Navigation, ", "),
		strings.Join(sections, ", "),
		strings.Join(sandbox.Icons, ", "),
		style,
		sandbox.PlaceholderImageURL,
	), nil
}

func buildSectionPrompt(bp *blueprint.Blueprint, page blueprint.Page, section blueprint.Section) (string, error) {
	style, err := json.Marshal(bp.GlobalStyle)
	if err != nil {
		return "", fmt.Errorf("encoding global style: %w", err)
	}
	return fmt.Sprintf(sectionPromptTemplate,
		page.Slug,
		section.ID,
		section.Type,
		section.Purpose,
		bp.GlobalStyle.Tone,
		bp.Audience,
		style,
		strings.Join(sandbox.Icons, ", "),
		sandbox.PlaceholderImageURL,
	), nil
}
