package blueprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RequiredFields lists the top-level keys every blueprint response must carry.
var RequiredFields = []string{"website_goal", "audience", "pages", "navigation", "global_style"}

var requiredPageFields = []string{"slug", "title", "goal", "sections"}

var requiredSectionFields = []string{"id", "type", "purpose"}

// Schema returns the JSON schema that constrains structured blueprint output.
// A fresh map is returned on every call so callers may adapt it freely.
func Schema() map[string]any {
	str := func() map[string]any { return map[string]any{"type": "string"} }

	section := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":      str(),
			"type":    str(),
			"purpose": str(),
		},
		"required": toAny(requiredSectionFields),
	}

	page := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"slug":     str(),
			"title":    str(),
			"goal":     str(),
			"sections": map[string]any{"type": "array", "items": section},
		},
		"required": toAny(requiredPageFields),
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"website_goal": str(),
			"audience":     str(),
			"pages":        map[string]any{"type": "array", "items": page},
			"navigation":   map[string]any{"type": "array", "items": str()},
			"global_style": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"primary_color":   str(),
					"secondary_color": str(),
					"accent_color":    str(),
					"font_family":     str(),
					"tone":            str(),
				},
			},
		},
		"required": toAny(RequiredFields),
	}
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// Parse decodes a model response into a Blueprint. It rejects malformed JSON,
// responses missing any required field, and blueprints that violate the
// structural invariants checked by Validate. Generated code is never accepted
// from the response: every page starts ungenerated.
func Parse(raw string) (*Blueprint, error) {
	data := []byte(strings.TrimSpace(stripJSONFence(raw)))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("json parse: %w", err)
	}
	if err := requireKeys(top, RequiredFields, "blueprint"); err != nil {
		return nil, err
	}

	var pages []map[string]json.RawMessage
	if err := json.Unmarshal(top["pages"], &pages); err != nil {
		return nil, fmt.Errorf("json parse pages: %w", err)
	}
	for i, p := range pages {
		if err := requireKeys(p, requiredPageFields, fmt.Sprintf("pages[%d]", i)); err != nil {
			return nil, err
		}
		var sections []map[string]json.RawMessage
		if err := json.Unmarshal(p["sections"], &sections); err != nil {
			return nil, fmt.Errorf("json parse pages[%d].sections: %w", i, err)
		}
		for j, s := range sections {
			if err := requireKeys(s, requiredSectionFields, fmt.Sprintf("pages[%d].sections[%d]", i, j)); err != nil {
				return nil, err
			}
		}
	}

	var bp Blueprint
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&bp); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	for i := range bp.Pages {
		bp.Pages[i].Code = ""
		for j := range bp.Pages[i].Sections {
			bp.Pages[i].Sections[j].Content = ""
		}
	}

	if err := bp.Validate(); err != nil {
		return nil, err
	}
	return &bp, nil
}

func requireKeys(obj map[string]json.RawMessage, keys []string, where string) error {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || string(v) == "null" {
			return fmt.Errorf("%s: missing required field %q", where, k)
		}
	}
	return nil
}

// stripJSONFence removes a surrounding markdown fence such as ```json ... ```.
func stripJSONFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return strings.Trim(raw, "`")
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
