package generator

import (
	"regexp"
	"strings"
)

// fenceRe matches a triple-backtick marker with an optional language tag.
// Tags are matched longest first so that "```typescript" is not left as
// "ypescript" after a shorter match.
var fenceRe = regexp.MustCompile("```(?:typescript|javascript|react|json|tsx|jsx|ts|js)?")

// StripCodeFences removes every code-fence marker from generated source and
// trims the result.
func StripCodeFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}
