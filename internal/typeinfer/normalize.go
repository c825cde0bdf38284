package typeinfer

import (
	"regexp"
	"strings"
)

var (
	importPrefix    = regexp.MustCompile(`import\("[^"]*"\)\.`)
	qualifiedPrefix = regexp.MustCompile(`\b(?:[A-Za-z_$][\w$]*\.)+([A-Za-z_$][\w$]*)`)
)

// Normalize cleans an oracle type string: import("...") and qualified
// module prefixes are dropped and boolean literal members collapse to
// boolean.
func Normalize(t string) string {
	t = strings.TrimSpace(t)
	t = importPrefix.ReplaceAllString(t, "")
	t = qualifiedPrefix.ReplaceAllString(t, "$1")
	return collapseBooleans(t)
}

// collapseBooleans rewrites true and false members of a top-level union
// to boolean.
func collapseBooleans(t string) string {
	parts := splitUnion(t)
	out := make([]string, 0, len(parts))
	hasBool := false
	for _, p := range parts {
		if p == "true" || p == "false" || p == "boolean" {
			if !hasBool {
				out = append(out, "boolean")
				hasBool = true
			}
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, " | ")
}
