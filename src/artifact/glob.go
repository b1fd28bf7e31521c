package artifact

import (
	"path"
	"strings"
)

// MatchGlob matches a glob pattern against a forward-slash path.
// Beyond path.Match it supports "**" (zero or more path segments) and
// brace alternation ("{a,b}*.js"). Braces nest; a backslash escapes the
// next character. A one-element set "{a}" matches its element.
func MatchGlob(pattern, name string) bool {
	return compileGlob(pattern).match(name)
}

// glob is a brace-expanded pattern: it matches when any alternative does.
type glob struct {
	alts []string
}

func compileGlob(pattern string) glob {
	return glob{alts: expandBraces(pattern)}
}

func (g glob) match(name string) bool {
	for _, alt := range g.alts {
		if matchGlob(alt, name) {
			return true
		}
	}
	return false
}

// expandBraces rewrites the first top-level {…} group into one pattern per
// alternative and recurses, so every returned pattern is brace-free.
func expandBraces(pattern string) []string {
	start, end, ok := findBraceGroup(pattern)
	if !ok {
		return []string{pattern}
	}

	prefix, body, suffix := pattern[:start], pattern[start+1:end], pattern[end+1:]

	var out []string
	for _, alt := range splitAlternatives(body) {
		out = append(out, expandBraces(prefix+alt+suffix)...)
	}
	return out
}

// findBraceGroup locates the first balanced, unescaped brace group.
func findBraceGroup(s string) (start, end int, ok bool) {
	depth := 0
	start = -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return start, i, true
			}
		}
	}
	return 0, 0, false
}

// splitAlternatives splits a brace body on commas outside nested groups.
func splitAlternatives(body string) []string {
	var alts []string
	depth, last := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				alts = append(alts, body[last:i])
				last = i + 1
			}
		}
	}
	return append(alts, body[last:])
}

// matchGlob extends path.Match with support for "**" (zero or more path
// segments). Patterns without "**" delegate directly to path.Match.
func matchGlob(pattern, name string) bool {
	if !strings.Contains(pattern, "**") {
		matched, _ := path.Match(pattern, name)
		return matched
	}

	idx := strings.Index(pattern, "**")
	prefix := pattern[:idx]
	suffix := strings.TrimLeft(pattern[idx+2:], "/")

	if prefix != "" {
		prefix = strings.TrimRight(prefix, "/")
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		name = strings.TrimPrefix(name, prefix)
		name = strings.TrimLeft(name, "/")
	}

	// ** at the end matches everything remaining.
	if suffix == "" {
		return true
	}

	// Try the suffix against every tail: "a/b/c", "b/c", "c".
	parts := strings.Split(name, "/")
	for i := 0; i <= len(parts); i++ {
		tail := strings.Join(parts[i:], "/")
		if matchGlob(suffix, tail) {
			return true
		}
	}

	return false
}

// escapeGlob quotes glob metacharacters so s matches literally.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '*', '?', '[', ']', '{', '}', ',':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
