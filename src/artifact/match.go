// Package artifact selects the JavaScript bundles and source maps to upload
// from a build's output listing, pairs them, and prepares their on-disk
// form for upload.
package artifact

import (
	"path/filepath"
	"strings"
)

// Suffixes of the two artifact kinds.
const (
	BundleSuffix = ".js"
	MapSuffix    = ".map"
)

// Pattern is the set of bundle name fragments for one invocation:
// typically the project name, "vendor" and any extra bundle names.
type Pattern struct {
	fragments []string
}

// NewPattern builds a pattern from name fragments. Empty and duplicate
// fragments are dropped; order is kept.
func NewPattern(fragments ...string) Pattern {
	seen := make(map[string]bool, len(fragments))
	var out []string
	for _, f := range fragments {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return Pattern{fragments: out}
}

// Fragments returns the pattern's fragments in order.
func (p Pattern) Fragments() []string {
	return append([]string(nil), p.fragments...)
}

// Empty reports whether the pattern has no fragments and so matches nothing.
func (p Pattern) Empty() bool { return len(p.fragments) == 0 }

// Expr returns the glob for files with the given suffix whose base name
// starts with one of the fragments, e.g. "**/{app,vendor}*.js".
func (p Pattern) Expr(suffix string) string {
	quoted := make([]string, len(p.fragments))
	for i, f := range p.fragments {
		quoted[i] = escapeGlob(f)
	}
	return "**/{" + strings.Join(quoted, ",") + "}*" + escapeGlob(suffix)
}

// Select filters files twice with the same pattern: once for bundles and
// once for source maps. Both results keep the relative order of files.
// No match is not an error.
func Select(files []string, p Pattern) (bundles, maps []string) {
	if p.Empty() {
		return nil, nil
	}

	jsGlob := compileGlob(p.Expr(BundleSuffix))
	mapGlob := compileGlob(p.Expr(MapSuffix))

	for _, f := range files {
		norm := strings.TrimPrefix(filepath.ToSlash(f), "./")
		switch {
		case jsGlob.match(norm):
			bundles = append(bundles, f)
		case mapGlob.match(norm):
			maps = append(maps, f)
		}
	}
	return bundles, maps
}
