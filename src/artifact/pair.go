package artifact

import (
	"fmt"
	"regexp"
	"strings"
)

// Pair is a bundle and the source map that describes it, both as
// dist-relative paths.
type Pair struct {
	Bundle string
	Map    string
}

// PairMode selects how bundles and maps are associated.
type PairMode int

const (
	// PairByName matches files on their shared stem, tolerating differing
	// content fingerprints. Unmatched or ambiguous files are an error.
	PairByName PairMode = iota
	// PairByPosition zips the two selections index by index. It relies on
	// the build listing both members of each pair in the same relative order.
	PairByPosition
)

func (m PairMode) String() string {
	switch m {
	case PairByName:
		return "name"
	case PairByPosition:
		return "position"
	default:
		return fmt.Sprintf("PairMode(%d)", int(m))
	}
}

// ParsePairMode converts a config value to a PairMode.
func ParsePairMode(s string) (PairMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return PairByName, nil
	case "position":
		return PairByPosition, nil
	}
	return 0, fmt.Errorf("unknown pairing mode %q", s)
}

// MismatchError reports bundles and maps that could not be paired.
type MismatchError struct {
	Bundles   []string // bundles without a map
	Maps      []string // maps without a bundle
	Ambiguous []string // bundles with more than one candidate map
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.Bundles) > 0 {
		parts = append(parts, fmt.Sprintf("bundles without source map: %s", strings.Join(e.Bundles, ", ")))
	}
	if len(e.Maps) > 0 {
		parts = append(parts, fmt.Sprintf("source maps without bundle: %s", strings.Join(e.Maps, ", ")))
	}
	if len(e.Ambiguous) > 0 {
		parts = append(parts, fmt.Sprintf("bundles with several candidate maps: %s", strings.Join(e.Ambiguous, ", ")))
	}
	return "bundle/source map mismatch: " + strings.Join(parts, "; ")
}

// PairFiles associates each bundle with its source map. Output follows the
// order of bundles.
func PairFiles(bundles, maps []string, mode PairMode) ([]Pair, error) {
	switch mode {
	case PairByPosition:
		return pairByPosition(bundles, maps)
	case PairByName:
		return pairByName(bundles, maps)
	}
	return nil, fmt.Errorf("unknown pairing mode %v", mode)
}

func pairByPosition(bundles, maps []string) ([]Pair, error) {
	if len(bundles) != len(maps) {
		err := &MismatchError{}
		if len(bundles) > len(maps) {
			err.Bundles = append(err.Bundles, bundles[len(maps):]...)
		} else {
			err.Maps = append(err.Maps, maps[len(bundles):]...)
		}
		return nil, err
	}

	pairs := make([]Pair, len(bundles))
	for i := range bundles {
		pairs[i] = Pair{Bundle: bundles[i], Map: maps[i]}
	}
	return pairs, nil
}

// fingerprint matches the content hash asset pipelines append to names
// ("app-1a2b3c4d.js").
var fingerprint = regexp.MustCompile(`-[0-9a-fA-F]{7,}$`)

func bundleStem(p string) string {
	return strings.TrimSuffix(p, BundleSuffix)
}

// mapStem accepts both "app.js.map" and "app.map".
func mapStem(p string) string {
	return strings.TrimSuffix(strings.TrimSuffix(p, MapSuffix), BundleSuffix)
}

func looseStem(stem string) string {
	return fingerprint.ReplaceAllString(stem, "")
}

func pairByName(bundles, maps []string) ([]Pair, error) {
	exact := make(map[string][]int)
	loose := make(map[string][]int)
	for i, m := range maps {
		s := mapStem(m)
		exact[s] = append(exact[s], i)
		loose[looseStem(s)] = append(loose[looseStem(s)], i)
	}

	used := make([]bool, len(maps))
	chosen := make([]int, len(bundles))
	for i := range chosen {
		chosen[i] = -1
	}

	mismatch := &MismatchError{}
	ambiguous := make(map[int]bool)

	// Exact stems first so a fingerprint-tolerant match can never take a
	// map that belongs to another bundle by name.
	for bi, b := range bundles {
		free := unused(exact[bundleStem(b)], used)
		switch len(free) {
		case 0:
		case 1:
			chosen[bi] = free[0]
			used[free[0]] = true
		default:
			ambiguous[bi] = true
		}
	}

	for bi, b := range bundles {
		if chosen[bi] >= 0 || ambiguous[bi] {
			continue
		}
		free := unused(loose[looseStem(bundleStem(b))], used)
		switch len(free) {
		case 0:
			mismatch.Bundles = append(mismatch.Bundles, b)
		case 1:
			chosen[bi] = free[0]
			used[free[0]] = true
		default:
			ambiguous[bi] = true
		}
	}

	for bi, b := range bundles {
		if ambiguous[bi] {
			mismatch.Ambiguous = append(mismatch.Ambiguous, b)
		}
	}
	for mi, m := range maps {
		if !used[mi] {
			mismatch.Maps = append(mismatch.Maps, m)
		}
	}

	if len(mismatch.Bundles) > 0 || len(mismatch.Maps) > 0 || len(mismatch.Ambiguous) > 0 {
		return nil, mismatch
	}

	pairs := make([]Pair, len(bundles))
	for bi, b := range bundles {
		pairs[bi] = Pair{Bundle: b, Map: maps[chosen[bi]]}
	}
	return pairs, nil
}

func unused(idx []int, used []bool) []int {
	var free []int
	for _, i := range idx {
		if !used[i] {
			free = append(free, i)
		}
	}
	return free
}
