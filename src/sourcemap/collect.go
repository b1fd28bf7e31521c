package sourcemap

import (
	log "github.com/sirupsen/logrus"

	"github.com/sofmeright/hbdeploy/src/artifact"
)

// Collect selects the bundles and maps named by fragments from files and
// pairs them.
func Collect(files []string, fragments []string, mode artifact.PairMode) ([]artifact.Pair, error) {
	pattern := artifact.NewPattern(fragments...)
	bundles, maps := artifact.Select(files, pattern)

	log.WithFields(log.Fields{
		"pattern": pattern.Expr(artifact.BundleSuffix),
		"bundles": len(bundles),
		"maps":    len(maps),
		"pairing": mode,
	}).Debug("selected artifacts")

	return artifact.PairFiles(bundles, maps, mode)
}
