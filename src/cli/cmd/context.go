package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofmeright/hbdeploy/src/config"
	"github.com/sofmeright/hbdeploy/src/pipeline"
)

var (
	ctxFile        string
	ctxProjectDir  string
	ctxDistDir     string
	ctxRevision    string
	ctxEnvironment string
	ctxGzipped     []string
)

func addContextFlags(c *cobra.Command) {
	f := c.PersistentFlags()
	f.StringVar(&ctxFile, "context", "", "deploy context file (YAML or JSON)")
	f.StringVar(&ctxProjectDir, "project-dir", "", "project root (default: .)")
	f.StringVar(&ctxDistDir, "dist-dir", "", "build output directory (default: <project-dir>/dist)")
	f.StringVar(&ctxRevision, "revision", "", "revision key (default: git HEAD)")
	f.StringVar(&ctxEnvironment, "build-environment", "", "build environment, used when config sets none")
	f.StringSliceVar(&ctxGzipped, "gzipped", nil, "dist file already gzip-compressed (repeatable)")
}

// deployment is everything a lifecycle step needs, resolved once.
type deployment struct {
	ctx      *pipeline.Context
	resolved *config.Resolved
}

// loadDeployment checks required config before touching the filesystem or
// network, then completes the pipeline context and resolves config.
func loadDeployment() (*deployment, error) {
	if err := config.Required(cfg, "api_key", "minified_prepend_url"); err != nil {
		return nil, err
	}

	pc, err := pipeline.LoadContext(ctxFile)
	if err != nil {
		return nil, err
	}
	if ctxProjectDir != "" {
		pc.ProjectDir = ctxProjectDir
	}
	if ctxDistDir != "" {
		pc.DistDir = ctxDistDir
	}
	if ctxRevision != "" {
		pc.RevisionKey = ctxRevision
	}
	if ctxEnvironment != "" {
		pc.Environment = ctxEnvironment
	}
	if len(ctxGzipped) > 0 {
		pc.GzippedFiles = append(pc.GzippedFiles, ctxGzipped...)
	}

	if err := pc.Complete(); err != nil {
		return nil, fmt.Errorf("deploy context: %w", err)
	}

	r, err := config.Resolve(cfg, pc)
	if err != nil {
		return nil, err
	}
	return &deployment{ctx: pc, resolved: r}, nil
}
