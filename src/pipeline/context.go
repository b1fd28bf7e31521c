// Package pipeline models the deployment context handed to hbdeploy by the
// surrounding build pipeline: where the build output lives, which files it
// produced, which of those a prior stage gzipped, and which revision is
// being deployed.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultDistDir = "dist"

// Context is the deployment context for one invocation. It is completed
// once and read-only afterwards.
type Context struct {
	ProjectDir   string   `yaml:"project_dir"`
	DistDir      string   `yaml:"dist_dir"`
	DistFiles    []string `yaml:"dist_files"`    // relative to DistDir, upstream order
	GzippedFiles []string `yaml:"gzipped_files"` // subset of DistFiles already gzip-compressed
	RevisionKey  string   `yaml:"revision_key"`
	ProjectName  string   `yaml:"project_name"`
	Environment  string   `yaml:"environment"` // build environment
	Repository   string   `yaml:"repository"`

	gzipped map[string]bool
}

// LoadContext reads a context manifest. JSON manifests are accepted since
// YAML is a superset. An empty path yields an empty context.
func LoadContext(path string) (*Context, error) {
	c := &Context{}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing context %s: %w", path, err)
	}
	return c, nil
}

// Complete fills everything the manifest and flags left empty: the dist
// file listing from disk, the revision and repository from git, and the
// project name from package.json.
func (c *Context) Complete() error {
	if c.ProjectDir == "" {
		c.ProjectDir = "."
	}
	if c.DistDir == "" {
		c.DistDir = filepath.Join(c.ProjectDir, defaultDistDir)
	}

	if len(c.DistFiles) == 0 {
		files, err := CollectFiles(c.DistDir)
		if err != nil {
			return fmt.Errorf("listing %s: %w", c.DistDir, err)
		}
		c.DistFiles = files
		log.WithField("count", len(files)).Debug("collected dist files from disk")
	}

	if c.RevisionKey == "" || c.Repository == "" {
		info, err := DetectRepo(c.ProjectDir)
		if err != nil {
			log.WithError(err).Debug("git metadata unavailable")
		} else {
			if c.RevisionKey == "" {
				c.RevisionKey = info.Revision
			}
			if c.Repository == "" {
				c.Repository = info.RemoteURL
			}
		}
	}

	if c.ProjectName == "" {
		c.ProjectName = DetectProjectName(c.ProjectDir)
	}

	c.gzipped = make(map[string]bool, len(c.GzippedFiles))
	for _, g := range c.GzippedFiles {
		c.gzipped[c.normalize(g)] = true
	}
	return nil
}

// IsGzipped reports whether a dist file was compressed by a prior stage.
func (c *Context) IsGzipped(rel string) bool {
	if c.gzipped == nil {
		for _, g := range c.GzippedFiles {
			if c.normalize(g) == c.normalize(rel) {
				return true
			}
		}
		return false
	}
	return c.gzipped[c.normalize(rel)]
}

// AbsPath joins a dist-relative path onto the dist directory.
func (c *Context) AbsPath(rel string) string {
	return filepath.Join(c.DistDir, filepath.FromSlash(rel))
}

// normalize converts p to a forward-slash path relative to the dist dir.
func (c *Context) normalize(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	if c.DistDir != "" {
		prefix := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(c.DistDir)), "./")
		if prefix != "." {
			p = strings.TrimPrefix(p, prefix+"/")
		}
	}
	return p
}
