package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/sofmeright/hbdeploy/src/pipeline"
)

// VendorFragment is always part of the bundle name pattern.
const VendorFragment = "vendor"

// Resolved is the immutable per-invocation view of Config merged with the
// pipeline context. Every component reads from it; nothing reads Config or
// the environment after resolution.
type Resolved struct {
	APIKey    string // embedded in the snippet
	UploadKey string // server key when set, else APIKey

	Endpoint     string
	Environment  string
	Revision     string
	ProjectName  string
	Fragments    []string // project name, vendor, additional files
	Destinations []string

	JSFile          string
	IndexPath       string
	SnippetTemplate string

	Username   string
	Repository string

	Pairing           string
	DetectCompression bool
	KeepDecompressed  bool
	Timeout           time.Duration
	Concurrency       int
	DryRun            bool
}

// Resolve merges cfg with the completed pipeline context. It fails with a
// *MissingKeyError when a required value is absent.
func Resolve(cfg *Config, pc *pipeline.Context) (*Resolved, error) {
	if err := Required(cfg, "api_key", "minified_prepend_url"); err != nil {
		return nil, err
	}

	r := &Resolved{
		APIKey:            cfg.APIKey,
		UploadKey:         cfg.APIKey,
		Endpoint:          strings.TrimRight(cfg.Endpoint, "/"),
		Revision:          pc.RevisionKey,
		ProjectName:       firstNonEmpty(cfg.ProjectName, pc.ProjectName),
		Username:          cfg.Username,
		Repository:        firstNonEmpty(cfg.Repository, pc.Repository),
		SnippetTemplate:   cfg.SnippetTemplate,
		Pairing:           cfg.Pairing,
		DetectCompression: cfg.DetectCompression,
		KeepDecompressed:  cfg.KeepDecompressed,
		Timeout:           cfg.Timeout,
		Concurrency:       cfg.Concurrency,
		DryRun:            cfg.DryRun,
	}
	if cfg.ServerAPIKey != "" {
		r.UploadKey = cfg.ServerAPIKey
	}
	if r.Endpoint == "" {
		r.Endpoint = DefaultEndpoint
	}
	if r.Pairing == "" {
		r.Pairing = PairingName
	}

	if r.Revision == "" {
		return nil, &MissingKeyError{Key: "revision_key"}
	}

	r.Environment = firstNonEmpty(cfg.Environment, pc.Environment, DefaultEnvironment)

	r.Fragments = fragments(r.ProjectName, cfg.AdditionalFiles)

	vars := map[string]string{
		"revision":    r.Revision,
		"environment": r.Environment,
		"project":     r.ProjectName,
	}
	for _, u := range cfg.MinifiedPrepend {
		r.Destinations = append(r.Destinations, ExpandVars(u, vars))
	}

	jsFile, err := jsFileURI(cfg)
	if err != nil {
		return nil, err
	}
	r.JSFile = jsFile

	index := cfg.IndexFile
	if index == "" {
		index = DefaultIndexFile
	}
	r.IndexPath = filepath.Join(pc.DistDir, index)

	return r, nil
}

// fragments builds the ordered, de-duplicated name fragment set.
func fragments(project string, extra []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range append([]string{project, VendorFragment}, extra...) {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// jsFileURI returns the honeybadger.js script URL: the explicit override,
// or the CDN path for js_version's major.minor.
func jsFileURI(cfg *Config) (string, error) {
	if cfg.HoneybadgerFileURI != "" {
		return cfg.HoneybadgerFileURI, nil
	}
	raw := cfg.JSVersion
	if raw == "" {
		raw = DefaultJSVersion
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return "", fmt.Errorf("js_version %q: %w", raw, err)
	}
	return fmt.Sprintf("//js.honeybadger.io/v%d.%d/honeybadger.min.js", v.Major(), v.Minor()), nil
}

// ExpandVars replaces {name} placeholders from vars and {env:NAME} from
// the environment. Unknown placeholders are left intact.
//
//	"https://cdn.example.com/{revision}/" → "https://cdn.example.com/abc123/"
//	"{env:CDN_HOST}/assets/"              → "https://cdn.example.com/assets/"
func ExpandVars(s string, vars map[string]string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "{")
		if start == -1 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.Index(s[start:], "}")
		if end == -1 {
			b.WriteString(s)
			return b.String()
		}
		end += start

		name := s[start+1 : end]
		b.WriteString(s[:start])
		switch {
		case strings.HasPrefix(name, "env:"):
			b.WriteString(os.Getenv(name[4:]))
		default:
			if val, ok := vars[name]; ok {
				b.WriteString(val)
			} else {
				b.WriteString(s[start : end+1])
			}
		}
		s = s[end+1:]
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
