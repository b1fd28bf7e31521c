package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".hbdeploy.yml"

// Defaults applied before the config file is decoded.
const (
	DefaultEndpoint    = "https://api.honeybadger.io"
	DefaultEnvironment = "production"
	DefaultJSVersion   = "0.5"
	DefaultIndexFile   = "index.html"
	DefaultTimeout     = 30 * time.Second
)

// Pairing modes for bundle/source map association.
const (
	PairingName     = "name"
	PairingPosition = "position"
)

// Config is the top-level hbdeploy configuration.
type Config struct {
	APIKey       string `yaml:"api_key"`        // client-side key, embedded in the snippet
	ServerAPIKey string `yaml:"server_api_key"` // optional; used for uploads and deploys when set
	Endpoint     string `yaml:"endpoint"`

	Environment     string     `yaml:"environment"`
	ProjectName     string     `yaml:"project_name"`
	AdditionalFiles []string   `yaml:"additional_files"`
	MinifiedPrepend StringList `yaml:"minified_prepend_url"`

	HoneybadgerFileURI string `yaml:"honeybadger_file_uri"`
	JSVersion          string `yaml:"js_version"`
	IndexFile          string `yaml:"index_file"`
	SnippetTemplate    string `yaml:"snippet_template"` // path to a custom snippet template

	Username   string `yaml:"username"`
	Repository string `yaml:"repository"`

	Pairing           string        `yaml:"pairing"`
	DetectCompression bool          `yaml:"detect_compression"`
	KeepDecompressed  bool          `yaml:"keep_decompressed"`
	Timeout           time.Duration `yaml:"timeout"`
	Concurrency       int           `yaml:"concurrency"` // 0 = unlimited
	DryRun            bool          `yaml:"dry_run"`
}

// Load reads configuration from a YAML or TOML file.
// If path is empty, it tries the default file.
// Returns defaults (plus environment credentials) if the file doesn't exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// no config file; defaults + env only
	default:
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// decode unmarshals YAML directly. TOML is decoded into a generic map and
// re-encoded as YAML so both formats share one set of struct tags and the
// StringList scalar-or-list handling.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return err
		}
		converted, err := yaml.Marshal(raw)
		if err != nil {
			return err
		}
		data = converted
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv fills credentials from the environment when the file leaves them empty.
func applyEnv(cfg *Config) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("HONEYBADGER_API_KEY")
	}
	if cfg.ServerAPIKey == "" {
		cfg.ServerAPIKey = os.Getenv("HONEYBADGER_SERVER_API_KEY")
	}
}

func defaults() *Config {
	return &Config{
		Endpoint:  DefaultEndpoint,
		JSVersion: DefaultJSVersion,
		IndexFile: DefaultIndexFile,
		Pairing:   PairingName,
		Timeout:   DefaultTimeout,
	}
}
