package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/hbdeploy/src/pipeline"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAMLScalarPrepend(t *testing.T) {
	t.Setenv("HONEYBADGER_API_KEY", "")
	path := writeConfig(t, "hb.yml", `
api_key: hbp_client
minified_prepend_url: https://cdn.example.com/
additional_files: [chunk]
timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hbp_client", cfg.APIKey)
	assert.Equal(t, StringList{"https://cdn.example.com/"}, cfg.MinifiedPrepend)
	assert.Equal(t, []string{"chunk"}, cfg.AdditionalFiles)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, PairingName, cfg.Pairing)
}

func TestLoadYAMLListPrepend(t *testing.T) {
	path := writeConfig(t, "hb.yml", `
minified_prepend_url:
  - https://cdn1/
  - https://cdn2/
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StringList{"https://cdn1/", "https://cdn2/"}, cfg.MinifiedPrepend)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestLoadYAMLRejectsMapPrepend(t *testing.T) {
	path := writeConfig(t, "hb.yml", "minified_prepend_url:\n  a: b\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "hb.toml", `
api_key = "hbp_toml"
minified_prepend_url = ["https://cdn1/", "https://cdn2/"]
pairing = "position"
concurrency = 4
timeout = "1m"
keep_decompressed = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hbp_toml", cfg.APIKey)
	assert.Equal(t, StringList{"https://cdn1/", "https://cdn2/"}, cfg.MinifiedPrepend)
	assert.Equal(t, PairingPosition, cfg.Pairing)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.True(t, cfg.KeepDecompressed)
}

func TestLoadEnvCredentials(t *testing.T) {
	t.Setenv("HONEYBADGER_API_KEY", "from_env")
	t.Setenv("HONEYBADGER_SERVER_API_KEY", "server_env")

	path := writeConfig(t, "hb.yml", "minified_prepend_url: https://cdn/\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.APIKey)
	assert.Equal(t, "server_env", cfg.ServerAPIKey)

	path = writeConfig(t, "hb.yml", "api_key: from_file\n")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.APIKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestRequired(t *testing.T) {
	cfg := defaults()
	err := Required(cfg, "api_key", "minified_prepend_url")

	var missing *MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "api_key", missing.Key)
	assert.Contains(t, err.Error(), "api_key")

	cfg.APIKey = "k"
	err = Required(cfg, "api_key", "minified_prepend_url")
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "minified_prepend_url", missing.Key)

	cfg.MinifiedPrepend = StringList{"https://cdn/"}
	assert.NoError(t, Required(cfg, "api_key", "minified_prepend_url"))
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	cfg.MinifiedPrepend = StringList{"https://cdn"}
	warnings, err := Validate(cfg)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)

	cfg.Pairing = "content"
	cfg.Concurrency = -1
	cfg.JSVersion = "latest"
	cfg.AdditionalFiles = []string{"assets/chunk"}
	_, err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pairing")
	assert.Contains(t, err.Error(), "concurrency")
	assert.Contains(t, err.Error(), "js_version")
	assert.Contains(t, err.Error(), "additional_files[0]")
}

func completedContext() *pipeline.Context {
	return &pipeline.Context{
		DistDir:     "dist",
		RevisionKey: "abc123",
		ProjectName: "web",
		Repository:  "https://github.com/acme/web",
	}
}

func TestResolve(t *testing.T) {
	t.Setenv("CDN_HOST", "cdn.example.com")
	cfg := defaults()
	cfg.APIKey = "client"
	cfg.ServerAPIKey = "server"
	cfg.AdditionalFiles = []string{"chunk", "vendor", ""}
	cfg.MinifiedPrepend = StringList{"https://{env:CDN_HOST}/{revision}/", "https://static/{project}/{unknown}/"}

	r, err := Resolve(cfg, completedContext())
	require.NoError(t, err)

	assert.Equal(t, "client", r.APIKey)
	assert.Equal(t, "server", r.UploadKey)
	assert.Equal(t, DefaultEnvironment, r.Environment)
	assert.Equal(t, []string{"web", "vendor", "chunk"}, r.Fragments)
	assert.Equal(t, []string{
		"https://cdn.example.com/abc123/",
		"https://static/web/{unknown}/",
	}, r.Destinations)
	assert.Equal(t, "//js.honeybadger.io/v0.5/honeybadger.min.js", r.JSFile)
	assert.Equal(t, filepath.Join("dist", "index.html"), r.IndexPath)
	assert.Equal(t, "https://github.com/acme/web", r.Repository)
}

func TestResolveEnvironmentPrecedence(t *testing.T) {
	cfg := defaults()
	cfg.APIKey = "k"
	cfg.MinifiedPrepend = StringList{"https://cdn/"}

	pc := completedContext()
	pc.Environment = "development"
	r, err := Resolve(cfg, pc)
	require.NoError(t, err)
	assert.Equal(t, "development", r.Environment)
	assert.Equal(t, "k", r.UploadKey)

	cfg.Environment = "staging"
	r, err = Resolve(cfg, pc)
	require.NoError(t, err)
	assert.Equal(t, "staging", r.Environment)
}

func TestResolveJSFile(t *testing.T) {
	cfg := defaults()
	cfg.APIKey = "k"
	cfg.MinifiedPrepend = StringList{"https://cdn/"}

	cfg.JSVersion = "1.2.3"
	r, err := Resolve(cfg, completedContext())
	require.NoError(t, err)
	assert.Equal(t, "//js.honeybadger.io/v1.2/honeybadger.min.js", r.JSFile)

	cfg.HoneybadgerFileURI = "/assets/honeybadger.js"
	r, err = Resolve(cfg, completedContext())
	require.NoError(t, err)
	assert.Equal(t, "/assets/honeybadger.js", r.JSFile)
}

func TestResolveMissing(t *testing.T) {
	cfg := defaults()
	_, err := Resolve(cfg, completedContext())
	var missing *MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "api_key", missing.Key)

	cfg.APIKey = "k"
	cfg.MinifiedPrepend = StringList{"https://cdn/"}
	pc := completedContext()
	pc.RevisionKey = ""
	_, err = Resolve(cfg, pc)
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "revision_key", missing.Key)
}

func TestExpandVars(t *testing.T) {
	vars := map[string]string{"revision": "r1"}
	assert.Equal(t, "a/r1/b", ExpandVars("a/{revision}/b", vars))
	assert.Equal(t, "{nope}", ExpandVars("{nope}", vars))
	assert.Equal(t, "open{revision", ExpandVars("open{revision", vars))
	assert.Equal(t, "plain", ExpandVars("plain", nil))
}
