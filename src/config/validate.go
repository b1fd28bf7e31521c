package config

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MissingKeyError reports a required configuration key that has no value.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required config: %s", e.Key)
}

// Required checks the keys every network-facing step needs. It runs before
// any file or network activity so a misconfigured deploy fails with the
// name of the missing key.
func Required(cfg *Config, keys ...string) error {
	for _, k := range keys {
		var v string
		switch k {
		case "api_key":
			v = cfg.APIKey
		case "minified_prepend_url":
			v = strings.Join(cfg.MinifiedPrepend, "")
		case "endpoint":
			v = cfg.Endpoint
		default:
			return fmt.Errorf("unknown config key %q", k)
		}
		if strings.TrimSpace(v) == "" {
			return &MissingKeyError{Key: k}
		}
	}
	return nil
}

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	switch cfg.Pairing {
	case PairingName, PairingPosition:
	case "":
		cfg.Pairing = PairingName
	default:
		errs = append(errs, fmt.Sprintf("pairing: unknown mode %q (supported: %s, %s)", cfg.Pairing, PairingName, PairingPosition))
	}

	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("timeout: must not be negative, got %s", cfg.Timeout))
	}
	if cfg.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("concurrency: must not be negative, got %d", cfg.Concurrency))
	}

	if cfg.HoneybadgerFileURI == "" {
		if _, verr := semver.NewVersion(cfg.JSVersion); verr != nil {
			errs = append(errs, fmt.Sprintf("js_version: %q is not a version: %v", cfg.JSVersion, verr))
		}
	}

	for i, u := range cfg.MinifiedPrepend {
		if strings.TrimSpace(u) == "" {
			errs = append(errs, fmt.Sprintf("minified_prepend_url[%d]: empty", i))
			continue
		}
		if !strings.HasSuffix(u, "/") && !strings.HasSuffix(u, "}") {
			warnings = append(warnings, fmt.Sprintf("minified_prepend_url[%d]: %q has no trailing slash; bundle paths are appended verbatim", i, u))
		}
	}

	for i, f := range cfg.AdditionalFiles {
		if strings.ContainsAny(f, "/\\") {
			errs = append(errs, fmt.Sprintf("additional_files[%d]: %q must be a name fragment, not a path", i, f))
		}
	}

	if cfg.ServerAPIKey != "" && cfg.ServerAPIKey == cfg.APIKey {
		warnings = append(warnings, "server_api_key: same value as api_key")
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}
