// Package snippet renders the Honeybadger loader snippet and swaps it into
// the built index HTML in place of a marker the build put in <head>.
package snippet

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Marker is the placeholder contributed to the head section at build time
// and replaced with the rendered snippet after the build.
const Marker = `<meta name="honeybadger"/>`

//go:embed honeybadger.html
var defaultTemplate string

// Data is what a snippet template can reference.
type Data struct {
	APIKey      string
	Environment string
	Revision    string
	JSFile      string
}

// LoadTemplate returns the template at path, or the built-in one when path
// is empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return defaultTemplate, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading snippet template: %w", err)
	}
	return string(b), nil
}

// Render executes tmpl with data. Sprig functions are available.
func Render(tmpl string, data Data) (string, error) {
	t, err := template.New("snippet").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parsing snippet template: %w", err)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering snippet: %w", err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Inject replaces the first Marker in the HTML file at path with rendered.
// It reports whether the marker was found; the file is only rewritten when
// it was.
func Inject(path, rendered string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	html := string(data)
	if !strings.Contains(html, Marker) {
		return false, nil
	}
	html = strings.Replace(html, Marker, rendered, 1)

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(html), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
