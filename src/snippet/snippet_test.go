package snippet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testData = Data{
	APIKey:      "pub-key",
	Environment: "staging",
	Revision:    "abc123",
	JSFile:      "//js.honeybadger.io/v0.5/honeybadger.min.js",
}

func TestRenderDefault(t *testing.T) {
	tmpl, err := LoadTemplate("")
	require.NoError(t, err)

	out, err := Render(tmpl, testData)
	require.NoError(t, err)

	assert.Equal(t,
		`<script src="//js.honeybadger.io/v0.5/honeybadger.min.js" type="text/javascript" data-apiKey="pub-key" data-environment="staging" data-revision="abc123"></script>`,
		out)
}

func TestRenderDefaultEnvironment(t *testing.T) {
	d := testData
	d.Environment = ""

	out, err := Render(defaultTemplate, d)
	require.NoError(t, err)
	assert.Contains(t, out, `data-environment="production"`)
}

func TestRenderEscapesAttributes(t *testing.T) {
	d := testData
	d.APIKey = `a"b<c`

	out, err := Render(defaultTemplate, d)
	require.NoError(t, err)
	assert.Contains(t, out, `data-apiKey="a&#34;b&lt;c"`)
}

func TestRenderCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippet.html")
	require.NoError(t, os.WriteFile(path, []byte(`<!-- {{ .Revision | trunc 7 | upper }} {{ .Environment }} -->`+"\n"), 0o644))

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)

	d := testData
	d.Revision = "abcdef0123456"
	out, err := Render(tmpl, d)
	require.NoError(t, err)
	assert.Equal(t, "<!-- ABCDEF0 staging -->", out)
}

func TestRenderErrors(t *testing.T) {
	_, err := Render("{{ .Missing ", testData)
	assert.Error(t, err)

	_, err = Render("{{ .Nope }}", testData)
	assert.Error(t, err)

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "absent.html"))
	assert.Error(t, err)
}

func TestInject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	html := "<html><head>" + Marker + "</head><body>" + Marker + "</body></html>"
	require.NoError(t, os.WriteFile(path, []byte(html), 0o600))

	found, err := Inject(path, "<script></script>")
	require.NoError(t, err)
	assert.True(t, found)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html><head><script></script></head><body>"+Marker+"</body></html>", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInjectMissingMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	html := "<html><head></head></html>"
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))

	found, err := Inject(path, "<script></script>")
	require.NoError(t, err)
	assert.False(t, found)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, html, string(got))
}

func TestInjectMissingFile(t *testing.T) {
	_, err := Inject(filepath.Join(t.TempDir(), "index.html"), "x")
	assert.Error(t, err)
}
