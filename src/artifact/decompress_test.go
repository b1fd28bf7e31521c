package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestResolveUncompressedIsIdentity(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.js", []byte("console.log(1)"))

	got, cleanup, err := Decompressor{}.Resolve(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	require.NoError(t, cleanup())

	// cleanup of an identity resolve must not touch the input
	assert.FileExists(t, path)
}

func TestResolveCompressedRoundTrip(t *testing.T) {
	original := []byte(`{"version":3,"sources":["app.ts"],"mappings":"AAAA"}`)
	dir := t.TempDir()
	path := writeFile(t, dir, "app.js.map", gzipBytes(t, original))
	compressed, err := os.ReadFile(path)
	require.NoError(t, err)

	got, cleanup, err := Decompressor{}.Resolve(path, true)
	require.NoError(t, err)
	assert.Equal(t, path+DecompressedSuffix, got)

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, original, content)

	untouched, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, compressed, untouched)

	require.NoError(t, cleanup())
	assert.NoFileExists(t, got)
	require.NoError(t, cleanup(), "second cleanup is a no-op")
}

func TestResolveCompressedInvalidGzip(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.js", []byte("not gzip"))

	_, _, err := Decompressor{}.Resolve(path, true)
	require.Error(t, err)
	assert.NoFileExists(t, path+DecompressedSuffix)
}

func TestResolveSniff(t *testing.T) {
	dir := t.TempDir()
	plain := writeFile(t, dir, "vendor.js", []byte("var a=1"))
	gz := writeFile(t, dir, "app.js", gzipBytes(t, []byte("var b=2")))

	d := Decompressor{Sniff: true}

	got, _, err := d.Resolve(plain, false)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	got, cleanup, err := d.Resolve(gz, false)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, gz+DecompressedSuffix, got)
	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "var b=2", string(content))
}

func TestIsGzipShortFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tiny.js", []byte("x"))
	gz, err := IsGzip(path)
	require.NoError(t, err)
	assert.False(t, gz)

	_, err = IsGzip(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}
