package honeybadger

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// SourceMapUpload is one multipart submission to the source map endpoint.
type SourceMapUpload struct {
	APIKey      string
	Revision    string
	MinifiedURL string // URL the bundle is served from in production
	MapFile     string // local path, sent as source_map
	BundleFile  string // local path, sent as minified_file
}

// UploadSourceMap posts a bundle and its source map. The body is streamed
// from disk; both files are closed before the call returns.
func (c *Client) UploadSourceMap(ctx context.Context, u SourceMapUpload) error {
	mapFile, err := os.Open(u.MapFile)
	if err != nil {
		return fmt.Errorf("opening source map: %w", err)
	}
	bundleFile, err := os.Open(u.BundleFile)
	if err != nil {
		mapFile.Close()
		return fmt.Errorf("opening bundle: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer mapFile.Close()
		defer bundleFile.Close()
		pw.CloseWithError(writeSourceMapForm(mw, u, mapFile, bundleFile))
	}()

	// The transport closes the body on every path; closing the reader here
	// as well unblocks the writer if the server answered before reading it all.
	defer func() {
		pr.Close()
		<-done
	}()

	url := c.BaseURL + sourceMapsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	log.WithFields(log.Fields{
		"minified_url": u.MinifiedURL,
		"bundle":       u.BundleFile,
		"map":          u.MapFile,
	}).Debug("uploading source map")

	return c.do(req)
}

func writeSourceMapForm(mw *multipart.Writer, u SourceMapUpload, mapFile, bundleFile io.Reader) error {
	fields := []struct{ name, value string }{
		{"api_key", u.APIKey},
		{"revision", u.Revision},
		{"minified_url", u.MinifiedURL},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}

	files := []struct {
		field, name string
		r           io.Reader
	}{
		{"source_map", filepath.Base(u.MapFile), mapFile},
		{"minified_file", filepath.Base(u.BundleFile), bundleFile},
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.r); err != nil {
			return fmt.Errorf("reading %s: %w", f.name, err)
		}
	}
	return mw.Close()
}
