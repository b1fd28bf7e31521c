package artifact

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/h2non/filetype"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
)

// DecompressedSuffix is appended to a compressed file's name to form the
// sibling that holds its decompressed content.
const DecompressedSuffix = ".unzipped"

// sniffLen covers the longest magic number filetype checks.
const sniffLen = 262

// Decompressor hands the uploader plain content for files a prior pipeline
// stage already gzipped in place.
type Decompressor struct {
	// Sniff treats a file not flagged as compressed as gzip anyway when its
	// magic bytes say so.
	Sniff bool
}

// Resolve returns the path to upload for path. Compressed files are
// streamed through a gzip reader into path+DecompressedSuffix, leaving the
// original untouched; anything else is returned unchanged. The returned
// cleanup removes the temporary file and is a no-op when none was created.
func (d Decompressor) Resolve(path string, compressed bool) (string, func() error, error) {
	if !compressed && d.Sniff {
		gz, err := IsGzip(path)
		if err != nil {
			return "", noop, err
		}
		compressed = gz
	}
	if !compressed {
		return path, noop, nil
	}

	dst := path + DecompressedSuffix
	if err := decompressFile(path, dst); err != nil {
		return "", noop, fmt.Errorf("decompressing %s: %w", path, err)
	}
	log.WithField("file", path).Debug("decompressed for upload")

	return dst, func() error {
		if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}, nil
}

func noop() error { return nil }

// IsGzip reports whether the file at path starts with the gzip magic number.
func IsGzip(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "gz"), nil
}

func decompressFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	_, err = io.Copy(out, zr)
	return err
}
