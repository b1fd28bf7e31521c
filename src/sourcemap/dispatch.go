package sourcemap

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sofmeright/hbdeploy/src/artifact"
	"github.com/sofmeright/hbdeploy/src/honeybadger"
)

// Uploader submits one bundle/source map pair.
type Uploader interface {
	UploadSourceMap(ctx context.Context, u honeybadger.SourceMapUpload) error
}

// Dispatcher runs the uploads for one invocation.
type Dispatcher struct {
	Uploader Uploader
	APIKey   string
	Revision string

	// Path maps a dist-relative path to a local file path.
	Path func(rel string) string
	// Compressed reports whether a dist-relative path was gzipped by a
	// prior stage.
	Compressed func(rel string) bool

	Decompressor     artifact.Decompressor
	KeepDecompressed bool

	Concurrency int // 0 = one goroutine per task
	DryRun      bool
}

// staged holds the local files to attach for one pair.
type staged struct {
	bundle  string
	mapFile string
}

// Dispatch uploads every pair to every destination concurrently. The first
// failure cancels the remaining requests and is returned both as the error
// and as Result.Err. Zero pairs or zero destinations succeed trivially.
// Temporary decompressed files are removed before returning unless
// KeepDecompressed is set.
func (d *Dispatcher) Dispatch(ctx context.Context, pairs []artifact.Pair, destinations []string) (*Result, error) {
	tasks := Plan(pairs, destinations)
	result := &Result{Outcomes: make([]Outcome, len(tasks))}
	for i, t := range tasks {
		result.Outcomes[i] = Outcome{Task: t, State: Pending}
	}
	if len(tasks) == 0 {
		return result, nil
	}

	// Files are staged once per pair; every destination of that pair
	// attaches the same decompressed copy.
	files, cleanups, err := d.stage(ctx, pairs)
	defer d.cleanup(cleanups)
	if err != nil {
		result.Err = err
		return result, err
	}

	if d.DryRun {
		for _, t := range tasks {
			log.WithFields(log.Fields{"task": t.ID, "minified_url": t.MinifiedURL}).Info("dry run: skipping upload")
		}
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if d.Concurrency > 0 {
		g.SetLimit(d.Concurrency)
	}

	for i := range tasks {
		g.Go(func() error {
			o := &result.Outcomes[i]
			o.State = InFlight
			start := time.Now()

			f := files[o.Task.PairIndex]
			err := d.Uploader.UploadSourceMap(gctx, honeybadger.SourceMapUpload{
				APIKey:      d.APIKey,
				Revision:    d.Revision,
				MinifiedURL: o.Task.MinifiedURL,
				MapFile:     f.mapFile,
				BundleFile:  f.bundle,
			})
			o.Elapsed = time.Since(start)

			entry := log.WithFields(log.Fields{
				"task":         o.Task.ID,
				"minified_url": o.Task.MinifiedURL,
				"elapsed":      o.Elapsed,
			})
			if err != nil {
				o.State = Failed
				o.Err = err
				entry.WithError(err).Debug("upload failed")
				return fmt.Errorf("uploading %s: %w", o.Task.MinifiedURL, err)
			}
			o.State = Succeeded
			entry.Debug("upload succeeded")
			return nil
		})
	}

	result.Err = g.Wait()
	return result, result.Err
}

// stage resolves the local files for each pair, decompressing those a
// prior stage gzipped. It returns the cleanups of everything created so
// far even when it fails.
func (d *Dispatcher) stage(ctx context.Context, pairs []artifact.Pair) ([]staged, []func() error, error) {
	files := make([]staged, len(pairs))
	var cleanups []func() error

	resolve := func(rel string) (string, error) {
		compressed := d.Compressed != nil && d.Compressed(rel)
		local, cleanup, err := d.Decompressor.Resolve(d.localPath(rel), compressed)
		if err != nil {
			return "", err
		}
		cleanups = append(cleanups, cleanup)
		return local, nil
	}

	for i, p := range pairs {
		if err := ctx.Err(); err != nil {
			return files, cleanups, err
		}
		bundle, err := resolve(p.Bundle)
		if err != nil {
			return files, cleanups, err
		}
		mapFile, err := resolve(p.Map)
		if err != nil {
			return files, cleanups, err
		}
		files[i] = staged{bundle: bundle, mapFile: mapFile}
	}
	return files, cleanups, nil
}

func (d *Dispatcher) localPath(rel string) string {
	if d.Path == nil {
		return rel
	}
	return d.Path(rel)
}

func (d *Dispatcher) cleanup(cleanups []func() error) {
	if d.KeepDecompressed {
		return
	}
	for _, c := range cleanups {
		if err := c(); err != nil {
			log.WithError(err).Warn("removing decompressed file")
		}
	}
}
