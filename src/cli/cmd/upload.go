package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/hbdeploy/src/artifact"
	"github.com/sofmeright/hbdeploy/src/honeybadger"
	"github.com/sofmeright/hbdeploy/src/output"
	"github.com/sofmeright/hbdeploy/src/sourcemap"
)

var uploadJUnitDir string

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload bundles and source maps to Honeybadger",
	Long: `Select the project, vendor and additional bundles from the build
output, pair each with its source map, and upload every pair once per
minified_prepend_url. Run this before any step that compresses the
output; files listed with --gzipped are decompressed first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeployment()
		if err != nil {
			return err
		}
		return runUpload(cmd.Context(), cmd.OutOrStdout(), d, output.UseColor())
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadJUnitDir, "junit", "", "write a JUnit report of the uploads to this directory")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(ctx context.Context, w io.Writer, d *deployment, color bool) error {
	start := time.Now()
	r := d.resolved

	output.ContextBlock(w, []output.KV{
		{Key: "project", Value: r.ProjectName},
		{Key: "revision", Value: shortRev(r.Revision)},
		{Key: "environment", Value: r.Environment},
		{Key: "pairing", Value: r.Pairing},
	})

	mode, err := artifact.ParsePairMode(r.Pairing)
	if err != nil {
		return err
	}
	pairs, err := sourcemap.Collect(d.ctx.DistFiles, r.Fragments, mode)
	if err != nil {
		return err
	}

	dispatcher := &sourcemap.Dispatcher{
		Uploader:         honeybadger.New(r.Endpoint, r.Timeout),
		APIKey:           r.UploadKey,
		Revision:         r.Revision,
		Path:             d.ctx.AbsPath,
		Compressed:       d.ctx.IsGzipped,
		Decompressor:     artifact.Decompressor{Sniff: r.DetectCompression},
		KeepDecompressed: r.KeepDecompressed,
		Concurrency:      r.Concurrency,
		DryRun:           r.DryRun,
	}

	result, err := dispatcher.Dispatch(ctx, pairs, r.Destinations)
	elapsed := time.Since(start)
	output.UploadSection(w, result, r.DryRun, elapsed, color)

	if uploadJUnitDir != "" {
		if jerr := output.WriteUploadJUnit(uploadJUnitDir, result, elapsed); jerr != nil && err == nil {
			err = jerr
		}
	}
	return err
}
