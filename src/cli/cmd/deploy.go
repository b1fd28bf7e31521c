package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/hbdeploy/src/output"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Run prepare, upload and notify in order",
	Long: `Run every lifecycle step in pipeline order. The first failing step
stops the run; later steps are reported as skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeployment()
		if err != nil {
			return err
		}
		return runDeploy(cmd.Context(), cmd.OutOrStdout(), d, output.UseColor())
	},
}

func init() {
	deployCmd.Flags().StringVar(&uploadJUnitDir, "junit", "", "write a JUnit report of the uploads to this directory")
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(ctx context.Context, w io.Writer, d *deployment, color bool) error {
	start := time.Now()
	output.CIHeader(w)

	steps := []struct {
		name string
		run  func() error
	}{
		{"prepare", func() error { return runPrepare(w, d, color) }},
		{"upload", func() error { return runUpload(ctx, w, d, color) }},
		{"notify", func() error { return runNotify(ctx, w, d, color) }},
	}

	type stepStatus struct{ name, status, detail string }
	var summary []stepStatus
	var failed error

	for _, s := range steps {
		if failed != nil {
			summary = append(summary, stepStatus{s.name, "skipped", "not run"})
			continue
		}
		if err := s.run(); err != nil {
			failed = err
			summary = append(summary, stepStatus{s.name, "failed", err.Error()})
			continue
		}
		summary = append(summary, stepStatus{s.name, "success", "done"})
	}

	sec := output.NewSection(w, "Summary", 0, color)
	for _, s := range summary {
		output.SummaryRow(w, s.name, s.status, s.detail, color)
	}
	overall := "success"
	if failed != nil {
		overall = "failed"
	}
	output.SummaryTotal(w, time.Since(start), overall, color)
	sec.Close()

	return failed
}
