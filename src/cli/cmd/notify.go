package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/hbdeploy/src/honeybadger"
	"github.com/sofmeright/hbdeploy/src/output"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Register the deployment with Honeybadger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeployment()
		if err != nil {
			return err
		}
		return runNotify(cmd.Context(), cmd.OutOrStdout(), d, output.UseColor())
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(ctx context.Context, w io.Writer, d *deployment, color bool) error {
	start := time.Now()
	r := d.resolved

	deploy := honeybadger.Deploy{
		Environment: r.Environment,
		Revision:    r.Revision,
		Username:    r.Username,
		Repository:  r.Repository,
	}

	var err error
	detail := fmt.Sprintf("%s @ %s", r.Environment, shortRev(r.Revision))
	if r.DryRun {
		detail = "dry run: " + detail
	} else {
		err = honeybadger.New(r.Endpoint, r.Timeout).NotifyDeploy(ctx, r.UploadKey, deploy)
	}

	output.StepResult(w, "Deploy", err, detail, time.Since(start), color)
	return err
}
