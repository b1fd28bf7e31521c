package cmd

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sofmeright/hbdeploy/src/output"
	"github.com/sofmeright/hbdeploy/src/snippet"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Inject the Honeybadger snippet into the built index HTML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeployment()
		if err != nil {
			return err
		}
		return runPrepare(cmd.OutOrStdout(), d, output.UseColor())
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(w io.Writer, d *deployment, color bool) error {
	start := time.Now()
	r := d.resolved

	detail, err := func() (string, error) {
		tmpl, err := snippet.LoadTemplate(r.SnippetTemplate)
		if err != nil {
			return "", err
		}
		rendered, err := snippet.Render(tmpl, snippet.Data{
			APIKey:      r.APIKey,
			Environment: r.Environment,
			Revision:    r.Revision,
			JSFile:      r.JSFile,
		})
		if err != nil {
			return "", err
		}
		found, err := snippet.Inject(r.IndexPath, rendered)
		if err != nil {
			return "", err
		}
		if !found {
			log.WithField("file", r.IndexPath).Warnf("marker %s not found; index left unchanged", snippet.Marker)
			return fmt.Sprintf("%s: no marker", r.IndexPath), nil
		}
		return fmt.Sprintf("%s  (%s, %s)", r.IndexPath, r.Environment, shortRev(r.Revision)), nil
	}()

	output.StepResult(w, "Snippet", err, detail, time.Since(start), color)
	return err
}

func shortRev(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
