package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofmeright/hbdeploy/src/snippet"
)

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Print the placeholder to include in the built <head>",
	Long: `Print the marker tag the build should place in <head>.

"prepare" later replaces it with the rendered Honeybadger snippet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), snippet.Marker)
		return err
	},
}

func init() {
	rootCmd.AddCommand(headCmd)
}
