package cmd

import (
	"fmt"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the version of this tool`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := version.Semver()
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", version.Version, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "AI Work Report v%s\n", v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
