package cmd

import (
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/config"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	logLevel     string
	settingsFile string
)

var rootCmd = &cobra.Command{
	Use:   "ai-work",
	Short: "AI Work Report - generate work reports from git commits",
	Long: `AI Work Report reads the recent commits of a git repository and asks an LLM
provider (OpenAI, Claude, Gemini or OpenRouter) to turn them into a readable
work report. Reports can optionally be shared on Slack.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logLevel)
		logger.Debugf("Log level set to: %s", logLevel)

		// Values already in the environment win over the settings file
		return config.Load(settingsFile)
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior when no subcommands are provided
		cmd.Help()
	},
}

// Execute runs the root command and handles errors
func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Set the logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", config.DefaultFile,
		"Path of the settings file")
}
