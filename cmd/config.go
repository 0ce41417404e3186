package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/config"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/input"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/llm"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/notify"
	"github.com/spf13/cobra"
)

var showConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure default settings",
	Long: `Interactively choose the default LLM provider, its API key, the default model
and an optional Slack webhook. The answers are saved to the settings file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showConfig {
			return printSettings(cmd.OutOrStdout(), settingsFile)
		}

		slack, err := notify.NewNotifier(notify.ProviderSlack)
		if err != nil {
			return err
		}

		if err := runConfig(input.NewTerminal(), slack, settingsFile, cmd.OutOrStdout()); err != nil {
			logger.Errorf("Failed to save configuration: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&showConfig, "show", false, "Print the current settings (API key redacted)")
}

func runConfig(prompter input.Prompter, notifier notify.Notifier, path string, out io.Writer) error {
	providers := llm.Providers()
	labels := make([]string, len(providers))
	for i, p := range providers {
		labels[i] = p.Info().Label
	}

	label, err := prompter.Select("Select LLM provider:", labels, llm.ProviderOpenAI.Info().Label)
	if err != nil {
		return configPromptError(err)
	}
	idx := slices.Index(labels, label)
	if idx < 0 {
		return fmt.Errorf("%w: %s", llm.ErrUnsupportedProvider, label)
	}
	info := providers[idx].Info()

	apiKey, err := prompter.Password(fmt.Sprintf("Enter your %s API key:", info.Name))
	if err != nil {
		return configPromptError(err)
	}
	if apiKey == "" {
		return fmt.Errorf("%w for %s", ErrMissingCredential, info.Name)
	}

	model, err := prompter.Select(fmt.Sprintf("Select default %s model:", info.Name), info.Models, info.DefaultModel)
	if err != nil {
		return configPromptError(err)
	}

	settings := config.Settings{
		Provider:  info.ID,
		Model:     model,
		APIKeyEnv: info.EnvKey,
		APIKey:    apiKey,
	}

	withSlack, err := prompter.Confirm("Do you want to configure Slack integration?", false)
	if err != nil {
		return configPromptError(err)
	}
	if withSlack {
		settings.WebhookURL, err = prompter.Input("Enter your Slack webhook URL:", webhookValidator(notifier))
		if err != nil {
			return configPromptError(err)
		}
	}

	if err := config.Write(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Configuration saved to %s file\n", path)
	return nil
}

func configPromptError(err error) error {
	if errors.Is(err, input.ErrNotInteractive) {
		return fmt.Errorf("config needs an interactive terminal, edit the settings file instead: %w", err)
	}
	return err
}

func printSettings(out io.Writer, path string) error {
	settings, err := config.Read(path)
	if err != nil {
		return err
	}
	return config.WriteYAML(out, settings)
}
