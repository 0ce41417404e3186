package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/config"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/git"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/input"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/llm"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/logger"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/notify"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagProvider = "provider"
	flagAPIKey   = "api-key"
	flagModel    = "model"
	flagDays     = "days"
	flagRepo     = "repo"
	flagAuthor   = "author"
	flagSlack    = "slack"
	flagWebhook  = "webhook"
)

const reportTitle = "📊 Work Report"

// generateDeps holds everything runGenerate talks to outside the process.
type generateDeps struct {
	out      io.Writer
	errOut   io.Writer
	prompter input.Prompter
	history  func(repoPath string) report.HistoryReader
	newLLM   func(provider llm.Provider, apiKey, model string) (llm.LLM, error)
	notifier notify.Notifier
}

func defaultGenerateDeps(out, errOut io.Writer) generateDeps {
	slack, _ := notify.NewNotifier(notify.ProviderSlack, notify.WithTitle(reportTitle))
	return generateDeps{
		out:      out,
		errOut:   errOut,
		prompter: input.NewTerminal(),
		history: func(repoPath string) report.HistoryReader {
			return git.NewClient(git.NewDefaultRunner(repoPath))
		},
		newLLM: func(provider llm.Provider, apiKey, model string) (llm.LLM, error) {
			return llm.NewForProvider(provider, apiKey,
				llm.WithModel(model),
				llm.WithMaxTokens(llm.DefaultMaxTokens),
				llm.WithTemperature(llm.DefaultTemperature),
			)
		},
		notifier: slack,
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate work report from recent git commits",
	Long: `Read the commits of a git repository from the last days, ask an LLM provider
to summarize them into a work report, print it and optionally send it to Slack.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps := defaultGenerateDeps(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err := runGenerate(cmd.Context(), cmd.Flags(), deps); err != nil {
			logger.Errorf("Failed to generate report: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd.Flags())
}

func addGenerateFlags(flags *pflag.FlagSet) {
	flags.StringP(flagProvider, "p", llm.ProviderOpenAI.String(),
		fmt.Sprintf("LLM provider (%s)", strings.Join(llm.SupportedProviders(), ", ")))
	flags.StringP(flagAPIKey, "k", "", "API key for the LLM provider")
	flags.StringP(flagModel, "m", "", "Model to use (defaults to the provider's default model)")
	flags.IntP(flagDays, "d", 1, "Number of days to look back")
	flags.StringP(flagRepo, "r", ".", "Path to the git repository")
	flags.StringP(flagAuthor, "a", "", "Only include commits of this author email")
	flags.BoolP(flagSlack, "s", false, "Send the report to Slack")
	flags.StringP(flagWebhook, "w", "", "Slack webhook URL")
}

func runGenerate(ctx context.Context, flags *pflag.FlagSet, deps generateDeps) error {
	r := newResolver(flags, deps.prompter, deps.notifier)

	provider, err := r.provider()
	if err != nil {
		return err
	}

	apiKey, err := r.apiKey(provider)
	if err != nil {
		return err
	}

	model, err := r.model(provider)
	if err != nil {
		return err
	}

	days, _ := flags.GetInt(flagDays)
	repoPath, _ := flags.GetString(flagRepo)
	author, _ := flags.GetString(flagAuthor)

	llmClient, err := deps.newLLM(provider, apiKey, model)
	if err != nil {
		return fmt.Errorf("failed to create client for LLM provider: %w", err)
	}

	logger.Infof("Analyzing git logs of the last %d day(s) in %s", days, repoPath)
	logger.Infof("Using LLM provider %s with model %s", provider.Info().Name, model)

	workReport, err := report.Generate(ctx, deps.history(repoPath), llmClient, report.Query{
		Days:        days,
		AuthorEmail: author,
	})
	if err != nil {
		return err
	}

	printReport(deps.out, workReport)

	if sendToSlack, _ := flags.GetBool(flagSlack); sendToSlack {
		postToSlack(ctx, r, deps, workReport, notify.Metadata{
			Author:   author,
			RepoName: repoName(repoPath),
		})
	}

	return nil
}

func printReport(out io.Writer, workReport string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, reportTitle)
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintln(out, workReport)
}

// postToSlack reports its outcome to the user only. A failed post does not
// fail the command.
func postToSlack(ctx context.Context, r *resolver, deps generateDeps, workReport string, meta notify.Metadata) {
	webhookURL, err := r.webhookURL()
	if err != nil {
		if errors.Is(err, input.ErrNotInteractive) {
			err = fmt.Errorf("no webhook URL configured, use --%s or set %s", flagWebhook, config.KeySlackWebhookURL)
		}
		fmt.Fprintf(deps.errOut, "✗ Failed to send to Slack: %v\n", err)
		return
	}

	confirmed, err := deps.prompter.Confirm("Send this report to Slack?", true)
	if errors.Is(err, input.ErrNotInteractive) {
		confirmed, err = true, nil
	}
	if err != nil {
		fmt.Fprintf(deps.errOut, "✗ Failed to send to Slack: %v\n", err)
		return
	}
	if !confirmed {
		fmt.Fprintln(deps.errOut, "Skipped sending to Slack")
		return
	}

	logger.Info("Sending report to Slack...")
	if err := deps.notifier.Post(ctx, workReport, webhookURL, meta); err != nil {
		logger.Warnf("Slack notification failed: %v", err)
		fmt.Fprintf(deps.errOut, "✗ Failed to send to Slack: %v\n", err)
		return
	}
	fmt.Fprintln(deps.errOut, "✓ Report sent to Slack successfully!")
}

// repoName is only reported when the repository was given explicitly.
func repoName(repoPath string) string {
	if repoPath == "" || repoPath == "." {
		return ""
	}
	if abs, err := filepath.Abs(repoPath); err == nil {
		repoPath = abs
	}
	return filepath.Base(repoPath)
}
