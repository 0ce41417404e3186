package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/config"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/input"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/llm"
	"github.com/bitrise-io/bitrise-plugins-ai-work-report/notify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingCredential is returned when no API key could be found or asked for
var ErrMissingCredential = errors.New("missing API key")

// resolver answers the generate command's settings from, in order: command
// line flags, environment variables (including the settings file), built-in
// defaults and finally the user.
type resolver struct {
	v        *viper.Viper
	flags    *pflag.FlagSet
	prompter input.Prompter
	notifier notify.Notifier
}

func newResolver(flags *pflag.FlagSet, prompter input.Prompter, notifier notify.Notifier) *resolver {
	v := viper.New()

	bind := func(key, env string) {
		if f := flags.Lookup(key); f != nil {
			_ = v.BindPFlag(key, f)
		}
		if env != "" {
			_ = v.BindEnv(key, env)
		}
	}
	bind(flagProvider, config.KeyProvider)
	bind(flagModel, config.KeyDefaultModel)
	bind(flagWebhook, config.KeySlackWebhookURL)
	bind(flagAPIKey, "")

	v.SetDefault(flagProvider, llm.ProviderOpenAI.String())

	return &resolver{
		v:        v,
		flags:    flags,
		prompter: prompter,
		notifier: notifier,
	}
}

func (r *resolver) provider() (llm.Provider, error) {
	id := r.v.GetString(flagProvider)
	p, ok := llm.ParseProvider(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s (supported providers: %s)",
			llm.ErrUnsupportedProvider, id, strings.Join(llm.SupportedProviders(), ", "))
	}
	return p, nil
}

func (r *resolver) apiKey(p llm.Provider) (string, error) {
	info := p.Info()

	// The environment key depends on the provider, so it is bound late.
	_ = r.v.BindEnv(flagAPIKey, info.EnvKey)
	if key := r.v.GetString(flagAPIKey); key != "" {
		return key, nil
	}

	key, err := r.prompter.Password(fmt.Sprintf("Please enter your %s API key:", info.Name))
	if errors.Is(err, input.ErrNotInteractive) || (err == nil && key == "") {
		return "", fmt.Errorf("%w: use --%s or set %s", ErrMissingCredential, flagAPIKey, info.EnvKey)
	}
	if err != nil {
		return "", err
	}
	return key, nil
}

// model resolves the model name. Without an explicit --model flag every
// provider except openai offers an interactive choice, preselecting the
// model found in the environment.
func (r *resolver) model(p llm.Provider) (string, error) {
	info := p.Info()

	model := r.v.GetString(flagModel)
	if model == "" {
		model = info.DefaultModel
	}

	if r.flags.Changed(flagModel) || p == llm.ProviderOpenAI || len(info.Models) == 0 {
		return model, nil
	}

	preselected := info.DefaultModel
	if slices.Contains(info.Models, model) {
		preselected = model
	}

	selected, err := r.prompter.Select(fmt.Sprintf("Select %s model:", info.Name), info.Models, preselected)
	if errors.Is(err, input.ErrNotInteractive) {
		return model, nil
	}
	if err != nil {
		return "", err
	}
	return selected, nil
}

func (r *resolver) webhookURL() (string, error) {
	if url := r.v.GetString(flagWebhook); url != "" {
		return url, nil
	}
	return r.prompter.Input("Enter your Slack webhook URL:", webhookValidator(r.notifier))
}

func webhookValidator(notifier notify.Notifier) input.Validator {
	return func(answer string) error {
		if notifier.ValidateWebhookURL(answer) != nil {
			return errors.New("Invalid Slack webhook URL format")
		}
		return nil
	}
}
