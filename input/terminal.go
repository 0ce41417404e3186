package input

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
)

// Terminal asks questions on an interactive terminal using survey.
type Terminal struct {
	In  *os.File
	Out *os.File
	Err *os.File
}

// NewTerminal returns a Terminal bound to the process standard streams.
func NewTerminal() *Terminal {
	return &Terminal{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}
}

// Interactive reports whether questions can be asked.
func (t *Terminal) Interactive() bool {
	fd := t.In.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *Terminal) ask(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	if !t.Interactive() {
		return ErrNotInteractive
	}
	opts = append(opts, survey.WithStdio(t.In, t.Out, t.Err))
	return survey.AskOne(p, response, opts...)
}

func surveyValidator(validate Validator) survey.Validator {
	return func(ans interface{}) error {
		s, _ := ans.(string)
		return validate(s)
	}
}

// Password implements Prompter
func (t *Terminal) Password(message string) (string, error) {
	var answer string
	err := t.ask(&survey.Password{Message: message}, &answer,
		survey.WithValidator(surveyValidator(Required("API key is required"))))
	return answer, err
}

// Select implements Prompter
func (t *Terminal) Select(message string, options []string, defaultOption string) (string, error) {
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	for _, o := range options {
		if o == defaultOption {
			prompt.Default = defaultOption
			break
		}
	}

	var answer string
	err := t.ask(prompt, &answer)
	return answer, err
}

// Input implements Prompter
func (t *Terminal) Input(message string, validate Validator) (string, error) {
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(surveyValidator(validate)))
	}

	var answer string
	err := t.ask(&survey.Input{Message: message}, &answer, opts...)
	return answer, err
}

// Confirm implements Prompter
func (t *Terminal) Confirm(message string, defaultValue bool) (bool, error) {
	var answer bool
	err := t.ask(&survey.Confirm{Message: message, Default: defaultValue}, &answer)
	return answer, err
}
