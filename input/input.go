// Package input collects answers from the user. The command layer only sees
// the Prompter interface so it can run without a terminal in tests.
package input

import "errors"

// ErrNotInteractive is returned when a question cannot be asked because
// there is no terminal attached.
var ErrNotInteractive = errors.New("input: not an interactive terminal")

// Validator checks an answer and returns a user facing error when it is rejected.
type Validator func(answer string) error

// Prompter asks the user questions.
type Prompter interface {
	// Password asks for a secret that must not be empty.
	Password(message string) (string, error)
	// Select asks the user to pick one of options.
	Select(message string, options []string, defaultOption string) (string, error)
	// Input asks for free text accepted by validate.
	Input(message string, validate Validator) (string, error)
	// Confirm asks a yes/no question.
	Confirm(message string, defaultValue bool) (bool, error)
}

// Required rejects empty answers with message.
func Required(message string) Validator {
	return func(answer string) error {
		if answer == "" {
			return errors.New(message)
		}
		return nil
	}
}
