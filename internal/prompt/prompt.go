// Package prompt asks for action parameters on the terminal.
package prompt

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/viper"

	"github.com/nhle/jira-util/internal/model"
)

// Missing returns the required options whose value in v is still empty,
// in declaration order.
func Missing(v *viper.Viper, opts []model.Option) []model.Option {
	var out []model.Option
	for _, o := range opts {
		if o.Required && strings.TrimSpace(v.GetString(o.Key)) == "" {
			out = append(out, o)
		}
	}
	return out
}

// FillMissing shows one form with an input per missing required option and
// stores the answers in v. It does nothing when nothing is missing.
func FillMissing(v *viper.Viper, opts []model.Option) error {
	missing := Missing(v, opts)
	if len(missing) == 0 {
		return nil
	}

	answers := make([]string, len(missing))
	fields := make([]huh.Field, 0, len(missing))
	for i, o := range missing {
		fields = append(fields, buildInput(o, &answers[i]))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompting for parameters: %w", err)
	}

	for i, o := range missing {
		v.Set(o.Key, strings.TrimSpace(answers[i]))
	}
	return nil
}

// Password asks for a password without echoing it.
func Password(title string) (string, error) {
	var password string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(validateRequired("Password")),
		),
	).Run()
	if err != nil {
		return "", fmt.Errorf("prompting for password: %w", err)
	}
	return password, nil
}

func buildInput(o model.Option, value *string) *huh.Input {
	input := huh.NewInput().
		Title(o.Key).
		Description(o.Description).
		Value(value)

	switch {
	case o.Secret:
		input = input.EchoMode(huh.EchoModePassword).Validate(validateRequired(o.Key))
	case o.Key == model.KeyURL:
		input = input.Placeholder("https://jira.example.com").Validate(validateURL)
	default:
		input = input.Validate(validateRequired(o.Key))
	}
	return input
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://jira.example.com)")
	}
	return nil
}
