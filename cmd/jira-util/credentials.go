package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/nhle/jira-util/internal/credential"
	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/prompt"
	"github.com/nhle/jira-util/internal/theme"
)

// runLogin stores the password for --username on --url in the system
// keyring and remembers url and username in the config file.
func runLogin(e env, args []string) int {
	fset := pflag.NewFlagSet("login", pflag.ContinueOnError)
	fset.SetOutput(e.stderr)
	noSave := fset.Bool("no-save", false, "Do not write url and username to the config file")

	v, common, err := parseFlags(fset, model.CredentialOptions, args)
	if err != nil {
		if isHelp(err) {
			return exitOK
		}
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitUsage
	}

	baseURL := v.GetString(model.KeyURL)
	username := v.GetString(model.KeyUsername)
	if baseURL == "" || username == "" {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render("login needs --url and --username"))
		return exitFailure
	}

	password := v.GetString(model.KeyPassword)
	if password == "" {
		if !e.terminal() {
			fmt.Fprintln(e.stderr, theme.ErrorStyle.Render("no password given and stdin is not a terminal"))
			return exitFailure
		}
		password, err = prompt.Password(fmt.Sprintf("Password for %s on %s", username, baseURL))
		if err != nil {
			fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
			return exitFailure
		}
	}

	if err := credential.Set(credential.Key(baseURL, username), password); err != nil {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitFailure
	}

	if !*noSave {
		if err := model.SaveConnection(common.configPath, baseURL, username); err != nil {
			fmt.Fprintln(e.stderr, theme.WarningStyle.Render(err.Error()))
		}
	}

	fmt.Fprintln(e.stderr, theme.SuccessStyle.Render("Stored password for "+username+" on "+baseURL))
	return exitOK
}

// runLogout removes the stored password for --username on --url.
func runLogout(e env, args []string) int {
	fset := pflag.NewFlagSet("logout", pflag.ContinueOnError)
	fset.SetOutput(e.stderr)

	v, _, err := parseFlags(fset, model.CredentialOptions, args)
	if err != nil {
		if isHelp(err) {
			return exitOK
		}
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitUsage
	}

	baseURL := v.GetString(model.KeyURL)
	username := v.GetString(model.KeyUsername)
	if baseURL == "" || username == "" {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render("logout needs --url and --username"))
		return exitFailure
	}

	if err := credential.Delete(credential.Key(baseURL, username)); err != nil {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitFailure
	}

	fmt.Fprintln(e.stderr, theme.SuccessStyle.Render("Removed password for "+username+" on "+baseURL))
	return exitOK
}
