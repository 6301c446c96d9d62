package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nhle/jira-util/internal/credential"
	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/prompt"
	"github.com/nhle/jira-util/internal/theme"
	"github.com/nhle/jira-util/internal/tracker"
	"github.com/nhle/jira-util/internal/tracker/jira"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// env carries the process boundary so commands can be driven from tests.
type env struct {
	stdout  io.Writer
	stderr  io.Writer
	factory tracker.Factory

	// prompt asks for the missing required options in opts.
	prompt func(v *viper.Viper, opts []model.Option) error
	// terminal reports whether stdin can answer prompts.
	terminal func() bool
	// lookupPassword reads a stored password from the keyring.
	lookupPassword func(baseURL, username string) (string, error)
}

// withDefaults fills the unset hooks with the real implementations.
func (e env) withDefaults() env {
	if e.factory == nil {
		e.factory = jira.Factory
	}
	if e.prompt == nil {
		e.prompt = prompt.FillMissing
	}
	if e.terminal == nil {
		e.terminal = stdinIsTerminal
	}
	if e.lookupPassword == nil {
		e.lookupPassword = credential.Lookup
	}
	return e
}

func main() {
	// A .env file in the working directory supplies FL_* variables the
	// same way the shell environment does. Real environment wins.
	_ = godotenv.Load()

	e := env{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	os.Exit(run(context.Background(), e, os.Args[1:]))
}

func run(ctx context.Context, e env, args []string) int {
	e = e.withDefaults()

	if len(args) == 0 {
		printUsage(e.stderr)
		return exitUsage
	}

	switch args[0] {
	case createIssueAction.name:
		return runAction(ctx, e, createIssueAction, args[1:])
	case createVersionAction.name:
		return runAction(ctx, e, createVersionAction, args[1:])
	case "login":
		return runLogin(e, args[1:])
	case "logout":
		return runLogout(e, args[1:])
	case "help", "-h", "--help":
		printUsage(e.stdout)
		return exitOK
	default:
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(fmt.Sprintf("unknown command %q", args[0])))
		printUsage(e.stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, theme.HeaderStyle.Render("jira-util"))
	fmt.Fprintln(w, "Jira automation actions for build pipelines.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  jira-util %-16s %s\n", createIssueAction.name, createIssueAction.summary)
	fmt.Fprintf(w, "  jira-util %-16s %s\n", createVersionAction.name, createVersionAction.summary)
	fmt.Fprintf(w, "  jira-util %-16s %s\n", "login", "Store a Jira password in the system keyring")
	fmt.Fprintf(w, "  jira-util %-16s %s\n", "logout", "Remove a stored Jira password")
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.HelpStyle.Render("Run 'jira-util <command> -h' for the options of a command."))
}
