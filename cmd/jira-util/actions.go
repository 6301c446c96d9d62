package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/ternarybob/arbor"

	"github.com/nhle/jira-util/internal/logging"
	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/theme"
	"github.com/nhle/jira-util/internal/workflow"
)

// action binds a workflow operation to its CLI surface.
type action struct {
	name        string
	summary     string
	options     []model.Option
	outputs     []workflow.Output
	returnValue string

	// run executes the operation and returns a one-line success message.
	run func(ctx context.Context, wf *workflow.Workflow, v *viper.Viper, lane *workflow.LaneContext) (string, error)
}

var createIssueAction = action{
	name:        "create-issue",
	summary:     "Creates a new issue in your Jira project",
	options:     model.CreateIssueOptions,
	outputs:     workflow.IssueOutputs,
	returnValue: workflow.IssueReturnValue,
	run: func(ctx context.Context, wf *workflow.Workflow, v *viper.Viper, lane *workflow.LaneContext) (string, error) {
		res, err := wf.CreateIssue(ctx, model.CreateIssueParamsFromConfig(v), lane)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Created issue %s (id %s)", res.Key, res.ID), nil
	},
}

var createVersionAction = action{
	name:        "create-version",
	summary:     "Creates or updates a version in your Jira project",
	options:     model.CreateVersionOptions,
	outputs:     workflow.VersionOutputs,
	returnValue: workflow.VersionReturnValue,
	run: func(ctx context.Context, wf *workflow.Workflow, v *viper.Viper, lane *workflow.LaneContext) (string, error) {
		res, err := wf.CreateOrUpdateVersion(ctx, model.CreateVersionParamsFromConfig(v), lane)
		if err != nil {
			return "", err
		}
		verb := "Updated"
		if res.Created {
			verb = "Created"
		}
		return fmt.Sprintf("%s version %s", verb, res.ID), nil
	},
}

func runAction(ctx context.Context, e env, a action, args []string) int {
	fset := pflag.NewFlagSet(a.name, pflag.ContinueOnError)
	fset.SetOutput(e.stderr)
	fset.Usage = actionUsage(e.stderr, fset, a)

	v, common, err := parseFlags(fset, a.options, args)
	if err != nil {
		if isHelp(err) {
			return exitOK
		}
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitUsage
	}

	logger := logging.New(v.GetString(model.KeyLogLevel))

	useKeyring, err := model.Bool(v, model.KeyKeyring)
	if err != nil {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitFailure
	}

	if common.interactive && !e.terminal() {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render("--interactive needs a terminal on stdin"))
		return exitUsage
	}
	if err := resolveMissing(e, v, a.options, common.interactive, useKeyring, logger); err != nil {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitFailure
	}

	seed, err := readOutputEnv(common.outputEnv)
	if err != nil {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitFailure
	}
	lane := workflow.NewLaneContext(seed)

	wf := workflow.New(e.factory, logger)
	msg, err := a.run(ctx, wf, v, lane)
	if err != nil {
		reportFailure(e, err)
		return exitFailure
	}

	if err := writeOutputEnv(common.outputEnv, lane); err != nil {
		fmt.Fprintln(e.stderr, theme.ErrorStyle.Render(err.Error()))
		return exitFailure
	}

	for _, o := range a.outputs {
		if value, ok := lane.Get(o.Key); ok {
			fmt.Fprintf(e.stdout, "%s=%s\n", o.Key, value)
		}
	}
	fmt.Fprintln(e.stderr, theme.SuccessStyle.Render(msg))
	return exitOK
}

// resolveMissing completes v from the keyring and, when interactive, from
// prompts. The password is looked up again once url and username are
// answered so a stored password is never asked for.
func resolveMissing(
	e env,
	v *viper.Viper,
	opts []model.Option,
	interactive bool,
	useKeyring bool,
	logger arbor.ILogger,
) error {
	if useKeyring {
		fillPasswordFromKeyring(e, v, logger)
	}
	if !interactive {
		return nil
	}

	if err := e.prompt(v, withoutSecrets(opts)); err != nil {
		return err
	}
	if useKeyring {
		fillPasswordFromKeyring(e, v, logger)
	}
	return e.prompt(v, opts)
}

func withoutSecrets(opts []model.Option) []model.Option {
	out := make([]model.Option, 0, len(opts))
	for _, o := range opts {
		if !o.Secret {
			out = append(out, o)
		}
	}
	return out
}

// fillPasswordFromKeyring sets the password from the system keyring when
// none was given. A keyring failure is not fatal: validation reports the
// missing password instead.
func fillPasswordFromKeyring(e env, v *viper.Viper, logger arbor.ILogger) {
	if v.GetString(model.KeyPassword) != "" {
		return
	}

	password, err := e.lookupPassword(v.GetString(model.KeyURL), v.GetString(model.KeyUsername))
	if err != nil {
		logger.Warn().Err(err).Msg("Could not read password from keyring")
		return
	}
	if password != "" {
		v.Set(model.KeyPassword, password)
	}
}

func reportFailure(e env, err error) {
	kind := workflow.KindUnexpected
	var wfErr *workflow.Error
	if errors.As(err, &wfErr) {
		kind = wfErr.Kind
	}
	fmt.Fprintln(e.stderr, theme.KindStyle(kind.String()).Render(kind.String())+" "+theme.ErrorStyle.Render(err.Error()))
}

// readOutputEnv returns the values already present in the dotenv file at
// path so earlier steps' outputs are kept. A missing file yields none.
func readOutputEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading outputs file %s: %w", path, err)
	}
	return values, nil
}

// writeOutputEnv stores every lane value in the dotenv file at path.
func writeOutputEnv(path string, lane *workflow.LaneContext) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Write(lane.Values(), path); err != nil {
		return fmt.Errorf("writing outputs file %s: %w", path, err)
	}
	return nil
}

// stdinIsTerminal reports whether prompts can be shown.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
