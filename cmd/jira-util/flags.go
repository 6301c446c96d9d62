package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/theme"
	"github.com/nhle/jira-util/internal/workflow"
)

// commonFlags are accepted by every action in addition to its options.
type commonFlags struct {
	configPath  string
	interactive bool
	outputEnv   string
}

// optionFlags registers one flag per option on fs. Option keys map to
// flag names by replacing underscores with dashes.
func optionFlags(fs *pflag.FlagSet, opts []model.Option) map[string]string {
	keys := make(map[string]string, len(opts))
	for _, o := range opts {
		name := flagName(o.Key)
		keys[name] = o.Key

		usage := o.Description
		if o.Env != "" {
			usage += " (env " + o.Env + ")"
		}

		if def, ok := o.Default.(bool); ok {
			fs.Bool(name, def, usage)
			continue
		}
		fs.String(name, "", usage)
	}
	return keys
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// parseFlags parses args and returns the config loaded for opts with the
// flags bound on top, so an explicitly passed flag wins over env, file and
// default. It returns pflag.ErrHelp when help was requested.
func parseFlags(
	fs *pflag.FlagSet,
	opts []model.Option,
	args []string,
) (*viper.Viper, commonFlags, error) {
	var common commonFlags
	fs.StringVar(&common.configPath, "config", model.DefaultConfigPath(), "YAML config file with default parameter values")
	fs.BoolVar(&common.interactive, "interactive", false, "Prompt for required parameters that are still missing")
	fs.StringVar(&common.outputEnv, "output-env", "", "Dotenv file to merge the action outputs into")
	keys := optionFlags(fs, opts)

	if err := fs.Parse(args); err != nil {
		return nil, common, err
	}
	if fs.NArg() > 0 {
		return nil, common, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	v, err := model.LoadConfig(common.configPath, opts)
	if err != nil {
		return nil, common, err
	}

	for name, key := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, common, fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}

	return v, common, nil
}

// actionUsage prints the help of an action: its options, env variables and
// published outputs.
func actionUsage(w io.Writer, fs *pflag.FlagSet, a action) func() {
	return func() {
		fmt.Fprintln(w, theme.HeaderStyle.Render("jira-util "+a.name))
		fmt.Fprintln(w, a.summary)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		fs.SetOutput(w)
		fs.PrintDefaults()
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Outputs:")
		printOutputs(w, a.outputs)
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.HelpStyle.Render("Returns: "+a.returnValue))
	}
}

func printOutputs(w io.Writer, outputs []workflow.Output) {
	for _, o := range outputs {
		fmt.Fprintf(w, "  %s  %s\n", theme.KeyStyle.Render(o.Key), o.Description)
	}
}

func isHelp(err error) bool {
	return errors.Is(err, pflag.ErrHelp)
}
