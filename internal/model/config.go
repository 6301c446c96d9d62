package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Parameter keys. They double as YAML keys in the config file.
const (
	KeyURL            = "url"
	KeyUsername       = "username"
	KeyPassword       = "password"
	KeyProjectName    = "project_name"
	KeyProjectID      = "project_id"
	KeyIssueTypeName  = "issue_type_name"
	KeySummary        = "summary"
	KeyVersionName    = "version_name"
	KeyDescription    = "description"
	KeyName           = "name"
	KeyArchived       = "archived"
	KeyReleased       = "released"
	KeyStartDate      = "start_date"
	KeyUpdateIfExists = "update_if_exists"
	KeyLogLevel       = "log_level"
	KeyKeyring        = "keyring"
)

// Option describes one action parameter and the environment variable that
// supplies it when it is not passed explicitly.
type Option struct {
	Key         string
	Env         string
	Description string
	Default     interface{}

	// Required options are prompted for in interactive mode.
	Required bool

	// Secret options are never echoed or logged.
	Secret bool
}

var connectionOptions = []Option{
	{Key: KeyURL, Env: "FL_JIRA_UTIL_SITE", Description: "URL for Jira instance", Required: true},
	{Key: KeyUsername, Env: "FL_JIRA_UTIL_USERNAME", Description: "Username for Jira instance", Required: true},
	{Key: KeyPassword, Env: "FL_JIRA_UTIL_PASSWORD", Description: "Password for Jira", Required: true, Secret: true},
}

var ambientOptions = []Option{
	{Key: KeyLogLevel, Env: "FL_JIRA_UTIL_LOG_LEVEL", Description: "Log level (trace, debug, info, warn, error)", Default: "info"},
	{Key: KeyKeyring, Env: "FL_JIRA_UTIL_KEYRING", Description: "Read the password from the system keyring when none is given", Default: true},
}

// CreateIssueOptions lists every parameter of the create-issue action.
var CreateIssueOptions = withCommon(
	Option{Key: KeyProjectName, Env: "FL_CREATE_JIRA_ISSUE_PROJECT_NAME", Description: "Key of the Jira project, e.g. the short abbreviation in ticket tags", Required: true},
	Option{Key: KeyIssueTypeName, Env: "FL_CREATE_JIRA_ISSUE_ISSUE_TYPE_NAME", Description: "Issue type for the Jira issue, e.g. Build, Bug", Required: true},
	Option{Key: KeySummary, Env: "FL_CREATE_JIRA_ISSUE_SUMMARY", Description: "The summary of the issue", Required: true},
	Option{Key: KeyVersionName, Env: "FL_CREATE_JIRA_ISSUE_VERSION_NAME", Description: "The existing version the issue is attached to", Required: true},
	Option{Key: KeyDescription, Env: "FL_CREATE_JIRA_ISSUE_DESCRIPTION", Description: "The description text of the issue", Default: ""},
)

// CreateVersionOptions lists every parameter of the create-version action.
var CreateVersionOptions = withCommon(
	Option{Key: KeyProjectName, Env: "FL_JIRA_UTIL_PROJECT_NAME", Description: "Key of the Jira project (conflicts with project_id)"},
	Option{Key: KeyProjectID, Env: "FL_JIRA_UTIL_PROJECT_ID", Description: "Id of the Jira project (conflicts with project_name)"},
	Option{Key: KeyName, Env: "FL_CREATE_JIRA_VERSION_NAME", Description: "The name of the version, e.g. 1.0.0", Required: true},
	Option{Key: KeyDescription, Env: "FL_CREATE_JIRA_VERSION_DESCRIPTION", Description: "The description of the version", Default: ""},
	Option{Key: KeyArchived, Env: "FL_CREATE_JIRA_VERSION_ARCHIVED", Description: "Whether the version should be archived", Default: false},
	Option{Key: KeyReleased, Env: "FL_CREATE_JIRA_VERSION_RELEASED", Description: "Whether the version should be released", Default: false},
	Option{Key: KeyStartDate, Env: "FL_CREATE_JIRA_VERSION_START_DATE", Description: "The date this version starts on (YYYY-MM-DD, defaults to today)"},
	Option{Key: KeyUpdateIfExists, Env: "FL_CREATE_JIRA_VERSION_UPDATE_IF_EXISTS", Description: "Update the version when one with the same name exists", Default: false},
)

// CredentialOptions lists the parameters of the login and logout commands.
var CredentialOptions = withCommon()

func withCommon(opts ...Option) []Option {
	out := make([]Option, 0, len(connectionOptions)+len(opts)+len(ambientOptions))
	out = append(out, connectionOptions...)
	out = append(out, opts...)
	out = append(out, ambientOptions...)
	return out
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/jira-util/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "jira-util", "config.yaml")
}

// LoadConfig builds a Viper instance for the given options. Values resolve
// from explicit Set calls, then the options' environment variables, then
// the YAML file at path, then the option defaults. A missing file is not
// an error.
func LoadConfig(path string, opts []Option) (*viper.Viper, error) {
	v := viper.New()

	for _, o := range opts {
		if o.Default != nil {
			v.SetDefault(o.Key, o.Default)
		}
		if o.Env != "" {
			if err := v.BindEnv(o.Key, o.Env); err != nil {
				return nil, fmt.Errorf("binding %s to %s: %w", o.Key, o.Env, err)
			}
		}
	}

	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return v, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return v, nil
}

// ConnectionFromConfig reads the connection parameters from v.
func ConnectionFromConfig(v *viper.Viper) ConnectionConfig {
	return NewConnectionConfig(
		v.GetString(KeyURL),
		v.GetString(KeyUsername),
		v.GetString(KeyPassword),
	)
}

// CreateIssueParamsFromConfig reads the create-issue parameters from v.
func CreateIssueParamsFromConfig(v *viper.Viper) CreateIssueParams {
	return CreateIssueParams{
		Connection:    ConnectionFromConfig(v),
		ProjectKey:    v.GetString(KeyProjectName),
		IssueTypeName: v.GetString(KeyIssueTypeName),
		Summary:       v.GetString(KeySummary),
		VersionName:   v.GetString(KeyVersionName),
		Description:   v.GetString(KeyDescription),
	}
}

// CreateVersionParamsFromConfig reads the create-version parameters from v.
// Flag values that are not booleans are kept as problems and reported by
// Validate.
func CreateVersionParamsFromConfig(v *viper.Viper) CreateVersionParams {
	p := CreateVersionParams{
		Connection:  ConnectionFromConfig(v),
		ProjectName: v.GetString(KeyProjectName),
		ProjectID:   v.GetString(KeyProjectID),
		Name:        v.GetString(KeyName),
		Description: v.GetString(KeyDescription),
		StartDate:   v.GetString(KeyStartDate),
	}
	p.Archived = p.readBool(v, KeyArchived)
	p.Released = p.readBool(v, KeyReleased)
	p.UpdateIfExists = p.readBool(v, KeyUpdateIfExists)
	return p
}

func (p *CreateVersionParams) readBool(v *viper.Viper, key string) bool {
	b, err := Bool(v, key)
	if err != nil {
		p.invalid = append(p.invalid, err.Error())
	}
	return b
}

// Bool reads key from v as a boolean. Unlike viper's GetBool it rejects
// values such as "yes" or "on" instead of reading them as false. An unset
// or empty value is false.
func Bool(v *viper.Viper, key string) (bool, error) {
	raw := v.Get(key)
	if raw == nil {
		return false, nil
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return false, nil
	}

	b, err := cast.ToBoolE(raw)
	if err != nil {
		return false, fmt.Errorf("%s %q is not a boolean", key, fmt.Sprint(raw))
	}
	return b, nil
}

// SaveConnection writes the non-secret connection settings to the YAML
// file at path, keeping any other keys already present and creating parent
// directories if needed. The password is never written.
func SaveConnection(path, baseURL, username string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.Set(KeyURL, baseURL)
	v.Set(KeyUsername, username)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
