package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AuthModeBasic is the only authentication scheme supported for the tracker.
const AuthModeBasic = "basic"

// DefaultReadTimeout bounds every tracker request.
const DefaultReadTimeout = 120 * time.Second

// DateLayout is the ISO calendar date format used for version start dates.
const DateLayout = "2006-01-02"

// ConnectionConfig holds the tracker connection parameters for a single call.
type ConnectionConfig struct {
	BaseURL     string        `param:"url" validate:"required"`
	Username    string        `param:"username" validate:"required"`
	Password    string        `param:"password" validate:"required"`
	AuthMode    string        `param:"-"`
	ReadTimeout time.Duration `param:"-"`
}

// NewConnectionConfig returns a basic-auth connection with the default
// read timeout.
func NewConnectionConfig(baseURL, username, password string) ConnectionConfig {
	return ConnectionConfig{
		BaseURL:     baseURL,
		Username:    username,
		Password:    password,
		AuthMode:    AuthModeBasic,
		ReadTimeout: DefaultReadTimeout,
	}
}

// CreateIssueParams are the inputs of the create-issue action.
type CreateIssueParams struct {
	Connection ConnectionConfig

	// ProjectKey is the short project key (e.g. "PROJ"), not the opaque id.
	ProjectKey    string `param:"project_name" validate:"required"`
	IssueTypeName string `param:"issue_type_name" validate:"required"`
	Summary       string `param:"summary" validate:"required"`
	VersionName   string `param:"version_name" validate:"required"`
	Description   string `param:"description"`
}

// Validate reports every invalid or missing parameter at once.
func (p CreateIssueParams) Validate() error {
	return validateStruct(p)
}

// CreateVersionParams are the inputs of the create-version action.
// Exactly one of ProjectName and ProjectID must be set.
type CreateVersionParams struct {
	Connection ConnectionConfig

	ProjectName    string `param:"project_name" validate:"required_without=ProjectID,excluded_with=ProjectID"`
	ProjectID      string `param:"project_id"`
	Name           string `param:"name" validate:"required"`
	Description    string `param:"description"`
	Archived       bool   `param:"archived"`
	Released       bool   `param:"released"`
	StartDate      string `param:"start_date" validate:"omitempty,datetime=2006-01-02"`
	UpdateIfExists bool   `param:"update_if_exists"`

	// invalid holds problems found while reading the parameters.
	invalid ValidationErrors
}

// Validate reports every invalid or missing parameter at once.
func (p CreateVersionParams) Validate() error {
	return withProblems(validateStruct(p), p.invalid)
}

// WithDefaults returns a copy of p with StartDate set to the calendar date
// of now when it was omitted.
func (p CreateVersionParams) WithDefaults(now time.Time) CreateVersionParams {
	if p.StartDate == "" {
		p.StartDate = now.Format(DateLayout)
	}
	return p
}

// ValidationErrors lists every configuration problem found in one pass.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// withProblems appends extra to the problems in err.
func withProblems(err error, extra ValidationErrors) error {
	if len(extra) == 0 {
		return err
	}

	out := ValidationErrors{}
	if err != nil {
		var problems ValidationErrors
		if !errors.As(err, &problems) {
			problems = ValidationErrors{err.Error()}
		}
		out = append(out, problems...)
	}
	return append(out, extra...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("param"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{err.Error()}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, describe(fe))
	}
	return out
}

// paramNames maps struct field names used in cross-field tags to the
// parameter keys users pass.
var paramNames = map[string]string{
	"ProjectID":   KeyProjectID,
	"ProjectName": KeyProjectName,
}

func describe(fe validator.FieldError) string {
	other := paramNames[fe.Param()]
	if other == "" {
		other = fe.Param()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("no %s given", fe.Field())
	case "required_without":
		return fmt.Sprintf("one of %s or %s must be given", fe.Field(), other)
	case "excluded_with":
		return fmt.Sprintf("%s and %s cannot be used in one run", fe.Field(), other)
	case "datetime":
		return fmt.Sprintf("%s %q is not a date in YYYY-MM-DD form", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
