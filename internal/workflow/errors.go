package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/tracker"
)

// Kind is the closed set of failure categories an action can report.
type Kind int

const (
	// KindUnexpected is any failure not covered by the other kinds.
	KindUnexpected Kind = iota
	// KindConfiguration is a missing, empty or conflicting parameter.
	// It is always detected before any network request.
	KindConfiguration
	// KindNotFound is a referenced remote entity that does not exist.
	KindNotFound
	// KindConflict is a create that would collide with an existing entity.
	KindConflict
	// KindTransport is a non-2xx response or a network fault.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransport:
		return "transport"
	default:
		return "unexpected"
	}
}

// Reason narrows NotFound and Conflict errors to the entity involved.
type Reason string

const (
	ReasonProjectNotFound      Reason = "ProjectNotFound"
	ReasonIssueTypeNotFound    Reason = "IssueTypeNotFound"
	ReasonVersionNotFound      Reason = "VersionNotFound"
	ReasonVersionAlreadyExists Reason = "VersionAlreadyExists"
)

// Op identifies the action that failed.
type Op string

const (
	OpCreateIssue   Op = "create_jira_issue"
	OpCreateVersion Op = "create_jira_version"
)

func (o Op) failurePrefix() string {
	switch o {
	case OpCreateIssue:
		return "Failed to create new JIRA issue"
	case OpCreateVersion:
		return "Failed to create JIRA version"
	default:
		return "Failed to run " + string(o)
	}
}

// Error is the only error type returned by the actions.
type Error struct {
	Op     Op
	Kind   Kind
	Reason Reason

	// Name is the user-supplied name that could not be resolved or
	// collided, for NotFound and Conflict errors.
	Name string

	// Problems lists every configuration problem for KindConfiguration.
	Problems []string

	// Body is the raw tracker response body for KindTransport.
	Body string

	Err error
}

func (e *Error) Error() string {
	if e.Kind == KindConfiguration {
		return "invalid parameters for " + string(e.Op) + ": " + strings.Join(e.Problems, "; ")
	}
	return e.Op.failurePrefix() + ": " + e.detail()
}

func (e *Error) detail() string {
	switch e.Reason {
	case ReasonProjectNotFound:
		return fmt.Sprintf("Project '%s' not found.", e.Name)
	case ReasonIssueTypeNotFound:
		return fmt.Sprintf("Issue type '%s' not found.", e.Name)
	case ReasonVersionNotFound:
		return fmt.Sprintf("Version '%s' not found.", e.Name)
	case ReasonVersionAlreadyExists:
		return fmt.Sprintf("Version '%s' already exists.", e.Name)
	}

	if e.Kind == KindTransport && e.Body != "" {
		return e.Body
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err (or any error in its chain) is an *Error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var wfErr *Error
	return errors.As(err, &wfErr) && wfErr.Kind == kind
}

// HasReason reports whether err (or any error in its chain) is an *Error
// with the given reason.
func HasReason(err error, reason Reason) bool {
	var wfErr *Error
	return errors.As(err, &wfErr) && wfErr.Reason == reason
}

func configurationError(op Op, err error) *Error {
	var problems model.ValidationErrors
	if !errors.As(err, &problems) {
		problems = model.ValidationErrors{err.Error()}
	}
	return &Error{Op: op, Kind: KindConfiguration, Problems: problems, Err: err}
}

func notFoundError(op Op, reason Reason, name string, cause error) *Error {
	return &Error{Op: op, Kind: KindNotFound, Reason: reason, Name: name, Err: cause}
}

// classify maps an error from the tracker layer onto the closed set of kinds.
func classify(op Op, err error) *Error {
	var wfErr *Error
	if errors.As(err, &wfErr) {
		return wfErr
	}

	var httpErr *tracker.HTTPError
	if errors.As(err, &httpErr) {
		return &Error{Op: op, Kind: KindTransport, Body: httpErr.Body, Err: err}
	}

	return &Error{Op: op, Kind: KindUnexpected, Err: err}
}
