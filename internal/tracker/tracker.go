// Package tracker defines the contract between the pipeline actions and an
// issue tracker's REST API.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nhle/jira-util/internal/model"
)

// HTTPError is returned for any request that failed at the transport
// level: a non-2xx response or a network fault (StatusCode 0).
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int

	// Body is the raw response body, verbatim, when one was received.
	Body string

	Err error
}

func (e *HTTPError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsHTTPError reports whether err (or any error in its chain) is an HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// IsNotFound reports whether err is an HTTPError carrying a 404 status.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// Tracker is the set of remote calls the pipeline actions perform.
// Implementations must not cache: every call reflects server state.
type Tracker interface {
	// GetProject fetches a project by key or id, including its issue types
	// and versions.
	GetProject(ctx context.Context, keyOrID string) (*model.Project, error)

	// CreateIssue creates an issue and returns the server-assigned id.
	CreateIssue(ctx context.Context, draft model.IssueDraft) (string, error)

	// GetIssue fetches an issue by id or key.
	GetIssue(ctx context.Context, id string) (*model.Issue, error)

	// CreateVersion creates a version and returns the server-assigned id.
	CreateVersion(ctx context.Context, draft model.VersionDraft) (string, error)

	// UpdateVersion changes the mutable fields of an existing version.
	UpdateVersion(ctx context.Context, id string, update model.VersionUpdate) error

	// GetVersion fetches a version by id.
	GetVersion(ctx context.Context, id string) (*model.Version, error)
}

// Factory builds a Tracker from connection parameters. Building a client
// must not perform any network request.
type Factory func(conn model.ConnectionConfig) (Tracker, error)
