// Package workflow implements the create-issue and create-version pipeline
// actions: a strictly ordered sequence of tracker calls per invocation.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/tracker"
)

// Workflow runs the tracker actions. It holds no state between calls:
// every call builds its own tracker client and fetches fresh data.
type Workflow struct {
	factory tracker.Factory
	logger  arbor.ILogger
	now     func() time.Time
}

// Option customizes a Workflow.
type Option func(*Workflow)

// WithClock overrides the clock used for default start dates.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// New creates a Workflow that builds tracker clients with factory.
func New(factory tracker.Factory, logger arbor.ILogger, opts ...Option) *Workflow {
	w := &Workflow{
		factory: factory,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// runLogger returns a logger tagged with a fresh id for one invocation.
func (w *Workflow) runLogger(op Op) arbor.ILogger {
	log := w.logger.WithCorrelationId(uuid.NewString())
	log.Debug().Str("op", string(op)).Msg("Starting action")
	return log
}

// connect builds the tracker client for one invocation.
func (w *Workflow) connect(op Op, conn model.ConnectionConfig) (tracker.Tracker, error) {
	t, err := w.factory(conn)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindUnexpected, Err: fmt.Errorf("building tracker client: %w", err)}
	}
	return t, nil
}

// resolveProject fetches the project identified by keyOrID. A 404 or a
// project without id is reported as ProjectNotFound.
func (w *Workflow) resolveProject(
	ctx context.Context,
	log arbor.ILogger,
	op Op,
	t tracker.Tracker,
	keyOrID string,
) (*model.Project, error) {
	log.Debug().Str("project", keyOrID).Msg("Resolving project")

	project, err := t.GetProject(ctx, keyOrID)
	if err != nil {
		if tracker.IsNotFound(err) {
			return nil, notFoundError(op, ReasonProjectNotFound, keyOrID, err)
		}
		return nil, classify(op, err)
	}
	if project == nil || project.ID == "" {
		return nil, notFoundError(op, ReasonProjectNotFound, keyOrID, nil)
	}

	log.Debug().
		Str("project_id", project.ID).
		Int("issue_types", len(project.IssueTypes)).
		Int("versions", len(project.Versions)).
		Msg("Project resolved")
	return project, nil
}

// fail logs the terminal failure of an action and returns it as *Error.
func (w *Workflow) fail(log arbor.ILogger, op Op, err error) error {
	wfErr := classify(op, err)
	log.Error().
		Err(err).
		Str("op", string(op)).
		Str("kind", wfErr.Kind.String()).
		Msg("Action failed")
	return wfErr
}
