package workflow

import (
	"context"
	"errors"

	"github.com/nhle/jira-util/internal/model"
)

// VersionResult holds the server-assigned id of a created or updated version.
type VersionResult struct {
	ID string

	// Created is false when an existing version was updated.
	Created bool
}

// VersionReturnValue documents the value CreateOrUpdateVersion returns.
const VersionReturnValue = "The versionId for the newly created or updated JIRA project version"

// CreateOrUpdateVersion creates a version named params.Name in the project,
// or updates the existing one with that name when params.UpdateIfExists is
// set. An existing version without UpdateIfExists is a conflict and nothing
// is changed.
//
// On success the id reported by the re-fetch is returned and recorded in
// lane (which may be nil) under KeyVersionID. Every failure is an *Error.
func (w *Workflow) CreateOrUpdateVersion(
	ctx context.Context,
	params model.CreateVersionParams,
	lane *LaneContext,
) (VersionResult, error) {
	const op = OpCreateVersion
	log := w.runLogger(op)

	if err := params.Validate(); err != nil {
		return VersionResult{}, w.fail(log, op, configurationError(op, err))
	}
	params = params.WithDefaults(w.now())

	t, err := w.connect(op, params.Connection)
	if err != nil {
		return VersionResult{}, w.fail(log, op, err)
	}

	projectRef := params.ProjectName
	if projectRef == "" {
		projectRef = params.ProjectID
	}

	project, err := w.resolveProject(ctx, log, op, t, projectRef)
	if err != nil {
		return VersionResult{}, w.fail(log, op, err)
	}

	existing, found := project.FindVersion(params.Name)

	var id string
	created := false
	switch {
	case !found:
		log.Debug().Str("name", params.Name).Msg("Creating version")
		id, err = t.CreateVersion(ctx, model.VersionDraft{
			Name:        params.Name,
			Description: params.Description,
			Archived:    params.Archived,
			Released:    params.Released,
			StartDate:   params.StartDate,
			ProjectID:   project.ID,
		})
		if err != nil {
			return VersionResult{}, w.fail(log, op, err)
		}
		if id == "" {
			return VersionResult{}, w.fail(log, op, errors.New("tracker returned no id for the created version"))
		}
		created = true

	case params.UpdateIfExists:
		log.Debug().Str("name", params.Name).Str("version_id", existing.ID).Msg("Updating version")
		err = t.UpdateVersion(ctx, existing.ID, model.VersionUpdate{
			Description: params.Description,
			Archived:    params.Archived,
			Released:    params.Released,
			StartDate:   params.StartDate,
		})
		if err != nil {
			return VersionResult{}, w.fail(log, op, err)
		}
		id = existing.ID

	default:
		return VersionResult{}, w.fail(log, op, &Error{
			Op:     op,
			Kind:   KindConflict,
			Reason: ReasonVersionAlreadyExists,
			Name:   params.Name,
		})
	}

	version, err := t.GetVersion(ctx, id)
	if err != nil {
		return VersionResult{}, w.fail(log, op, err)
	}
	if version.ID == "" {
		return VersionResult{}, w.fail(log, op, errors.New("tracker returned the version without id"))
	}

	result := VersionResult{ID: version.ID, Created: created}
	lane.Set(KeyVersionID, result.ID)

	log.Info().
		Str("version_id", result.ID).
		Str("name", params.Name).
		Bool("created", created).
		Msg("Saved Jira version")

	return result, nil
}
