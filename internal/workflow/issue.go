package workflow

import (
	"context"
	"errors"

	"github.com/nhle/jira-util/internal/model"
)

// IssueResult holds the server-assigned identifiers of a created issue.
type IssueResult struct {
	ID  string
	Key string
}

// IssueReturnValue documents the value CreateIssue returns.
const IssueReturnValue = "The id for the newly created JIRA issue"

// CreateIssue creates an issue in an existing project, attached to an
// existing version. The version is never created here.
//
// On success the id and key reported by the re-fetch are returned and
// recorded in lane (which may be nil) under KeyIssueID and KeyIssueKey.
// Every failure is an *Error.
func (w *Workflow) CreateIssue(
	ctx context.Context,
	params model.CreateIssueParams,
	lane *LaneContext,
) (IssueResult, error) {
	const op = OpCreateIssue
	log := w.runLogger(op)

	if err := params.Validate(); err != nil {
		return IssueResult{}, w.fail(log, op, configurationError(op, err))
	}

	t, err := w.connect(op, params.Connection)
	if err != nil {
		return IssueResult{}, w.fail(log, op, err)
	}

	project, err := w.resolveProject(ctx, log, op, t, params.ProjectKey)
	if err != nil {
		return IssueResult{}, w.fail(log, op, err)
	}

	issueType, ok := project.FindIssueType(params.IssueTypeName)
	if !ok {
		return IssueResult{}, w.fail(log, op, notFoundError(op, ReasonIssueTypeNotFound, params.IssueTypeName, nil))
	}

	version, ok := project.FindVersion(params.VersionName)
	if !ok {
		return IssueResult{}, w.fail(log, op, notFoundError(op, ReasonVersionNotFound, params.VersionName, nil))
	}

	log.Debug().
		Str("issue_type_id", issueType.ID).
		Str("version_id", version.ID).
		Msg("Creating issue")

	id, err := t.CreateIssue(ctx, model.IssueDraft{
		ProjectID:   project.ID,
		IssueTypeID: issueType.ID,
		VersionIDs:  []string{version.ID},
		Summary:     params.Summary,
		Description: params.Description,
	})
	if err != nil {
		return IssueResult{}, w.fail(log, op, err)
	}
	if id == "" {
		return IssueResult{}, w.fail(log, op, errors.New("tracker returned no id for the created issue"))
	}

	issue, err := t.GetIssue(ctx, id)
	if err != nil {
		return IssueResult{}, w.fail(log, op, err)
	}
	if issue.ID == "" || issue.Key == "" {
		return IssueResult{}, w.fail(log, op, errors.New("tracker returned the created issue without id or key"))
	}

	result := IssueResult{ID: issue.ID, Key: issue.Key}
	lane.Set(KeyIssueID, result.ID)
	lane.Set(KeyIssueKey, result.Key)

	log.Info().
		Str("issue_id", result.ID).
		Str("issue_key", result.Key).
		Str("project", params.ProjectKey).
		Msg("Created Jira issue")

	return result, nil
}
