package jira

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	gojira "github.com/andygrunwald/go-jira"

	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/tracker"
)

// Adapter implements tracker.Tracker for Jira Server/DC and Cloud.
type Adapter struct {
	client *Client
}

var _ tracker.Tracker = (*Adapter)(nil)

// NewAdapter creates a new Jira adapter for the given connection.
func NewAdapter(conn model.ConnectionConfig) (*Adapter, error) {
	client, err := NewClient(conn)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

// Factory is a tracker.Factory building Jira adapters.
func Factory(conn model.ConnectionConfig) (tracker.Tracker, error) {
	return NewAdapter(conn)
}

// GetProject fetches a project by key or id via GET /rest/api/2/project/{key}.
func (a *Adapter) GetProject(
	ctx context.Context,
	keyOrID string,
) (*model.Project, error) {
	path := "rest/api/2/project/" + keyOrID

	var project *gojira.Project
	err := a.client.call(http.MethodGet, path, func() (*gojira.Response, error) {
		p, resp, err := a.client.api.Project.GetWithContext(ctx, keyOrID)
		project = p
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	return toProject(project), nil
}

// CreateIssue creates an issue via POST /rest/api/2/issue.
func (a *Adapter) CreateIssue(
	ctx context.Context,
	draft model.IssueDraft,
) (string, error) {
	versions := make([]idRef, 0, len(draft.VersionIDs))
	for _, id := range draft.VersionIDs {
		versions = append(versions, idRef{ID: id})
	}

	body := issueCreateRequest{
		Fields: issueCreateFields{
			IssueType:   idRef{ID: draft.IssueTypeID},
			Project:     idRef{ID: draft.ProjectID},
			Versions:    versions,
			Summary:     draft.Summary,
			Description: draft.Description,
		},
	}

	var created createdIssue
	if err := a.client.do(ctx, http.MethodPost, "rest/api/2/issue", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// GetIssue fetches an issue via GET /rest/api/2/issue/{id}.
func (a *Adapter) GetIssue(
	ctx context.Context,
	id string,
) (*model.Issue, error) {
	path := "rest/api/2/issue/" + id

	var issue *gojira.Issue
	err := a.client.call(http.MethodGet, path, func() (*gojira.Response, error) {
		i, resp, err := a.client.api.Issue.GetWithContext(ctx, id, nil)
		issue = i
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	return toIssue(issue), nil
}

// CreateVersion creates a version via POST /rest/api/2/version.
func (a *Adapter) CreateVersion(
	ctx context.Context,
	draft model.VersionDraft,
) (string, error) {
	projectID, err := strconv.Atoi(draft.ProjectID)
	if err != nil {
		return "", fmt.Errorf("project id %q is not numeric: %w", draft.ProjectID, err)
	}

	body := versionCreateRequest{
		Name:        draft.Name,
		Description: draft.Description,
		Archived:    draft.Archived,
		Released:    draft.Released,
		StartDate:   draft.StartDate,
		ProjectID:   projectID,
	}

	var created versionResponse
	if err := a.client.do(ctx, http.MethodPost, "rest/api/2/version", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateVersion updates a version via PUT /rest/api/2/version/{id}.
func (a *Adapter) UpdateVersion(
	ctx context.Context,
	id string,
	update model.VersionUpdate,
) error {
	body := versionUpdateRequest{
		Description: update.Description,
		Archived:    update.Archived,
		Released:    update.Released,
		StartDate:   update.StartDate,
	}

	// Some deployments answer 204 with no body.
	return a.client.do(ctx, http.MethodPut, "rest/api/2/version/"+id, body, nil)
}

// GetVersion fetches a version via GET /rest/api/2/version/{id}.
func (a *Adapter) GetVersion(
	ctx context.Context,
	id string,
) (*model.Version, error) {
	var v versionResponse
	if err := a.client.do(ctx, http.MethodGet, "rest/api/2/version/"+id, nil, &v); err != nil {
		return nil, err
	}
	return toVersion(v), nil
}

// toProject maps a go-jira project onto the model. Only the version fields
// needed for lookup are taken from the project listing; full version state
// comes from GetVersion.
func toProject(p *gojira.Project) *model.Project {
	if p == nil {
		return &model.Project{}
	}

	out := &model.Project{
		ID:         p.ID,
		Key:        p.Key,
		Name:       p.Name,
		IssueTypes: make([]model.IssueType, 0, len(p.IssueTypes)),
		Versions:   make([]model.Version, 0, len(p.Versions)),
	}
	for _, it := range p.IssueTypes {
		out.IssueTypes = append(out.IssueTypes, model.IssueType{
			ID:   it.ID,
			Name: it.Name,
		})
	}
	for _, v := range p.Versions {
		out.Versions = append(out.Versions, model.Version{
			ID:          v.ID,
			Name:        v.Name,
			Description: v.Description,
			StartDate:   v.StartDate,
			ProjectID:   projectIDString(v.ProjectID, p.ID),
		})
	}
	return out
}

func toIssue(i *gojira.Issue) *model.Issue {
	if i == nil {
		return &model.Issue{}
	}

	out := &model.Issue{
		ID:  i.ID,
		Key: i.Key,
	}
	if f := i.Fields; f != nil {
		out.ProjectID = f.Project.ID
		out.IssueTypeID = f.Type.ID
		out.Summary = f.Summary
		out.Description = f.Description
		for _, v := range f.AffectsVersions {
			if v != nil {
				out.VersionIDs = append(out.VersionIDs, v.ID)
			}
		}
	}
	return out
}

func toVersion(v versionResponse) *model.Version {
	return &model.Version{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Archived:    v.Archived,
		Released:    v.Released,
		StartDate:   v.StartDate,
		ProjectID:   projectIDString(v.ProjectID, ""),
	}
}

func projectIDString(id int, fallback string) string {
	if id == 0 {
		return fallback
	}
	return strconv.Itoa(id)
}
