package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/tracker"
)

func validIssueParams() model.CreateIssueParams {
	return model.CreateIssueParams{
		Connection:    testConnection(),
		ProjectKey:    "PROJ",
		IssueTypeName: "Bug",
		Summary:       "Build 42 failed",
		VersionName:   "1.0.0",
		Description:   "See the pipeline log",
	}
}

func TestCreateIssue_Success(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())

	var conn model.ConnectionConfig
	wf := New(factoryFor(f, &conn), arbor.NewLogger())
	lane := NewLaneContext(nil)

	res, err := wf.CreateIssue(context.Background(), validIssueParams(), lane)
	require.NoError(t, err)

	assert.Equal(t, "501", res.ID)
	assert.Equal(t, "PROJ-1", res.Key)

	id, ok := lane.Get(KeyIssueID)
	require.True(t, ok)
	assert.Equal(t, res.ID, id)
	key, ok := lane.Get(KeyIssueKey)
	require.True(t, ok)
	assert.Equal(t, res.Key, key)

	require.Len(t, f.createdIssues, 1)
	draft := f.createdIssues[0]
	assert.Equal(t, "10000", draft.ProjectID)
	assert.Equal(t, "1", draft.IssueTypeID)
	assert.Equal(t, []string{"200"}, draft.VersionIDs)
	assert.Equal(t, "Build 42 failed", draft.Summary)
	assert.Equal(t, "See the pipeline log", draft.Description)

	assert.Equal(t, "https://jira.example.com", conn.BaseURL)
	assert.Equal(t, "ci-bot", conn.Username)
	assert.Equal(t, "s3cret", conn.Password)
	assert.Equal(t, model.AuthModeBasic, conn.AuthMode)
	assert.Equal(t, model.DefaultReadTimeout, conn.ReadTimeout)

	assert.Equal(t, 1, f.calls["GetProject"])
	assert.Equal(t, 1, f.calls["CreateIssue"])
	assert.Equal(t, 1, f.calls["GetIssue"])
	assert.Equal(t, 0, f.calls["CreateVersion"])
}

func TestCreateIssue_EmptyDescription(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())

	params := validIssueParams()
	params.Description = ""

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), params, nil)
	require.NoError(t, err)

	require.Len(t, f.createdIssues, 1)
	assert.Equal(t, "", f.createdIssues[0].Description)
}

func TestCreateIssue_NilLane(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())

	res, err := newTestWorkflow(f).CreateIssue(context.Background(), validIssueParams(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
}

func TestCreateIssue_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *model.CreateIssueParams)
		want   []string
	}{
		{
			name:   "missing summary",
			mutate: func(p *model.CreateIssueParams) { p.Summary = "" },
			want:   []string{"no summary given"},
		},
		{
			name:   "missing version name",
			mutate: func(p *model.CreateIssueParams) { p.VersionName = "" },
			want:   []string{"no version_name given"},
		},
		{
			name: "missing several",
			mutate: func(p *model.CreateIssueParams) {
				p.Connection.BaseURL = ""
				p.Connection.Password = ""
				p.ProjectKey = ""
			},
			want: []string{"no url given", "no password given", "no project_name given"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeTracker()
			f.addProject(testProject())

			params := validIssueParams()
			tt.mutate(&params)
			lane := NewLaneContext(nil)

			_, err := newTestWorkflow(f).CreateIssue(context.Background(), params, lane)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindConfiguration))

			var wfErr *Error
			require.True(t, errors.As(err, &wfErr))
			assert.Equal(t, OpCreateIssue, wfErr.Op)
			for _, want := range tt.want {
				assert.Contains(t, wfErr.Problems, want)
			}

			assert.Equal(t, 0, f.total(), "no tracker call expected")
			assert.Empty(t, lane.Keys())
		})
	}
}

func TestCreateIssue_ConfigurationErrorNeverBuildsClient(t *testing.T) {
	built := false
	factory := func(model.ConnectionConfig) (tracker.Tracker, error) {
		built = true
		return newFakeTracker(), nil
	}

	params := validIssueParams()
	params.IssueTypeName = ""

	_, err := New(factory, arbor.NewLogger()).CreateIssue(context.Background(), params, nil)
	require.Error(t, err)
	assert.False(t, built)
}

func TestCreateIssue_ProjectNotFound(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())

	params := validIssueParams()
	params.ProjectKey = "NOPE"
	lane := NewLaneContext(nil)

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), params, lane)
	require.Error(t, err)

	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, HasReason(err, ReasonProjectNotFound))
	assert.Equal(t, "Failed to create new JIRA issue: Project 'NOPE' not found.", err.Error())
	assert.True(t, tracker.IsNotFound(err), "404 stays reachable through the chain")
	assert.Equal(t, 0, f.mutations())
	assert.Empty(t, lane.Keys())
}

func TestCreateIssue_IssueTypeNotFound(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())

	params := validIssueParams()
	params.IssueTypeName = "bug"

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), params, nil)
	require.Error(t, err)

	assert.True(t, HasReason(err, ReasonIssueTypeNotFound))
	assert.Contains(t, err.Error(), "Issue type 'bug' not found.")
	assert.Equal(t, 0, f.mutations())
}

func TestCreateIssue_VersionNotFoundNeverCreatesVersion(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())

	params := validIssueParams()
	params.VersionName = "9.9.9"
	lane := NewLaneContext(nil)

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), params, lane)
	require.Error(t, err)

	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, HasReason(err, ReasonVersionNotFound))
	assert.Equal(t, "Failed to create new JIRA issue: Version '9.9.9' not found.", err.Error())
	assert.Equal(t, 0, f.calls["CreateVersion"])
	assert.Equal(t, 0, f.mutations())
	assert.Empty(t, lane.Keys())
}

func TestCreateIssue_DuplicateVersionNamesPickFirst(t *testing.T) {
	f := newFakeTracker()
	p := testProject()
	p.Versions = append(p.Versions, model.Version{ID: "299", Name: "1.0.0", ProjectID: "10000"})
	f.addProject(p)

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), validIssueParams(), nil)
	require.NoError(t, err)

	require.Len(t, f.createdIssues, 1)
	assert.Equal(t, []string{"200"}, f.createdIssues[0].VersionIDs)
}

func TestCreateIssue_TransportErrorKeepsBody(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())
	f.errs["CreateIssue"] = &tracker.HTTPError{
		Method:     "POST",
		Path:       "rest/api/2/issue",
		StatusCode: 400,
		Body:       `{"errors":{"summary":"Field 'summary' cannot be set."}}`,
	}
	lane := NewLaneContext(map[string]string{"EARLIER": "kept"})

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), validIssueParams(), lane)
	require.Error(t, err)

	assert.True(t, IsKind(err, KindTransport))
	assert.Equal(t,
		`Failed to create new JIRA issue: {"errors":{"summary":"Field 'summary' cannot be set."}}`,
		err.Error())
	assert.Equal(t, []string{"EARLIER"}, lane.Keys())
}

func TestCreateIssue_RefetchFailure(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())
	f.errs["GetIssue"] = &tracker.HTTPError{Method: "GET", Path: "rest/api/2/issue/501", StatusCode: 500, Body: "boom"}
	lane := NewLaneContext(nil)

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), validIssueParams(), lane)
	require.Error(t, err)

	assert.True(t, IsKind(err, KindTransport))
	assert.Equal(t, 1, f.calls["CreateIssue"])
	assert.Empty(t, lane.Keys())
}

func TestCreateIssue_FactoryFailure(t *testing.T) {
	_, err := New(failingFactory, arbor.NewLogger()).CreateIssue(context.Background(), validIssueParams(), nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnexpected))
	assert.Contains(t, err.Error(), "Failed to create new JIRA issue")
}

func TestCreateIssue_NetworkFault(t *testing.T) {
	f := newFakeTracker()
	f.errs["GetProject"] = &tracker.HTTPError{Method: "GET", Path: "rest/api/2/project/PROJ", Err: errors.New("connection refused")}

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), validIssueParams(), nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransport))
	assert.False(t, HasReason(err, ReasonProjectNotFound))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCreateIssue_CreatedWithoutID(t *testing.T) {
	f := newFakeTracker()
	f.addProject(testProject())
	f.noID = true
	lane := NewLaneContext(nil)

	_, err := newTestWorkflow(f).CreateIssue(context.Background(), validIssueParams(), lane)
	require.Error(t, err)

	assert.True(t, IsKind(err, KindUnexpected))
	assert.Equal(t, "Failed to create new JIRA issue: tracker returned no id for the created issue", err.Error())
	assert.Equal(t, 0, f.calls["GetIssue"])
	assert.Empty(t, lane.Keys())
}
