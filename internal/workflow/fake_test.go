package workflow

import (
	"context"
	"errors"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/tracker"
)

// fakeTracker is an in-memory tracker.Tracker that counts its calls.
type fakeTracker struct {
	projects map[string]*model.Project
	issues   map[string]*model.Issue
	versions map[string]*model.Version

	// errs forces the named method to fail.
	errs map[string]error

	// noID makes CreateIssue and CreateVersion succeed without an id.
	noID bool

	calls  map[string]int
	nextID int

	createdIssues  []model.IssueDraft
	createdDrafts  []model.VersionDraft
	updates        []model.VersionUpdate
	updatedIDs     []string
	projectLookups []string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		projects: make(map[string]*model.Project),
		issues:   make(map[string]*model.Issue),
		versions: make(map[string]*model.Version),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
		nextID:   500,
	}
}

// addProject registers p under both its key and its id.
func (f *fakeTracker) addProject(p *model.Project) {
	f.projects[p.Key] = p
	f.projects[p.ID] = p
	for i := range p.Versions {
		v := p.Versions[i]
		f.versions[v.ID] = &v
	}
}

func (f *fakeTracker) mutations() int {
	return f.calls["CreateIssue"] + f.calls["CreateVersion"] + f.calls["UpdateVersion"]
}

func (f *fakeTracker) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeTracker) GetProject(_ context.Context, keyOrID string) (*model.Project, error) {
	f.calls["GetProject"]++
	f.projectLookups = append(f.projectLookups, keyOrID)
	if err := f.errs["GetProject"]; err != nil {
		return nil, err
	}
	p, ok := f.projects[keyOrID]
	if !ok {
		return nil, &tracker.HTTPError{Method: "GET", Path: "rest/api/2/project/" + keyOrID, StatusCode: 404, Body: `{"errorMessages":["No project"]}`}
	}
	return p, nil
}

func (f *fakeTracker) CreateIssue(_ context.Context, draft model.IssueDraft) (string, error) {
	f.calls["CreateIssue"]++
	if err := f.errs["CreateIssue"]; err != nil {
		return "", err
	}
	f.createdIssues = append(f.createdIssues, draft)
	if f.noID {
		return "", nil
	}
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.issues[id] = &model.Issue{
		ID:          id,
		Key:         "PROJ-" + strconv.Itoa(len(f.issues)+1),
		ProjectID:   draft.ProjectID,
		IssueTypeID: draft.IssueTypeID,
		VersionIDs:  draft.VersionIDs,
		Summary:     draft.Summary,
		Description: draft.Description,
	}
	return id, nil
}

func (f *fakeTracker) GetIssue(_ context.Context, id string) (*model.Issue, error) {
	f.calls["GetIssue"]++
	if err := f.errs["GetIssue"]; err != nil {
		return nil, err
	}
	issue, ok := f.issues[id]
	if !ok {
		return nil, &tracker.HTTPError{Method: "GET", Path: "rest/api/2/issue/" + id, StatusCode: 404}
	}
	return issue, nil
}

func (f *fakeTracker) CreateVersion(_ context.Context, draft model.VersionDraft) (string, error) {
	f.calls["CreateVersion"]++
	if err := f.errs["CreateVersion"]; err != nil {
		return "", err
	}
	f.createdDrafts = append(f.createdDrafts, draft)
	if f.noID {
		return "", nil
	}
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.versions[id] = &model.Version{
		ID:          id,
		Name:        draft.Name,
		Description: draft.Description,
		Archived:    draft.Archived,
		Released:    draft.Released,
		StartDate:   draft.StartDate,
		ProjectID:   draft.ProjectID,
	}
	return id, nil
}

func (f *fakeTracker) UpdateVersion(_ context.Context, id string, update model.VersionUpdate) error {
	f.calls["UpdateVersion"]++
	if err := f.errs["UpdateVersion"]; err != nil {
		return err
	}
	v, ok := f.versions[id]
	if !ok {
		return &tracker.HTTPError{Method: "PUT", Path: "rest/api/2/version/" + id, StatusCode: 404}
	}
	f.updates = append(f.updates, update)
	f.updatedIDs = append(f.updatedIDs, id)
	v.Description = update.Description
	v.Archived = update.Archived
	v.Released = update.Released
	v.StartDate = update.StartDate
	return nil
}

func (f *fakeTracker) GetVersion(_ context.Context, id string) (*model.Version, error) {
	f.calls["GetVersion"]++
	if err := f.errs["GetVersion"]; err != nil {
		return nil, err
	}
	v, ok := f.versions[id]
	if !ok {
		return nil, &tracker.HTTPError{Method: "GET", Path: "rest/api/2/version/" + id, StatusCode: 404}
	}
	return v, nil
}

// factoryFor returns a tracker.Factory handing out f and recording the
// connection it was asked for.
func factoryFor(f *fakeTracker, got *model.ConnectionConfig) tracker.Factory {
	return func(conn model.ConnectionConfig) (tracker.Tracker, error) {
		if got != nil {
			*got = conn
		}
		return f, nil
	}
}

func failingFactory(model.ConnectionConfig) (tracker.Tracker, error) {
	return nil, errors.New("no client")
}

func testConnection() model.ConnectionConfig {
	return model.NewConnectionConfig("https://jira.example.com", "ci-bot", "s3cret")
}

func testProject() *model.Project {
	return &model.Project{
		ID:   "10000",
		Key:  "PROJ",
		Name: "Project",
		IssueTypes: []model.IssueType{
			{ID: "1", Name: "Bug"},
			{ID: "3", Name: "Task"},
		},
		Versions: []model.Version{
			{ID: "200", Name: "1.0.0", ProjectID: "10000"},
			{ID: "201", Name: "1.1.0", ProjectID: "10000", Description: "old", StartDate: "2024-01-01"},
		},
	}
}

func newTestWorkflow(f *fakeTracker, opts ...Option) *Workflow {
	return New(factoryFor(f, nil), arbor.NewLogger(), opts...)
}
