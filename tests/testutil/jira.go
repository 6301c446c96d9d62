package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/nhle/jira-util/internal/model"
)

// Request is one request received by a FakeJira server.
type Request struct {
	Method   string
	Path     string
	Body     []byte
	Username string
	Password string
}

// JSON decodes the request body into a generic map.
func (r Request) JSON(t *testing.T) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	if err := json.Unmarshal(r.Body, &out); err != nil {
		t.Fatalf("decoding body of %s %s: %v", r.Method, r.Path, err)
	}
	return out
}

// failure is a canned response.
type failure struct {
	status int
	body   string
}

type fakeIssue struct {
	ID          string
	Key         string
	ProjectID   string
	IssueTypeID string
	VersionIDs  []string
	Summary     string
	Description string
}

// FakeJira is an in-memory Jira REST API v2 served over httptest. It
// implements just the project, issue and version endpoints used by the
// pipeline actions.
type FakeJira struct {
	Server *httptest.Server

	mu       sync.Mutex
	projects []*model.Project
	versions map[string]*model.Version
	issues   map[string]*fakeIssue
	failures map[string]failure
	requests []Request
	nextID   int
}

// NewFakeJira starts a fake Jira server that is closed when the test ends.
func NewFakeJira(t *testing.T) *FakeJira {
	t.Helper()

	f := &FakeJira{
		versions: make(map[string]*model.Version),
		issues:   make(map[string]*fakeIssue),
		failures: make(map[string]failure),
		nextID:   10000,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)

	return f
}

// URL returns the base URL of the server.
func (f *FakeJira) URL() string {
	return f.Server.URL
}

// AddProject registers a project with its issue types and versions. Version
// ids are assigned by the caller and their ProjectID is set to id.
func (f *FakeJira) AddProject(id, key string, issueTypes []model.IssueType, versions ...model.Version) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := &model.Project{ID: id, Key: key, Name: key + " project", IssueTypes: issueTypes}
	for i := range versions {
		v := versions[i]
		v.ProjectID = id
		f.versions[v.ID] = &v
		p.Versions = append(p.Versions, v)
	}
	f.projects = append(f.projects, p)
}

// Fail makes every request matching method and path answer with status and
// body instead of being served.
func (f *FakeJira) Fail(method, path string, status int, body string) {
	f.Respond(method, path, status, body)
}

// Respond makes every request matching method and path answer with status
// and body without touching the stored state. Unlike Fail it is meant for
// success statuses such as 204.
func (f *FakeJira) Respond(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = failure{status: status, body: body}
}

// Requests returns every request received so far.
func (f *FakeJira) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Matching returns the received requests with the given method whose path
// starts with prefix.
func (f *FakeJira) Matching(method, prefix string) []Request {
	var out []Request
	for _, r := range f.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// Mutations returns the number of POST, PUT and DELETE requests received.
func (f *FakeJira) Mutations() int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method != http.MethodGet {
			n++
		}
	}
	return n
}

// Version returns the stored state of a version.
func (f *FakeJira) Version(id string) (model.Version, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.versions[id]
	if !ok {
		return model.Version{}, false
	}
	return *v, true
}

func (f *FakeJira) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	user, pass, _ := r.BasicAuth()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		Body:     body,
		Username: user,
		Password: pass,
	})

	if fail, ok := f.failures[r.Method+" "+r.URL.Path]; ok {
		if fail.body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(fail.status)
		_, _ = io.WriteString(w, fail.body)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/rest/api/2/")
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "project/"):
		f.getProject(w, strings.TrimPrefix(path, "project/"))
	case r.Method == http.MethodPost && path == "issue":
		f.createIssue(w, body)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "issue/"):
		f.getIssue(w, strings.TrimPrefix(path, "issue/"))
	case r.Method == http.MethodPost && path == "version":
		f.createVersion(w, body)
	case r.Method == http.MethodPut && strings.HasPrefix(path, "version/"):
		f.updateVersion(w, strings.TrimPrefix(path, "version/"), body)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "version/"):
		f.getVersion(w, strings.TrimPrefix(path, "version/"))
	default:
		writeError(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
	}
}

func (f *FakeJira) findProject(keyOrID string) *model.Project {
	for _, p := range f.projects {
		if p.Key == keyOrID || p.ID == keyOrID {
			return p
		}
	}
	return nil
}

func (f *FakeJira) getProject(w http.ResponseWriter, keyOrID string) {
	p := f.findProject(keyOrID)
	if p == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No project could be found with key '%s'.", keyOrID))
		return
	}

	issueTypes := make([]map[string]interface{}, 0, len(p.IssueTypes))
	for _, it := range p.IssueTypes {
		issueTypes = append(issueTypes, map[string]interface{}{"id": it.ID, "name": it.Name})
	}
	versions := make([]map[string]interface{}, 0, len(p.Versions))
	for _, v := range p.Versions {
		versions = append(versions, versionJSON(*f.versions[v.ID]))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         p.ID,
		"key":        p.Key,
		"name":       p.Name,
		"issueTypes": issueTypes,
		"versions":   versions,
	})
}

func (f *FakeJira) createIssue(w http.ResponseWriter, body []byte) {
	var req struct {
		Fields struct {
			IssueType   struct{ ID string }   `json:"issuetype"`
			Project     struct{ ID string }   `json:"project"`
			Versions    []struct{ ID string } `json:"versions"`
			Summary     string                `json:"summary"`
			Description string                `json:"description"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := f.findProject(req.Fields.Project.ID)
	if p == nil {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}

	f.nextID++
	issue := &fakeIssue{
		ID:          strconv.Itoa(f.nextID),
		Key:         fmt.Sprintf("%s-%d", p.Key, len(f.issues)+1),
		ProjectID:   p.ID,
		IssueTypeID: req.Fields.IssueType.ID,
		Summary:     req.Fields.Summary,
		Description: req.Fields.Description,
	}
	for _, v := range req.Fields.Versions {
		issue.VersionIDs = append(issue.VersionIDs, v.ID)
	}
	f.issues[issue.ID] = issue

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   issue.ID,
		"key":  issue.Key,
		"self": f.Server.URL + "/rest/api/2/issue/" + issue.ID,
	})
}

func (f *FakeJira) getIssue(w http.ResponseWriter, id string) {
	issue, ok := f.issues[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Issue Does Not Exist")
		return
	}

	versions := make([]map[string]interface{}, 0, len(issue.VersionIDs))
	for _, vid := range issue.VersionIDs {
		versions = append(versions, map[string]interface{}{"id": vid})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":   issue.ID,
		"key":  issue.Key,
		"self": f.Server.URL + "/rest/api/2/issue/" + issue.ID,
		"fields": map[string]interface{}{
			"summary":     issue.Summary,
			"description": issue.Description,
			"issuetype":   map[string]interface{}{"id": issue.IssueTypeID},
			"project":     map[string]interface{}{"id": issue.ProjectID},
			"versions":    versions,
		},
	})
}

func (f *FakeJira) createVersion(w http.ResponseWriter, body []byte) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Archived    bool   `json:"archived"`
		Released    bool   `json:"released"`
		StartDate   string `json:"startDate"`
		ProjectID   int    `json:"projectId"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := f.findProject(strconv.Itoa(req.ProjectID))
	if p == nil {
		writeError(w, http.StatusBadRequest, "Project must be specified to create a version.")
		return
	}

	f.nextID++
	v := &model.Version{
		ID:          strconv.Itoa(f.nextID),
		Name:        req.Name,
		Description: req.Description,
		Archived:    req.Archived,
		Released:    req.Released,
		StartDate:   req.StartDate,
		ProjectID:   p.ID,
	}
	f.versions[v.ID] = v
	p.Versions = append(p.Versions, *v)

	writeJSON(w, http.StatusCreated, versionJSON(*v))
}

func (f *FakeJira) updateVersion(w http.ResponseWriter, id string, body []byte) {
	v, ok := f.versions[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find version for id '"+id+"'")
		return
	}

	var req map[string]interface{}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s, ok := req["name"].(string); ok {
		v.Name = s
	}
	if s, ok := req["description"].(string); ok {
		v.Description = s
	}
	if b, ok := req["archived"].(bool); ok {
		v.Archived = b
	}
	if b, ok := req["released"].(bool); ok {
		v.Released = b
	}
	if s, ok := req["startDate"].(string); ok {
		v.StartDate = s
	}
	if n, ok := req["projectId"].(float64); ok {
		v.ProjectID = strconv.Itoa(int(n))
	}

	writeJSON(w, http.StatusOK, versionJSON(*v))
}

func (f *FakeJira) getVersion(w http.ResponseWriter, id string) {
	v, ok := f.versions[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find version for id '"+id+"'")
		return
	}
	writeJSON(w, http.StatusOK, versionJSON(*v))
}

func versionJSON(v model.Version) map[string]interface{} {
	projectID, _ := strconv.Atoi(v.ProjectID)
	return map[string]interface{}{
		"id":          v.ID,
		"name":        v.Name,
		"description": v.Description,
		"archived":    v.Archived,
		"released":    v.Released,
		"startDate":   v.StartDate,
		"projectId":   projectID,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"errorMessages": []string{msg},
		"errors":        map[string]string{},
	})
}
