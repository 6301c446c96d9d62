package jira

// idRef is a reference to another entity by id, as Jira expects in
// create payloads.
type idRef struct {
	ID string `json:"id"`
}

// issueCreateRequest is the body of POST /rest/api/2/issue.
type issueCreateRequest struct {
	Fields issueCreateFields `json:"fields"`
}

type issueCreateFields struct {
	IssueType   idRef   `json:"issuetype"`
	Project     idRef   `json:"project"`
	Versions    []idRef `json:"versions"`
	Summary     string  `json:"summary"`
	Description string  `json:"description"`
}

// createdIssue is the response of POST /rest/api/2/issue.
type createdIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// versionCreateRequest is the body of POST /rest/api/2/version.
type versionCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Archived    bool   `json:"archived"`
	Released    bool   `json:"released"`
	StartDate   string `json:"startDate,omitempty"`
	// Unlike other ids, Jira takes the project id as a number here.
	ProjectID int `json:"projectId"`
}

// versionUpdateRequest is the body of PUT /rest/api/2/version/{id}.
// Updates never rename a version or move it to another project.
type versionUpdateRequest struct {
	Description string `json:"description"`
	Archived    bool   `json:"archived"`
	Released    bool   `json:"released"`
	StartDate   string `json:"startDate,omitempty"`
}

// versionResponse is a version as returned by the version endpoints.
type versionResponse struct {
	Self        string `json:"self"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Archived    bool   `json:"archived"`
	Released    bool   `json:"released"`
	StartDate   string `json:"startDate"`
	ProjectID   int    `json:"projectId"`
}
