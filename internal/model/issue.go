package model

// Issue is a tracker issue as reported by the server.
type Issue struct {
	// ID is the opaque server identifier (e.g. "10042").
	ID string `json:"id"`

	// Key is the human-readable identifier (e.g. "PROJ-123").
	Key string `json:"key"`

	ProjectID   string   `json:"projectId"`
	IssueTypeID string   `json:"issueTypeId"`
	VersionIDs  []string `json:"versionIds"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
}

// IssueDraft holds the fields sent when creating an issue.
type IssueDraft struct {
	ProjectID   string
	IssueTypeID string
	VersionIDs  []string
	Summary     string
	Description string
}
