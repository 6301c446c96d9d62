package model

// Project is a tracker project together with the issue types and
// versions available in it.
type Project struct {
	ID         string      `json:"id"`
	Key        string      `json:"key"`
	Name       string      `json:"name"`
	IssueTypes []IssueType `json:"issueTypes"`
	Versions   []Version   `json:"versions"`
}

// IssueType is a tracker-defined category for an issue (Bug, Task, ...).
type IssueType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Version is a release marker of a project.
type Version struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Archived    bool   `json:"archived"`
	Released    bool   `json:"released"`
	StartDate   string `json:"startDate"`
	ProjectID   string `json:"projectId"`
}

// FindIssueType returns the first issue type whose name equals name exactly.
func (p *Project) FindIssueType(name string) (IssueType, bool) {
	for _, it := range p.IssueTypes {
		if it.Name == name {
			return it, true
		}
	}
	return IssueType{}, false
}

// FindVersion returns the first version whose name equals name exactly.
// Duplicate names are resolved in listing order.
func (p *Project) FindVersion(name string) (Version, bool) {
	for _, v := range p.Versions {
		if v.Name == name {
			return v, true
		}
	}
	return Version{}, false
}

// VersionDraft holds the fields sent when creating a version.
type VersionDraft struct {
	Name        string
	Description string
	Archived    bool
	Released    bool
	StartDate   string
	ProjectID   string
}

// VersionUpdate holds the fields sent when updating an existing version.
// Name and project are never changed by an update.
type VersionUpdate struct {
	Description string
	Archived    bool
	Released    bool
	StartDate   string
}
