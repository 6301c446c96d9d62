package workflow

import "sort"

// Output keys published into the lane context for later pipeline steps.
const (
	KeyIssueID   = "CREATE_JIRA_ISSUE_ISSUE_ID"
	KeyIssueKey  = "CREATE_JIRA_ISSUE_ISSUE_KEY"
	KeyVersionID = "JIRA_UTIL_CREATE_JIRA_VERSION_VERSION_ID"
)

// Output documents one value an action publishes.
type Output struct {
	Key         string
	Description string
}

// IssueOutputs are the values published by CreateIssue.
var IssueOutputs = []Output{
	{Key: KeyIssueID, Description: "The id for the newly created JIRA issue"},
	{Key: KeyIssueKey, Description: "The key (e.g. MYPROJ-123) for the newly created JIRA issue"},
}

// VersionOutputs are the values published by CreateOrUpdateVersion.
var VersionOutputs = []Output{
	{Key: KeyVersionID, Description: "The versionId for the newly created or updated JIRA project version"},
}

// LaneContext is a caller-owned key/value store that actions record their
// outputs into. It is not safe for concurrent use.
type LaneContext struct {
	values map[string]string
}

// NewLaneContext returns an empty lane context, optionally seeded with
// values from earlier steps.
func NewLaneContext(seed map[string]string) *LaneContext {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &LaneContext{values: values}
}

// Set records value under key. Calling Set on a nil lane is a no-op.
func (l *LaneContext) Set(key, value string) {
	if l == nil {
		return
	}
	if l.values == nil {
		l.values = make(map[string]string)
	}
	l.values[key] = value
}

// Get returns the value recorded under key.
func (l *LaneContext) Get(key string) (string, bool) {
	if l == nil {
		return "", false
	}
	v, ok := l.values[key]
	return v, ok
}

// Values returns a copy of every recorded value.
func (l *LaneContext) Values() map[string]string {
	out := make(map[string]string)
	if l == nil {
		return out
	}
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// Keys returns the recorded keys in sorted order.
func (l *LaneContext) Keys() []string {
	if l == nil {
		return nil
	}
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
