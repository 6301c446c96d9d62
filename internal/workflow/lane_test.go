package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/tracker"
)

func TestLaneContext(t *testing.T) {
	seed := map[string]string{"B": "2", "A": "1"}
	lane := NewLaneContext(seed)

	lane.Set("C", "3")
	lane.Set("A", "one")

	assert.Equal(t, []string{"A", "B", "C"}, lane.Keys())
	v, ok := lane.Get("A")
	assert.True(t, ok)
	assert.Equal(t, "one", v)
	assert.Equal(t, "1", seed["A"], "seed map is copied")

	values := lane.Values()
	values["A"] = "changed"
	v, _ = lane.Get("A")
	assert.Equal(t, "one", v, "Values returns a copy")
}

func TestLaneContext_Nil(t *testing.T) {
	var lane *LaneContext

	lane.Set("A", "1")
	_, ok := lane.Get("A")
	assert.False(t, ok)
	assert.Empty(t, lane.Keys())
	assert.Empty(t, lane.Values())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "configuration",
			err:  configurationError(OpCreateVersion, model.ValidationErrors{"no name given", "no url given"}),
			want: "invalid parameters for create_jira_version: no name given; no url given",
		},
		{
			name: "issue type",
			err:  notFoundError(OpCreateIssue, ReasonIssueTypeNotFound, "Story", nil),
			want: "Failed to create new JIRA issue: Issue type 'Story' not found.",
		},
		{
			name: "transport without body",
			err:  classify(OpCreateIssue, &tracker.HTTPError{Method: "GET", Path: "x", Err: errors.New("timeout")}),
			want: "Failed to create new JIRA issue: GET x: timeout",
		},
		{
			name: "unexpected",
			err:  classify(OpCreateVersion, errors.New("bad json")),
			want: "Failed to create JIRA version: bad json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestClassifyKeepsWorkflowErrors(t *testing.T) {
	orig := notFoundError(OpCreateIssue, ReasonVersionNotFound, "1.0", nil)
	assert.Same(t, orig, classify(OpCreateIssue, orig))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "configuration", KindConfiguration.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "unexpected", KindUnexpected.String())
}
