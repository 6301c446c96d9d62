package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func problemsOf(t *testing.T, err error) ValidationErrors {
	t.Helper()

	var problems ValidationErrors
	require.True(t, errors.As(err, &problems), "expected ValidationErrors, got %T", err)
	return problems
}

func TestCreateIssueParams_Validate(t *testing.T) {
	p := CreateIssueParams{
		Connection:    NewConnectionConfig("https://jira.example.com", "u", "p"),
		ProjectKey:    "PROJ",
		IssueTypeName: "Bug",
		Summary:       "s",
		VersionName:   "1.0",
	}
	assert.NoError(t, p.Validate())

	empty := CreateIssueParams{}
	problems := problemsOf(t, empty.Validate())
	assert.ElementsMatch(t, ValidationErrors{
		"no url given",
		"no username given",
		"no password given",
		"no project_name given",
		"no issue_type_name given",
		"no summary given",
		"no version_name given",
	}, problems)
}

func TestCreateVersionParams_Validate(t *testing.T) {
	base := func() CreateVersionParams {
		return CreateVersionParams{
			Connection:  NewConnectionConfig("https://jira.example.com", "u", "p"),
			ProjectName: "PROJ",
			Name:        "1.0.0",
		}
	}

	t.Run("valid with project name", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("valid with project id", func(t *testing.T) {
		p := base()
		p.ProjectName = ""
		p.ProjectID = "10000"
		assert.NoError(t, p.Validate())
	})

	t.Run("neither project field", func(t *testing.T) {
		p := base()
		p.ProjectName = ""
		problems := problemsOf(t, p.Validate())
		assert.Equal(t, ValidationErrors{"one of project_name or project_id must be given"}, problems)
	})

	t.Run("both project fields", func(t *testing.T) {
		p := base()
		p.ProjectID = "10000"
		problems := problemsOf(t, p.Validate())
		assert.Equal(t, ValidationErrors{"project_name and project_id cannot be used in one run"}, problems)
	})

	t.Run("valid start date", func(t *testing.T) {
		p := base()
		p.StartDate = "2024-02-29"
		assert.NoError(t, p.Validate())
	})

	t.Run("bad start date", func(t *testing.T) {
		p := base()
		p.StartDate = "2024-13-01"
		problems := problemsOf(t, p.Validate())
		assert.Equal(t, ValidationErrors{`start_date "2024-13-01" is not a date in YYYY-MM-DD form`}, problems)
	})

	t.Run("all problems at once", func(t *testing.T) {
		p := CreateVersionParams{StartDate: "soon"}
		problems := problemsOf(t, p.Validate())
		assert.Len(t, problems, 6)
		assert.Contains(t, problems.Error(), "no name given")
	})
}

func TestCreateVersionParams_WithDefaults(t *testing.T) {
	now := time.Date(2025, 7, 4, 8, 0, 0, 0, time.UTC)

	p := CreateVersionParams{}.WithDefaults(now)
	assert.Equal(t, "2025-07-04", p.StartDate)

	p = CreateVersionParams{StartDate: "2020-01-01"}.WithDefaults(now)
	assert.Equal(t, "2020-01-01", p.StartDate)
}

func TestProject_Find(t *testing.T) {
	p := &Project{
		IssueTypes: []IssueType{{ID: "1", Name: "Bug"}, {ID: "2", Name: "Bug"}},
		Versions:   []Version{{ID: "10", Name: "1.0"}, {ID: "11", Name: "1.0"}, {ID: "12", Name: "1.0.1"}},
	}

	it, ok := p.FindIssueType("Bug")
	require.True(t, ok)
	assert.Equal(t, "1", it.ID)

	_, ok = p.FindIssueType("bug")
	assert.False(t, ok, "match is case sensitive")

	v, ok := p.FindVersion("1.0")
	require.True(t, ok)
	assert.Equal(t, "10", v.ID)

	_, ok = p.FindVersion("1.0 ")
	assert.False(t, ok, "match is exact")
}

func TestNewConnectionConfig(t *testing.T) {
	c := NewConnectionConfig("https://jira.example.com", "u", "p")
	assert.Equal(t, AuthModeBasic, c.AuthMode)
	assert.Equal(t, DefaultReadTimeout, c.ReadTimeout)
}
