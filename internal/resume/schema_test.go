package resume

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadFromJSON(t *testing.T, body string) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	return payload
}

func TestValidateProjectUpdateAccepts(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"newProject": {
			"name": "Service X",
			"startDate": "2024-01-01",
			"description": "A thing that does X for users.",
			"highlights": ["fast", "small"],
			"url": "https://example.com/service-x"
		},
		"newSkills": [{"name": "Go", "level": "Intermediate"}],
		"changes": ["added Service X", "added Go"]
	}`)

	upd, err := ValidateProjectUpdate(payload)
	require.NoError(t, err)

	require.NotNil(t, upd.NewProject)
	assert.Equal(t, "Service X", upd.NewProject.Name)
	assert.Equal(t, "2024-01-01", upd.NewProject.StartDate)
	assert.Empty(t, upd.NewProject.EndDate)
	require.Len(t, upd.NewSkills, 1)
	assert.Equal(t, "Go", upd.NewSkills[0].Name)
	assert.Len(t, upd.Changes, 2)
}

func TestValidateProjectUpdateRejections(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			name: "missing description",
			body: `{"newProject":{"name":"X","startDate":"2024-01-01"},"changes":["c"]}`,
		},
		{
			name: "missing project entirely",
			body: `{"newSkills":[{"name":"Go"}],"changes":["c"]}`,
		},
		{
			name: "vacuous description",
			body: `{"newProject":{"name":"X","startDate":"2024-01-01","description":"thing"},"changes":["c"]}`,
		},
		{
			name: "malformed start date",
			body: `{"newProject":{"name":"X","startDate":"January 2024","description":"A longer description here."},"changes":["c"]}`,
		},
		{
			name: "impossible calendar date",
			body: `{"newProject":{"name":"X","startDate":"2024-13-99","description":"A longer description here."},"changes":["c"]}`,
		},
		{
			name: "malformed url",
			body: `{"newProject":{"name":"X","startDate":"2024-01-01","description":"A longer description here.","url":"not a url"},"changes":["c"]}`,
		},
		{
			name: "empty changes list",
			body: `{"newProject":{"name":"X","startDate":"2024-01-01","description":"A longer description here."},"changes":[]}`,
		},
		{
			name: "skill without name",
			body: `{"newProject":{"name":"X","startDate":"2024-01-01","description":"A longer description here."},"newSkills":[{"level":"Expert"}],"changes":["c"]}`,
		},
		{
			name: "empty project name",
			body: `{"newProject":{"name":"","startDate":"2024-01-01","description":"A longer description here."},"changes":["c"]}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateProjectUpdate(payloadFromJSON(t, tc.body))
			require.Error(t, err)

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "expected a ValidationError, got %T: %v", err, err)
		})
	}
}

func TestValidateJobUpdateAccepts(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"newSkills": [{"name": "Kubernetes"}],
		"changes": ["added Kubernetes"],
		"rewrittenSummary": "A tailored summary.",
		"skillsToHighlight": ["Go", "Docker"],
		"suggestedProjects": ["Service X"]
	}`)

	upd, err := ValidateJobUpdate(payload)
	require.NoError(t, err)

	assert.Equal(t, "A tailored summary.", upd.RewrittenSummary)
	assert.Equal(t, []string{"Go", "Docker"}, upd.SkillsToHighlight)
	assert.Equal(t, []string{"Service X"}, upd.SuggestedProjects)
	require.Len(t, upd.NewSkills, 1)
}

func TestValidateJobUpdateSkillsOptional(t *testing.T) {
	upd, err := ValidateJobUpdate(payloadFromJSON(t, `{"changes":["reordered emphasis"]}`))
	require.NoError(t, err)
	assert.Empty(t, upd.NewSkills)
}

func TestValidateJobUpdateRejectsEmptyChanges(t *testing.T) {
	_, err := ValidateJobUpdate(payloadFromJSON(t, `{"changes":[]}`))
	require.Error(t, err)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestValidationErrorMessageIsBounded(t *testing.T) {
	err := &ValidationError{Problems: []string{"a", "b", "c", "d", "e"}}
	assert.Contains(t, err.Error(), "and 2 more")
}

func TestTemplateIsValidDocument(t *testing.T) {
	r, err := Template()
	require.NoError(t, err)

	assert.NotNil(t, r.Doc["basics"])
	assert.Empty(t, r.GistID)
	assert.Empty(t, r.Skills())
	assert.Empty(t, r.Projects())
}
