package resume

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T) time.Time {
	t.Helper()

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	original := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = original })

	return fixed
}

func testResume(t *testing.T, body string) *Resume {
	t.Helper()

	r, err := Parse([]byte(body))
	require.NoError(t, err)
	return r
}

func TestMergeEndToEndScenario(t *testing.T) {
	fixedClock(t)

	r := testResume(t, `{"basics":{"name":"Ada"},"skills":[{"name":"JavaScript"}],"projects":[]}`)
	r.GistID = "gist-123"

	upd := &ProposedUpdate{
		NewProject: &Project{
			Name:        "Service X",
			StartDate:   "2024-01-01",
			Description: "A thing that does X for users.",
		},
		NewSkills: []*Skill{{Name: "JavaScript"}, {Name: "Go"}},
		Changes:   []string{"added Service X", "added Go"},
	}

	merged, record, err := Merge(r, upd)
	require.NoError(t, err)

	projects := merged.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "Service X", entryName(projects[0]))

	skills := merged.Skills()
	require.Len(t, skills, 2)
	assert.Equal(t, "JavaScript", SkillName(skills[0]))
	assert.Equal(t, "Go", SkillName(skills[1]))

	assert.Equal(t, []string{"Go"}, record.AddedSkills)
	assert.Equal(t, []string{"Service X"}, record.AddedProjects)
	assert.Empty(t, record.WorkChanges)
	assert.Equal(t, []string{"added Service X", "added Go"}, record.OtherChanges)
}

func TestMergeIsIdempotent(t *testing.T) {
	fixedClock(t)

	r := testResume(t, `{"skills":[],"projects":[]}`)
	upd := &ProposedUpdate{
		NewProject: &Project{Name: "CLI Tool", StartDate: "2023-05-01", Description: "Command line tooling for builds."},
		NewSkills:  []*Skill{{Name: "Go"}, {Name: "Docker"}},
		Changes:    []string{"added CLI Tool"},
	}

	once, _, err := Merge(r, upd)
	require.NoError(t, err)

	twice, record, err := Merge(once, upd)
	require.NoError(t, err)

	assert.Empty(t, record.AddedSkills)
	assert.Empty(t, record.AddedProjects)
	assert.Len(t, twice.Projects(), 1)
	assert.Len(t, twice.Skills(), 2)
}

func TestMergeNeverMutatesInput(t *testing.T) {
	fixedClock(t)

	r := testResume(t, `{"skills":["Python"],"projects":[{"name":"Old"}],"meta":{"version":"v1"}}`)
	before, err := json.Marshal(r.Doc)
	require.NoError(t, err)

	_, _, err = Merge(r, &ProposedUpdate{
		NewSkills: []*Skill{{Name: "Go"}},
		Changes:   []string{"added Go"},
	})
	require.NoError(t, err)

	after, err := json.Marshal(r.Doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "caller's document must be untouched")
}

func TestMergePreservesUntouchedSections(t *testing.T) {
	fixedClock(t)

	r := testResume(t, `{
		"basics":{"name":"Ada","label":"Engineer"},
		"work":[{"name":"Initech","position":"Dev"}],
		"skills":[{"name":"Python","level":"Advanced"}],
		"projects":[],
		"meta":{"version":"v1.0.0","theme":"flat"}
	}`)

	merged, _, err := Merge(r, &ProposedUpdate{
		NewSkills: []*Skill{{Name: "Go"}},
		Changes:   []string{"added Go"},
	})
	require.NoError(t, err)

	assert.Equal(t, r.Doc["basics"], merged.Doc["basics"])
	assert.Equal(t, r.Doc["work"], merged.Doc["work"])

	// Pre-existing skill entry must survive unchanged.
	skills := merged.Skills()
	require.Len(t, skills, 2)
	assert.Equal(t, map[string]any{"name": "Python", "level": "Advanced"}, skills[0])

	// Other metadata fields survive; only the timestamp is touched.
	meta := merged.Doc["meta"].(map[string]any)
	assert.Equal(t, "v1.0.0", meta["version"])
	assert.Equal(t, "flat", meta["theme"])
	assert.NotEmpty(t, meta["lastModified"])
}

func TestMergeSkillDedupIsCaseInsensitive(t *testing.T) {
	fixedClock(t)

	cases := []struct {
		name     string
		existing string
		proposed string
	}{
		{name: "lower vs upper", existing: `[{"name":"Python"}]`, proposed: "python"},
		{name: "bare string form", existing: `["Python"]`, proposed: "PYTHON"},
		{name: "surrounding whitespace", existing: `[{"name":"Python"}]`, proposed: "  Python  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testResume(t, `{"skills":`+tc.existing+`}`)

			merged, record, err := Merge(r, &ProposedUpdate{
				NewSkills: []*Skill{{Name: tc.proposed}},
				Changes:   []string{"noop"},
			})
			require.NoError(t, err)

			assert.Empty(t, record.AddedSkills)
			assert.Len(t, merged.Skills(), 1)
		})
	}
}

func TestMergeProjectDuplicateIsSilentNoop(t *testing.T) {
	fixedClock(t)

	r := testResume(t, `{"projects":[{"name":"Service X","description":"original"}]}`)

	merged, record, err := Merge(r, &ProposedUpdate{
		NewProject: &Project{Name: "service x", StartDate: "2024-01-01", Description: "A rewritten description."},
		Changes:    []string{"attempted re-add"},
	})
	require.NoError(t, err)

	assert.Empty(t, record.AddedProjects)
	projects := merged.Projects()
	require.Len(t, projects, 1)
	// The original entry wins; the proposal is dropped, not merged over it.
	assert.Equal(t, "original", projects[0].(map[string]any)["description"])
}

func TestMergeOngoingProjectHasNoEndDateKey(t *testing.T) {
	fixedClock(t)

	r := testResume(t, `{"projects":[]}`)

	merged, _, err := Merge(r, &ProposedUpdate{
		NewProject: &Project{Name: "Ongoing", StartDate: "2024-01-01", Description: "Still being worked on daily."},
		Changes:    []string{"added Ongoing"},
	})
	require.NoError(t, err)

	entry := merged.Projects()[0].(map[string]any)
	_, hasEndDate := entry["endDate"]
	assert.False(t, hasEndDate, "ongoing project must not carry an endDate key")
}

func TestMergeIdentifierRoundTrip(t *testing.T) {
	fixedClock(t)

	r := testResume(t, `{"skills":[]}`)
	r.GistID = "abc123"

	merged, _, err := Merge(r, &ProposedUpdate{
		NewSkills: []*Skill{{Name: "Go"}},
		Changes:   []string{"added Go"},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc123", merged.GistID)

	body, err := merged.MarshalDoc()
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(body), "abc123"),
		"storage identifier must never appear in the document body")
}

func TestMergeTimestamp(t *testing.T) {
	fixed := fixedClock(t)

	r := testResume(t, `{}`)
	merged, _, err := Merge(r, &ProposedUpdate{Changes: []string{"touch"}})
	require.NoError(t, err)

	meta := merged.Doc["meta"].(map[string]any)
	assert.Equal(t, fixed.Format(time.RFC3339), meta["lastModified"])
}

func TestMergeProposalInternalDuplicates(t *testing.T) {
	fixedClock(t)

	r := testResume(t, `{"skills":[]}`)
	merged, record, err := Merge(r, &ProposedUpdate{
		NewSkills: []*Skill{{Name: "Go"}, {Name: "go"}},
		Changes:   []string{"added Go"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Go"}, record.AddedSkills)
	assert.Len(t, merged.Skills(), 1)
}
