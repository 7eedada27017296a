package resume

// Skill is a structured skill entry proposed by the oracle or already
// present in the document.
type Skill struct {
	Name     string   `json:"name"`
	Level    string   `json:"level,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Category string   `json:"category,omitempty"`
}

// Project is a project entry proposed by the oracle. An empty EndDate
// means the project is ongoing; it is omitted from serialized output
// rather than written as a sentinel value.
type Project struct {
	Name        string   `json:"name"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate,omitempty"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// ProposedUpdate is the oracle's codebase-driven output after validation:
// exactly one new project, zero or more new skills and a non-empty list of
// human-readable change descriptions.
type ProposedUpdate struct {
	NewProject *Project `json:"newProject,omitempty"`
	NewSkills  []*Skill `json:"newSkills,omitempty"`
	Changes    []string `json:"changes"`
}

// JobProposedUpdate is the oracle's job-driven output after validation.
// Only NewSkills and Changes feed the merge; the remaining fields are
// advisory recommendations surfaced to the caller unmerged.
type JobProposedUpdate struct {
	NewSkills         []*Skill `json:"newSkills,omitempty"`
	Changes           []string `json:"changes"`
	RewrittenSummary  string   `json:"rewrittenSummary,omitempty"`
	SkillsToHighlight []string `json:"skillsToHighlight,omitempty"`
	SuggestedProjects []string `json:"suggestedProjects,omitempty"`
}

// ChangeRecord partitions what the merge engine actually added, as opposed
// to what the oracle proposed.
type ChangeRecord struct {
	AddedSkills   []string `json:"addedSkills"`
	AddedProjects []string `json:"addedProjects"`
	WorkChanges   []string `json:"workChanges"`
	OtherChanges  []string `json:"otherChanges"`
}

// MergeUpdate reduces the job-driven variant to the merge engine's input:
// skills and the change log only.
func (u *JobProposedUpdate) MergeUpdate() *ProposedUpdate {
	return &ProposedUpdate{
		NewSkills: u.NewSkills,
		Changes:   u.Changes,
	}
}
