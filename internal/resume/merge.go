package resume

import (
	"encoding/json"
	"fmt"
	"time"
)

// now is variable for test injection.
var now = time.Now

// Merge applies a validated proposed update onto the current resume and
// returns the updated document together with a record of what was actually
// added. The merge never deletes or edits pre-existing fields, dedups new
// entries by case-insensitive name and is idempotent: applying the same
// update to its own result adds nothing.
//
// The caller's resume is never mutated. The storage identifier is carried
// over unchanged.
func Merge(current *Resume, upd *ProposedUpdate) (*Resume, *ChangeRecord, error) {
	doc, err := deepCopy(current.Doc)
	if err != nil {
		return nil, nil, err
	}

	record := &ChangeRecord{
		AddedSkills:   []string{},
		AddedProjects: []string{},
		WorkChanges:   []string{},
		OtherChanges:  append([]string{}, upd.Changes...),
	}

	if upd.NewProject != nil {
		added, err := appendProject(doc, upd.NewProject)
		if err != nil {
			return nil, nil, err
		}
		if added {
			record.AddedProjects = append(record.AddedProjects, upd.NewProject.Name)
		}
	}

	addedSkills, err := appendSkills(doc, upd.NewSkills)
	if err != nil {
		return nil, nil, err
	}
	record.AddedSkills = addedSkills

	touchLastModified(doc)

	return &Resume{Doc: doc, GistID: current.GistID}, record, nil
}

// appendProject appends the project unless an entry with the same
// case-insensitive name already exists. Duplicates are a silent no-op.
func appendProject(doc map[string]any, project *Project) (bool, error) {
	projects, _ := doc["projects"].([]any)

	existing := make(map[string]struct{}, len(projects))
	for _, entry := range projects {
		if name := entryName(entry); name != "" {
			existing[normalizeName(name)] = struct{}{}
		}
	}

	if _, dup := existing[normalizeName(project.Name)]; dup {
		return false, nil
	}

	entry, err := toDocEntry(project)
	if err != nil {
		return false, err
	}

	doc["projects"] = append(projects, entry)
	return true, nil
}

// appendSkills appends the proposed skills whose names are not already
// present, preserving the proposed order. Returns the names actually added.
func appendSkills(doc map[string]any, proposed []*Skill) ([]string, error) {
	skills, _ := doc["skills"].([]any)

	existing := make(map[string]struct{}, len(skills))
	for _, entry := range skills {
		if name := SkillName(entry); name != "" {
			existing[normalizeName(name)] = struct{}{}
		}
	}

	added := []string{}
	for _, skill := range proposed {
		if skill == nil {
			continue
		}
		key := normalizeName(skill.Name)
		if _, dup := existing[key]; dup {
			continue
		}

		entry, err := toDocEntry(skill)
		if err != nil {
			return nil, err
		}

		skills = append(skills, entry)
		existing[key] = struct{}{}
		added = append(added, skill.Name)
	}

	if len(added) > 0 {
		doc["skills"] = skills
	}

	return added, nil
}

// toDocEntry converts a typed entry into the document's loose-map form.
// Optional empty fields drop out via omitempty, so an ongoing project ends
// up with no endDate key at all.
func toDocEntry(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document entry: %w", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("encode document entry: %w", err)
	}

	return entry, nil
}

// touchLastModified updates the metadata timestamp, leaving every other
// metadata field untouched.
func touchLastModified(doc map[string]any) {
	meta, ok := doc["meta"].(map[string]any)
	if !ok {
		meta = make(map[string]any)
	}
	meta["lastModified"] = now().UTC().Format(time.RFC3339)
	doc["meta"] = meta
}
