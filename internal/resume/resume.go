// Package resume holds the JSON Resume document model and the
// non-destructive enhancement core: schema validation of proposed
// updates and the merge engine that applies them.
package resume

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Filename is the canonical file name a resume document is stored under.
const Filename = "resume.json"

// Resume wraps a JSON Resume document together with the opaque storage
// identifier of the gist it was loaded from. The identifier lives outside
// the document body so it can never leak into serialized output.
type Resume struct {
	// Doc is the raw document following the public JSON Resume schema.
	Doc map[string]any
	// GistID is the storage identifier side channel. Empty when the
	// document was not loaded from storage.
	GistID string
}

// Parse decodes a JSON Resume document body.
func Parse(data []byte) (*Resume, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse resume document: %w", err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return &Resume{Doc: doc}, nil
}

// MarshalDoc serializes the document body. The storage identifier is not
// part of the document and therefore never appears in the output.
func (r *Resume) MarshalDoc() ([]byte, error) {
	data, err := json.MarshalIndent(r.Doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resume document: %w", err)
	}
	return data, nil
}

// Clone deep-copies the resume, identifier included.
func (r *Resume) Clone() (*Resume, error) {
	doc, err := deepCopy(r.Doc)
	if err != nil {
		return nil, err
	}
	return &Resume{Doc: doc, GistID: r.GistID}, nil
}

// deepCopy copies a document through a JSON round trip. The input is
// JSON-decoded data, so the round trip is loss-free.
func deepCopy(doc map[string]any) (map[string]any, error) {
	if doc == nil {
		return make(map[string]any), nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("deep copy resume: %w", err)
	}

	var copied map[string]any
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, fmt.Errorf("deep copy resume: %w", err)
	}

	return copied, nil
}

// Name returns the document owner's name for logging, or an empty string.
func (r *Resume) Name() string {
	basics, ok := r.Doc["basics"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := basics["name"].(string)
	return name
}

// Skills returns the raw skills section. Entries may be bare strings or
// structured objects.
func (r *Resume) Skills() []any {
	items, _ := r.Doc["skills"].([]any)
	return items
}

// Projects returns the raw projects section.
func (r *Resume) Projects() []any {
	items, _ := r.Doc["projects"].([]any)
	return items
}

// SkillName extracts the name of a skill entry regardless of whether it is
// stored as a bare string or a structured object. Returns an empty string
// for entries without a usable name.
func SkillName(entry any) string {
	switch v := entry.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		name, _ := v["name"].(string)
		return strings.TrimSpace(name)
	default:
		return ""
	}
}

// entryName extracts the name field of a structured section entry.
func entryName(entry any) string {
	m, ok := entry.(map[string]any)
	if !ok {
		return ""
	}
	name, _ := m["name"].(string)
	return strings.TrimSpace(name)
}

// normalizeName is the case-insensitive dedup key for skills and projects.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
