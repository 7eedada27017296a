package resume

import (
	_ "embed"
)

//go:embed template.json
var templateJSON []byte

// Template returns a fresh starter resume document for the create-if-absent
// path. The template is a valid, empty JSON Resume skeleton.
func Template() (*Resume, error) {
	return Parse(templateJSON)
}
