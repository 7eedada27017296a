package resume

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ValidationError reports an oracle payload that parsed as JSON but does
// not conform to the expected shape. Distinct from a parse failure so the
// orchestrator can tell the two apart in diagnostics.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("proposed update failed schema validation: %s", dumpProblems(e.Problems))
}

func dumpProblems(problems []string) string {
	if len(problems) == 0 {
		return "unknown problem"
	}

	// Report the first few problems to keep the message bounded.
	truncated := ""
	if len(problems) > 3 {
		truncated = fmt.Sprintf(" ... and %d more", len(problems)-3)
		problems = problems[:3]
	}

	return strings.Join(problems, "; ") + truncated
}

var (
	compileOnce   sync.Once
	compileErr    error
	projectSchema *gojsonschema.Schema
	jobSchema     *gojsonschema.Schema
)

func compileSchemas() error {
	compileOnce.Do(func() {
		projectSchema, compileErr = compileSchema("schemas/project_update.json")
		if compileErr != nil {
			return
		}
		jobSchema, compileErr = compileSchema("schemas/job_update.json")
	})
	return compileErr
}

func compileSchema(name string) (*gojsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema %s: %w", name, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}

	return schema, nil
}

// ValidateProjectUpdate checks a codebase-driven oracle payload against the
// expected shape and coerces it into a typed update. Pure check-and-coerce,
// no side effects.
func ValidateProjectUpdate(payload map[string]any) (*ProposedUpdate, error) {
	if err := compileSchemas(); err != nil {
		return nil, err
	}

	if err := validate(projectSchema, payload); err != nil {
		return nil, err
	}

	var upd ProposedUpdate
	if err := decodePayload(payload, &upd); err != nil {
		return nil, err
	}

	if err := checkDates(upd.NewProject); err != nil {
		return nil, err
	}

	return &upd, nil
}

// ValidateJobUpdate checks a job-driven oracle payload and coerces it into
// the typed job update.
func ValidateJobUpdate(payload map[string]any) (*JobProposedUpdate, error) {
	if err := compileSchemas(); err != nil {
		return nil, err
	}

	if err := validate(jobSchema, payload); err != nil {
		return nil, err
	}

	var upd JobProposedUpdate
	if err := decodePayload(payload, &upd); err != nil {
		return nil, err
	}

	return &upd, nil
}

func validate(schema *gojsonschema.Schema, payload map[string]any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("validation execution failed: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	return &ValidationError{Problems: problems}
}

func decodePayload(payload map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return fmt.Errorf("building payload decoder: %w", err)
	}

	if err := decoder.Decode(payload); err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}

	return nil
}

// checkDates rejects dates that match the YYYY-MM-DD pattern but are not
// valid calendar dates, which the schema pattern cannot catch.
func checkDates(project *Project) error {
	if project == nil {
		return nil
	}

	if _, err := time.Parse("2006-01-02", project.StartDate); err != nil {
		return &ValidationError{Problems: []string{
			fmt.Sprintf("newProject.startDate: %q is not a valid date", project.StartDate),
		}}
	}

	if project.EndDate != "" {
		if _, err := time.Parse("2006-01-02", project.EndDate); err != nil {
			return &ValidationError{Problems: []string{
				fmt.Sprintf("newProject.endDate: %q is not a valid date", project.EndDate),
			}}
		}
	}

	return nil
}
