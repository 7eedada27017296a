// Package ai defines the boundary to the LLM oracle. The oracle is an
// untrusted external function: it returns loose payloads that must pass
// schema validation before anything downstream may rely on them.
package ai

import (
	"context"
	"fmt"

	"github.com/zazer0/resume-mcp/internal/analyzer"
	"github.com/zazer0/resume-mcp/internal/resume"
)

// ParseError reports oracle output that could not be decoded as JSON at
// all. Distinct from a schema validation failure.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable oracle output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Oracle converts contextual facts into proposed resume updates. All
// methods return raw payloads; callers validate before use.
type Oracle interface {
	// ProposeProjectUpdate asks for a codebase-driven update: one new
	// project plus supporting skills and a change log.
	ProposeProjectUpdate(ctx context.Context, r *resume.Resume, analysis *analyzer.Analysis) (map[string]any, error)

	// ProposeJobUpdate asks for a job-description-driven update: skill
	// adjustments, a change log and advisory tailoring hints.
	ProposeJobUpdate(ctx context.Context, r *resume.Resume, jobDescription string) (map[string]any, error)

	// SummarizeChanges turns a change log into a short prose summary.
	SummarizeChanges(ctx context.Context, changes []string) (string, error)
}
