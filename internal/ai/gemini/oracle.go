package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/zazer0/resume-mcp/internal/ai"
	"github.com/zazer0/resume-mcp/internal/analyzer"
	"github.com/zazer0/resume-mcp/internal/logger"
	"github.com/zazer0/resume-mcp/internal/resume"
)

//go:embed prompt_project.md
var projectPromptTemplate string

//go:embed prompt_job.md
var jobPromptTemplate string

//go:embed prompt_summary.md
var summaryPromptTemplate string

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Oracle implements ai.Oracle on top of a Gemini content generator.
type Oracle struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewOracle(generator contentGenerator, log *zap.Logger, maxLogLength int) *Oracle {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Oracle{
		generator: generator,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// ProposeProjectUpdate asks the model for a codebase-driven proposed update.
// The returned payload is unvalidated; the caller owns the trust boundary.
func (o *Oracle) ProposeProjectUpdate(ctx context.Context, r *resume.Resume, analysis *analyzer.Analysis) (map[string]any, error) {
	if r == nil {
		return nil, fmt.Errorf("resume is required")
	}
	if analysis == nil {
		return nil, fmt.Errorf("repository analysis is required")
	}

	resumeJSON, err := r.MarshalDoc()
	if err != nil {
		return nil, err
	}

	analysisJSON, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal analysis payload: %w", err)
	}

	prompt := strings.ReplaceAll(projectPromptTemplate, "{{RESUME_JSON}}", string(resumeJSON))
	prompt = strings.ReplaceAll(prompt, "{{ANALYSIS_JSON}}", string(analysisJSON))

	return o.requestPayload(ctx, "project update", prompt)
}

// ProposeJobUpdate asks the model for a job-driven proposed update.
func (o *Oracle) ProposeJobUpdate(ctx context.Context, r *resume.Resume, jobDescription string) (map[string]any, error) {
	if r == nil {
		return nil, fmt.Errorf("resume is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("job description is required")
	}

	resumeJSON, err := r.MarshalDoc()
	if err != nil {
		return nil, err
	}

	prompt := strings.ReplaceAll(jobPromptTemplate, "{{RESUME_JSON}}", string(resumeJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)

	return o.requestPayload(ctx, "job update", prompt)
}

// SummarizeChanges turns the change log into a short prose summary.
func (o *Oracle) SummarizeChanges(ctx context.Context, changes []string) (string, error) {
	if len(changes) == 0 {
		return "", fmt.Errorf("changes list is empty")
	}

	var list strings.Builder
	for _, change := range changes {
		list.WriteString("- ")
		list.WriteString(change)
		list.WriteString("\n")
	}

	prompt := strings.ReplaceAll(summaryPromptTemplate, "{{CHANGES}}", list.String())

	raw, err := o.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(raw), nil
}

func (o *Oracle) requestPayload(ctx context.Context, kind, prompt string) (map[string]any, error) {
	o.logger.Debug("gemini oracle request",
		zap.String("kind", kind),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, o.maxLogLen)),
	)

	raw, err := o.generator.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("gemini oracle response",
		zap.String("kind", kind),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, o.maxLogLen)),
	)

	var payload map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, &ai.ParseError{Err: err}
	}

	return payload, nil
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its output despite JSON response mode.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
