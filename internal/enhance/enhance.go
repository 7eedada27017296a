// Package enhance orchestrates a single resume enhancement end to end:
// oracle proposal, schema validation, non-destructive merge and the
// user-facing summary.
package enhance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zazer0/resume-mcp/internal/ai"
	"github.com/zazer0/resume-mcp/internal/analyzer"
	"github.com/zazer0/resume-mcp/internal/logger"
	"github.com/zazer0/resume-mcp/internal/resume"
)

// FallbackSummary replaces the prose summary when the secondary oracle
// call fails. The primary enhancement is never lost over it.
const FallbackSummary = "Your resume has been updated with your latest project work."

// Warning is attached to every enhancement result.
const Warning = "These changes were generated by an AI model from repository evidence. " +
	"Please review them for accuracy before sharing your resume. " +
	"Earlier versions remain available through the gist's revision history."

// Result is the outcome of a codebase-driven enhancement.
type Result struct {
	ID          string
	Resume      *resume.Resume
	Changes     *resume.ChangeRecord
	Summary     string
	UserMessage string
	ResumeURL   string
	ProjectName string
	Warning     string
}

// JobResult is the outcome of a job-driven enhancement. The advisory
// fields are recommendations for the caller, not document mutations.
type JobResult struct {
	ID                string
	Resume            *resume.Resume
	Changes           *resume.ChangeRecord
	RewrittenSummary  string
	SkillsToHighlight []string
	SuggestedProjects []string
}

// Enhancer coordinates the oracle, the validator and the merge engine.
type Enhancer struct {
	oracle ai.Oracle
	logger *zap.Logger
}

func New(oracle ai.Oracle, log *zap.Logger) *Enhancer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enhancer{oracle: oracle, logger: log}
}

// EnhanceWithProject runs the codebase-driven flow. Any failure obtaining
// or validating the proposed update aborts before the merge; only the
// prose-summary step is allowed to fail without failing the enhancement.
func (e *Enhancer) EnhanceWithProject(ctx context.Context, r *resume.Resume, analysis *analyzer.Analysis, resumeURL string) (*Result, error) {
	id := uuid.NewString()
	log := logger.WithFields(e.logger, zap.String(logger.FieldEnhancement, id))

	payload, err := e.oracle.ProposeProjectUpdate(ctx, r, analysis)
	if err != nil {
		return nil, fmt.Errorf("obtaining proposed update: %w", err)
	}

	upd, err := resume.ValidateProjectUpdate(payload)
	if err != nil {
		return nil, fmt.Errorf("rejecting proposed update: %w", err)
	}

	merged, record, err := resume.Merge(r, upd)
	if err != nil {
		return nil, err
	}

	log.Info("merged proposed update",
		zap.Strings("added_projects", record.AddedProjects),
		zap.Strings("added_skills", record.AddedSkills),
	)

	summary := e.summarize(ctx, log, record.OtherChanges)

	return &Result{
		ID:          id,
		Resume:      merged,
		Changes:     record,
		Summary:     summary,
		UserMessage: userMessage(resumeURL, record.OtherChanges),
		ResumeURL:   resumeURL,
		ProjectName: upd.NewProject.Name,
		Warning:     Warning,
	}, nil
}

// EnhanceForJob runs the job-driven flow: a skills-only merge plus
// advisory tailoring hints surfaced unmerged.
func (e *Enhancer) EnhanceForJob(ctx context.Context, r *resume.Resume, jobDescription string) (*JobResult, error) {
	id := uuid.NewString()
	log := logger.WithFields(e.logger, zap.String(logger.FieldEnhancement, id))

	payload, err := e.oracle.ProposeJobUpdate(ctx, r, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("obtaining proposed update: %w", err)
	}

	upd, err := resume.ValidateJobUpdate(payload)
	if err != nil {
		return nil, fmt.Errorf("rejecting proposed update: %w", err)
	}

	merged, record, err := resume.Merge(r, upd.MergeUpdate())
	if err != nil {
		return nil, err
	}

	log.Info("merged job-driven update",
		zap.Strings("added_skills", record.AddedSkills),
		zap.Int("highlight_suggestions", len(upd.SkillsToHighlight)),
	)

	return &JobResult{
		ID:                id,
		Resume:            merged,
		Changes:           record,
		RewrittenSummary:  upd.RewrittenSummary,
		SkillsToHighlight: upd.SkillsToHighlight,
		SuggestedProjects: upd.SuggestedProjects,
	}, nil
}

// summarize asks the oracle for a prose summary of the change list. A
// failure here is swallowed: the enhancement already succeeded.
func (e *Enhancer) summarize(ctx context.Context, log *zap.Logger, changes []string) string {
	summary, err := e.oracle.SummarizeChanges(ctx, changes)
	if err != nil || strings.TrimSpace(summary) == "" {
		log.Warn("summary generation failed, using fallback", zap.Error(err))
		return FallbackSummary
	}
	return summary
}

func userMessage(resumeURL string, changes []string) string {
	var b strings.Builder

	b.WriteString("I've updated your resume")
	if resumeURL != "" {
		b.WriteString(": ")
		b.WriteString(resumeURL)
	}
	b.WriteString("\n\nChanges:\n")
	for _, change := range changes {
		b.WriteString("- ")
		b.WriteString(change)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(Warning)

	return b.String()
}
