package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/zazer0/resume-mcp/internal/gist"
	"github.com/zazer0/resume-mcp/internal/identity"
	"github.com/zazer0/resume-mcp/internal/resume"
)

func (s *Server) handleAnalyzeCodebase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.targetDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	analysis, err := s.analyzer.Analyze(ctx, dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analyzing %s: %v", dir, err)), nil
	}

	return toolJSON(analysis)
}

func (s *Server) handleCheckResume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, g, err := s.tracker.Fetch(ctx)
	if errors.Is(err, identity.ErrNotFound) {
		// A missing resume is a valid answer, not a failure.
		return toolJSON(map[string]any{
			"exists":  false,
			"message": "No resume.json gist found. Run enhance_resume_with_project to create one from a starter template.",
		})
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("checking resume: %v", err)), nil
	}

	return toolJSON(map[string]any{
		"exists":    true,
		"resumeUrl": g.HTMLURL,
		"resume":    r.Doc,
	})
}

func (s *Server) handleEnhanceWithProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.targetDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	analysis, err := s.analyzer.Analyze(ctx, dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analyzing %s: %v", dir, err)), nil
	}

	r, g, err := s.tracker.Fetch(ctx)
	if errors.Is(err, identity.ErrNotFound) {
		r, g, err = s.createStarterResume(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading resume: %v", err)), nil
	}

	result, err := s.enhancer.EnhanceWithProject(ctx, r, analysis, g.HTMLURL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("enhancing resume: %v", err)), nil
	}

	doc, err := result.Resume.MarshalDoc()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("serializing resume: %v", err)), nil
	}
	if _, err := s.storage.Update(ctx, result.Resume.GistID, map[string]*gist.File{
		resume.Filename: {Content: string(doc)},
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("writing resume back: %v", err)), nil
	}

	s.logger.Info("resume enhanced with project",
		zap.String("enhancement_id", result.ID),
		zap.String("project", result.ProjectName),
		zap.String("gist_id", result.Resume.GistID),
	)

	return toolJSON(map[string]any{
		"updatedResume": result.Resume.Doc,
		"changes":       result.Changes,
		"summary":       result.Summary,
		"userMessage":   result.UserMessage,
		"resumeUrl":     result.ResumeURL,
		"projectName":   result.ProjectName,
		"warning":       result.Warning,
	})
}

func (s *Server) handleEnhanceForJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("job_json_path", "")
	if path == "" {
		return mcp.NewToolResultError("job_json_path is required"), nil
	}

	job, err := readJobDescription(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, _, err := s.tracker.Fetch(ctx)
	if errors.Is(err, identity.ErrNotFound) {
		return mcp.NewToolResultError("no resume.json gist found; create one first with enhance_resume_with_project"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading resume: %v", err)), nil
	}

	result, err := s.enhancer.EnhanceForJob(ctx, r, job)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tailoring resume: %v", err)), nil
	}

	doc, err := result.Resume.MarshalDoc()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("serializing resume: %v", err)), nil
	}

	// The original resume stays untouched; the tailored copy lives in its
	// own secret gist.
	g, err := s.storage.Create(ctx, "Resume tailored to a job posting", false, map[string]*gist.File{
		resume.Filename: {Content: string(doc)},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("storing tailored resume: %v", err)), nil
	}

	s.logger.Info("resume tailored to job",
		zap.String("enhancement_id", result.ID),
		zap.String("gist_id", g.ID),
	)

	return toolJSON(map[string]any{
		"gistUrl":           g.HTMLURL,
		"changes":           result.Changes,
		"rewrittenSummary":  result.RewrittenSummary,
		"skillsToHighlight": result.SkillsToHighlight,
		"suggestedProjects": result.SuggestedProjects,
	})
}

// createStarterResume provisions a fresh secret gist from the embedded
// template and primes the identity cache with it.
func (s *Server) createStarterResume(ctx context.Context) (*resume.Resume, *gist.Gist, error) {
	r, err := resume.Template()
	if err != nil {
		return nil, nil, err
	}
	doc, err := r.MarshalDoc()
	if err != nil {
		return nil, nil, err
	}

	g, err := s.storage.Create(ctx, "My resume (JSON Resume format)", false, map[string]*gist.File{
		resume.Filename: {Content: string(doc)},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating starter resume gist: %w", err)
	}

	s.tracker.Remember(g.ID)
	r.GistID = g.ID
	s.logger.Info("created starter resume gist", zap.String("gist_id", g.ID))

	return r, g, nil
}

func (s *Server) targetDirectory(req mcp.CallToolRequest) (string, error) {
	dir := req.GetString("directory", "")
	if dir != "" {
		return dir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return dir, nil
}

// readJobDescription loads the job posting file. A missing or malformed
// file is the caller's mistake and must read like one.
func readJobDescription(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read job description file %s: %v", path, err)
	}
	if !json.Valid(data) {
		return "", fmt.Errorf("job description file %s is not valid JSON", path)
	}
	return string(data), nil
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
