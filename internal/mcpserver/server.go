// Package mcpserver wires the resume tools into an MCP server instance.
// This is the composition boundary: tool handlers translate between the
// protocol surface and the internal components, no business logic here.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/zazer0/resume-mcp/internal/analyzer"
	"github.com/zazer0/resume-mcp/internal/enhance"
	"github.com/zazer0/resume-mcp/internal/gist"
	"github.com/zazer0/resume-mcp/internal/identity"
)

// Storage is the slice of the gist client the tool handlers write through.
type Storage interface {
	Create(ctx context.Context, description string, public bool, files map[string]*gist.File) (*gist.Gist, error)
	Update(ctx context.Context, id string, files map[string]*gist.File) (*gist.Gist, error)
}

// Deps aggregates everything the tool handlers need.
type Deps struct {
	Logger   *zap.Logger
	Analyzer *analyzer.Analyzer
	Tracker  *identity.Tracker
	Storage  Storage
	Enhancer *enhance.Enhancer
}

// Server exposes the resume enhancement tools over MCP.
type Server struct {
	logger   *zap.Logger
	analyzer *analyzer.Analyzer
	tracker  *identity.Tracker
	storage  Storage
	enhancer *enhance.Enhancer
}

// New creates the MCP server with every tool registered.
func New(deps Deps, version string) *server.MCPServer {
	s := &Server{
		logger:   deps.Logger,
		analyzer: deps.Analyzer,
		tracker:  deps.Tracker,
		storage:  deps.Storage,
		enhancer: deps.Enhancer,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	m := server.NewMCPServer(
		"resume-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	m.AddTool(mcp.NewTool("analyze_codebase",
		mcp.WithDescription("Analyze a code repository: languages, technologies, file count, recent commits and README."),
		mcp.WithString("directory",
			mcp.Description("Directory to analyze. Defaults to the current working directory."),
		),
	), s.handleAnalyzeCodebase)

	m.AddTool(mcp.NewTool("check_resume",
		mcp.WithDescription("Check whether a resume.json gist exists for the configured user."),
	), s.handleCheckResume)

	m.AddTool(mcp.NewTool("enhance_resume_with_project",
		mcp.WithDescription("Analyze a repository and merge the discovered project and skills into the stored resume."),
		mcp.WithString("directory",
			mcp.Description("Repository directory to analyze. Defaults to the current working directory."),
		),
	), s.handleEnhanceWithProject)

	m.AddTool(mcp.NewTool("enhance_resume",
		mcp.WithDescription("Tailor the stored resume toward a job description and store the result as a new secret gist."),
		mcp.WithString("job_json_path",
			mcp.Required(),
			mcp.Description("Path to a local JSON file holding the job description."),
		),
	), s.handleEnhanceForJob)

	return m
}
