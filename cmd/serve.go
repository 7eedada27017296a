package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zazer0/resume-mcp/internal/ai/gemini"
	"github.com/zazer0/resume-mcp/internal/analyzer"
	"github.com/zazer0/resume-mcp/internal/enhance"
	"github.com/zazer0/resume-mcp/internal/gist"
	"github.com/zazer0/resume-mcp/internal/identity"
	"github.com/zazer0/resume-mcp/internal/logger"
	"github.com/zazer0/resume-mcp/internal/mcpserver"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resume tools over MCP on stdio",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve wires every component together and blocks on the stdio transport.
// Missing credentials are fatal here, before the first request is taken.
func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Log output goes to stderr; stdout belongs to the MCP transport.
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-mcp server", zap.String("version", version))

	username, err := resolveUsername(config)
	if err != nil {
		logger.Fatal("resolving github username", zap.Error(err))
	}

	token, err := resolveGithubToken(config)
	if err != nil {
		logger.Fatal(
			"loading github token",
			zap.Error(err),
			zap.String("hint", "set GITHUB_TOKEN or GITHUB_TOKEN_FILE, or the 'github-token-file' key in the configuration file"),
		)
	}

	apiKey, err := resolveGeminiKey(config)
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or GEMINI_API_KEY_FILE, or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	gists := gist.New(logger, token)
	gists.Username = username
	if config.UserAgent != "" {
		gists.UserAgent = config.UserAgent
	}

	model := ""
	maxRetries := -1
	maxLogLength := 0
	if config.AI != nil && config.AI.Gemini != nil {
		model = config.AI.Gemini.Model
		if config.AI.Gemini.MaxRetries > 0 {
			maxRetries = config.AI.Gemini.MaxRetries
		}
		maxLogLength = config.AI.Gemini.MaxLogLength
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, model, maxRetries, logger)
	if err != nil {
		logger.Fatal("creating gemini generator", zap.Error(err))
	}

	oracle := gemini.NewOracle(generator, logger, maxLogLength)

	srv := mcpserver.New(mcpserver.Deps{
		Logger:   logger,
		Analyzer: analyzer.New(logger),
		Tracker:  identity.New(gists, logger),
		Storage:  gists,
		Enhancer: enhance.New(oracle, logger),
	}, version)

	logger.Info("serving on stdio", zap.String("github_username", username))

	if err := server.NewStdioServer(srv).Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Fatal("stdio server stopped", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "transport closed"))
}
