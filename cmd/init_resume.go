package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/zazer0/resume-mcp/internal/gist"
	"github.com/zazer0/resume-mcp/internal/identity"
	"github.com/zazer0/resume-mcp/internal/logger"
	"github.com/zazer0/resume-mcp/internal/resume"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	starterGistDescription = "My resume (JSON Resume format)"
)

var initPrompt = promptui.Select{
	Label: "No resume.json gist found. Create one from the starter template?",
	Items: []string{PromptYes, PromptNo},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter resume.json gist if none exists",
	Run: func(cmd *cobra.Command, _ []string) {
		initResume(cmd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation before creating the gist")
}

func initResume(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	username, err := resolveUsername(config)
	if err != nil {
		logger.Fatal("resolving github username", zap.Error(err))
	}

	token, err := resolveGithubToken(config)
	if err != nil {
		logger.Fatal("loading github token", zap.Error(err))
	}

	gists := gist.New(logger, token)
	gists.Username = username
	if config.UserAgent != "" {
		gists.UserAgent = config.UserAgent
	}

	tracker := identity.New(gists, logger)

	_, g, err := tracker.Fetch(ctx)
	if err == nil {
		logger.Info("resume gist already exists, nothing to do", zap.String("url", g.HTMLURL))
		return
	}
	if !errors.Is(err, identity.ErrNotFound) {
		logger.Fatal("looking up existing resume gist", zap.Error(err))
	}

	if cmd.Flag("auto-aprove").Value.String() == "false" {
		_, action, err := initPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action == PromptNo {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	starter, err := resume.Template()
	if err != nil {
		logger.Fatal("loading starter template", zap.Error(err))
	}

	doc, err := starter.MarshalDoc()
	if err != nil {
		logger.Fatal("serializing starter template", zap.Error(err))
	}

	created, err := gists.Create(ctx, starterGistDescription, false, map[string]*gist.File{
		resume.Filename: {Content: string(doc)},
	})
	if err != nil {
		logger.Fatal("creating starter resume gist", zap.Error(err))
	}

	tracker.Remember(created.ID)

	logger.Info("created starter resume gist",
		zap.String("gist_id", created.ID),
		zap.String("url", created.HTMLURL),
	)
	fmt.Printf("Starter resume created: %s\n", created.HTMLURL)
}
