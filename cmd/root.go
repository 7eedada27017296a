package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/zazer0/resume-mcp/internal/secrets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-mcp"
)

type Config struct {
	GithubUsername  string    `mapstructure:"github-username"`
	GithubTokenFile string    `mapstructure:"github-token-file"`
	UserAgent       string    `mapstructure:"user-agent"`
	AI              *AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-mcp is an MCP server that keeps a JSON Resume gist up to date with your project work",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"github-username":   "GITHUB_USERNAME",
		"github-token-file": "GITHUB_TOKEN_FILE",
		"gemini-key-file":   "GEMINI_API_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-mcp.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional; everything can come from the environment.
	// An explicitly given file must parse, though.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}

// resolveGithubToken loads the GitHub access token, preferring a token file
// over the GITHUB_TOKEN environment variable.
func resolveGithubToken(config *Config) (string, error) {
	tokenFile := strings.TrimSpace(config.GithubTokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("github-token-file"))
	}

	return secrets.Load(secrets.Source{
		Name: "github token",
		File: tokenFile,
		Env:  "GITHUB_TOKEN",
	})
}

// resolveGeminiKey loads the Gemini API key, preferring a key file over the
// GEMINI_API_KEY environment variable.
func resolveGeminiKey(config *Config) (string, error) {
	keyFile := ""
	if config.AI != nil && config.AI.Gemini != nil {
		keyFile = strings.TrimSpace(config.AI.Gemini.APIKeyFile)
	}
	if keyFile == "" {
		keyFile = strings.TrimSpace(viper.GetString("gemini-key-file"))
	}

	return secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
		Env:  "GEMINI_API_KEY",
	})
}

// resolveUsername returns the target GitHub username. It has no secret
// semantics but is still required at startup.
func resolveUsername(config *Config) (string, error) {
	username := strings.TrimSpace(config.GithubUsername)
	if username == "" {
		username = strings.TrimSpace(viper.GetString("github-username"))
	}
	if username == "" {
		return "", errors.New("github username is not configured (set GITHUB_USERNAME)")
	}
	return username, nil
}
