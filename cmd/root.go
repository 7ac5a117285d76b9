package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/ai/gemini"
	"github.com/farol-inclusivo/farol-matcher/internal/farol"
	"github.com/farol-inclusivo/farol-matcher/internal/filtering"
	"github.com/farol-inclusivo/farol-matcher/internal/logger"
	"github.com/farol-inclusivo/farol-matcher/internal/secrets"
	"github.com/farol-inclusivo/farol-matcher/internal/server"
)

const (
	app = "farol-matcher"
)

type Config struct {
	APIURL       string            `mapstructure:"api-url" validate:"omitempty,url"`
	UserAgent    string            `mapstructure:"user-agent"`
	TokenFile    string            `mapstructure:"token-file"`
	KeywordsFile string            `mapstructure:"keywords-file"`
	ExcludeFile  string            `mapstructure:"exclude-file"`
	Search       *farol.JobFilters `mapstructure:"search"`

	Compatibility struct {
		MinScore int `mapstructure:"min-score" validate:"gte=0,lte=100"`
	} `mapstructure:"compatibility"`

	Filters struct {
		Companies     filtering.CompaniesConfig `mapstructure:"companies"`
		InclusiveOnly bool                      `mapstructure:"inclusive-only"`
	} `mapstructure:"filters"`

	Apply struct {
		CoverLetter string `mapstructure:"cover-letter"`
		ResumeURL   string `mapstructure:"resume-url" validate:"omitempty,url"`
	} `mapstructure:"apply"`

	AI     *AIConfig     `mapstructure:"ai"`
	Server server.Config `mapstructure:"server"`
}

type AIConfig struct {
	Enabled         bool                   `mapstructure:"enabled"`
	Provider        string                 `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	MinimumFitScore float64                `mapstructure:"minimum-fit-score" validate:"gte=0,lte=1"`
	Gemini          *GeminiConfig          `mapstructure:"gemini" validate:"required_if=Enabled true"`
	Prompt          gemini.PromptOverrides `mapstructure:"prompt"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "farol-matcher scores Farol job postings against a candidate profile",
		Long: "farol-matcher ranks job postings from the Farol inclusive jobs board by how well they fit a candidate,\n" +
			"weighing skills, location, accessibility, experience and remote work.",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"token-file":             "FAROL_TOKEN_FILE",
		"api-url":                "FAROL_API_URL",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("api-url", farol.DefaultAPIURL)
	viper.SetDefault("server.listen", server.DefaultListen)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is farol-matcher.yaml in current directory)")
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
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config file is fine: every key has a default or a flag.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(config)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

func newLogger() *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:    viper.GetBool("json"),
		Debug:   viper.GetBool("debug"),
		App:     app,
		Version: version,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// resolveToken reads the Farol API token. FAROL_TOKEN is accepted when no file is configured.
func resolveToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	return secrets.Load(secrets.Source{
		Name: "farol token",
		File: config.TokenFile,
		Env:  "FAROL_TOKEN",
	})
}

func newFarolClient(config *Config, token string, logger *zap.Logger) *farol.Client {
	client := farol.New(logger, token)
	if config.APIURL != "" {
		client.APIURL = strings.TrimRight(config.APIURL, "/")
	}
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	return client
}
