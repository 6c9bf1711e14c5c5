package app

import (
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/surfpub/internal/confluence"
	"github.com/agentstation/surfpub/pkg/constants"
	"github.com/agentstation/surfpub/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Content service
	BaseURL     string
	Username    string
	Password    string
	HTTPTimeout time.Duration

	// Report discovery
	Root   string
	Suffix string

	// Issue tracker used by the Surfboard map
	JiraURL   string
	JiraUser  string
	JiraToken string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or ~/.surfpub.yaml / ./.surfpub.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("SURFPUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config file", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".surfpub")

		// A missing default config file is fine; a broken one is not.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config file", "cannot read config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		BaseURL:     v.GetString("base_url"),
		Username:    v.GetString("username"),
		Password:    v.GetString("password"),
		HTTPTimeout: v.GetDuration("http_timeout"),

		Root:   v.GetString("root"),
		Suffix: v.GetString("suffix"),

		JiraURL:   v.GetString("jira_url"),
		JiraUser:  v.GetString("jira_user"),
		JiraToken: v.GetString("jira_token"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings that do not depend on the command being run.
// Credentials are checked only when a command talks to the content service.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.JiraURL, is.URL),
		validation.Field(&c.Suffix, validation.Required),
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Millisecond)),
	)
	if err != nil {
		return errors.NewConfigError("settings", err.Error(), errors.ErrInvalidInput)
	}
	return nil
}

// Credentials returns the content-service credentials.
func (c *Config) Credentials() confluence.Credentials {
	return confluence.Credentials{Username: c.Username, Password: c.Password}
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", constants.DefaultBaseURL)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("root", constants.DefaultRoot)
	v.SetDefault("suffix", constants.DefaultSuffix)
	v.SetDefault("jira_url", constants.DefaultJiraURL)
}

// bindEnv binds the historical credential variable names alongside the
// SURFPUB_ prefixed ones.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"username":   {"SURFPUB_USERNAME", constants.EnvUser},
		"password":   {"SURFPUB_PASSWORD", constants.EnvPassword},
		"base_url":   {"SURFPUB_BASE_URL", constants.EnvBaseURL},
		"jira_user":  {"SURFPUB_JIRA_USER", constants.EnvJiraUser},
		"jira_token": {"SURFPUB_JIRA_TOKEN", constants.EnvJiraToken},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return errors.NewConfigError("environment", "cannot bind "+key, err)
		}
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
