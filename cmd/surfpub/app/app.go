// Package app provides the application context and dependency management
// for the surfpub CLI. It centralizes configuration, logging and the
// construction of the clients commands depend on.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/surfpub/internal/cmd/application"
	"github.com/agentstation/surfpub/internal/cmd/output"
	"github.com/agentstation/surfpub/internal/confluence"
	"github.com/agentstation/surfpub/internal/deps"
	"github.com/agentstation/surfpub/internal/discovery"
	"github.com/agentstation/surfpub/internal/publish"
	"github.com/agentstation/surfpub/internal/surfboard"
	"github.com/agentstation/surfpub/pkg/errors"
)

// App represents the surfpub application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Filesystem for report discovery and generated maps
	fs afero.Fs

	// Clients created on demand, closed on shutdown
	mu      sync.Mutex
	clients []*confluence.Client
	jira    *surfboard.JiraClient
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and the default config file
// locations; options override it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		fs:      afero.NewOsFs(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured format, detected from the terminal
// when none was given.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Fs returns the application filesystem.
func (a *App) Fs() afero.Fs {
	return a.fs
}

// ContentService returns a Confluence client for spaceKey.
// Missing credentials are reported before any request is made.
func (a *App) ContentService(spaceKey string) (publish.Service, error) {
	client, err := confluence.NewClient(a.config.BaseURL, spaceKey, a.config.Credentials(), a.config.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.clients = append(a.clients, client)
	a.mu.Unlock()
	return client, nil
}

// Source returns a finder over the application filesystem.
func (a *App) Source(root, suffix string) publish.Source {
	if root == "" {
		root = a.config.Root
	}
	if suffix == "" {
		suffix = a.config.Suffix
	}
	return discovery.NewFinder(a.fs, root, suffix)
}

// IssueTracker returns a Jira client when a tracker token is set.
func (a *App) IssueTracker() surfboard.SummaryFetcher {
	if a.config.JiraToken == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.jira == nil {
		a.jira = surfboard.NewJiraClient(a.config.JiraURL, a.config.JiraUser, a.config.JiraToken, a.config.HTTPTimeout)
	}
	return a.jira
}

// JiraURL returns the base URL of ticket links.
func (a *App) JiraURL() string {
	return a.config.JiraURL
}

// ChartFetcher returns a helm-backed chart fetcher.
func (a *App) ChartFetcher(ctx context.Context) (application.ChartFetcher, error) {
	helm, err := deps.Require(ctx, deps.Helm)
	if err != nil {
		return nil, err
	}
	return surfboard.NewFetcher(helm, nil), nil
}

// Shutdown releases the connections held by the clients created so far.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.clients {
		c.Close()
	}
	a.clients = nil
	if a.jira != nil {
		a.jira.Close()
		a.jira = nil
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFs sets the filesystem (useful for testing).
func WithFs(fs afero.Fs) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
