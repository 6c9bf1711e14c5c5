// Package application defines what surfpub commands need from the application.
//
// Commands accept the Application interface rather than the concrete app
// type, so they can be tested with Mock.
package application

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/surfpub/internal/publish"
	"github.com/agentstation/surfpub/internal/surfboard"
)

// ChartFetcher unpacks a chart into a directory.
type ChartFetcher interface {
	Fetch(ctx context.Context, chart, version, dir string) (string, error)
}

// Application provides the dependencies commands need.
type Application interface {
	// ContentService returns a content-service client scoped to spaceKey.
	// It fails with a configuration error when credentials are missing.
	ContentService(spaceKey string) (publish.Service, error)

	// Source returns the report fragments under root ending with suffix.
	// Empty arguments select the configured defaults.
	Source(root, suffix string) publish.Source

	// Fs is the filesystem report files are read from and written to.
	Fs() afero.Fs

	// IssueTracker returns the ticket summary client, or nil when no
	// tracker credentials are configured.
	IssueTracker() surfboard.SummaryFetcher

	// JiraURL is the base URL of ticket links.
	JiraURL() string

	// ChartFetcher returns a fetcher backed by helm. It fails when helm is
	// not installed.
	ChartFetcher(ctx context.Context) (ChartFetcher, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format.
	OutputFormat() string

	// Version returns the application version.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
