package application

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/surfpub/internal/discovery"
	"github.com/agentstation/surfpub/internal/publish"
	"github.com/agentstation/surfpub/internal/surfboard"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ContentServiceFunc: func(string) (publish.Service, error) {
//	        return fakeService, nil
//	    },
//	    FsValue: afero.NewMemMapFs(),
//	}
//	cmd := publish.NewCommand(mock)
//	// ... test command
type Mock struct {
	ContentServiceFunc func(spaceKey string) (publish.Service, error)
	SourceFunc         func(root, suffix string) publish.Source
	IssueTrackerFunc   func() surfboard.SummaryFetcher
	ChartFetcherFunc   func(ctx context.Context) (ChartFetcher, error)
	LoggerFunc         func() *zerolog.Logger
	OutputFormatFunc   func() string
	VersionFunc        func() string
	CommitFunc         func() string
	DateFunc           func() string
	BuiltByFunc        func() string

	// FsValue is returned by Fs. A nil value selects an in-memory filesystem
	// created on first use.
	FsValue afero.Fs
	// JiraURLValue is returned by JiraURL.
	JiraURLValue string
}

// ContentService returns a service using the mock function or nil.
func (m *Mock) ContentService(spaceKey string) (publish.Service, error) {
	if m.ContentServiceFunc != nil {
		return m.ContentServiceFunc(spaceKey)
	}
	return nil, nil
}

// Source returns a source using the mock function or a finder over Fs.
func (m *Mock) Source(root, suffix string) publish.Source {
	if m.SourceFunc != nil {
		return m.SourceFunc(root, suffix)
	}
	return discovery.NewFinder(m.Fs(), root, suffix)
}

// Fs returns FsValue, defaulting to an in-memory filesystem.
func (m *Mock) Fs() afero.Fs {
	if m.FsValue == nil {
		m.FsValue = afero.NewMemMapFs()
	}
	return m.FsValue
}

// IssueTracker returns a tracker using the mock function or nil.
func (m *Mock) IssueTracker() surfboard.SummaryFetcher {
	if m.IssueTrackerFunc != nil {
		return m.IssueTrackerFunc()
	}
	return nil
}

// JiraURL returns JiraURLValue.
func (m *Mock) JiraURL() string {
	return m.JiraURLValue
}

// ChartFetcher returns a fetcher using the mock function or nil.
func (m *Mock) ChartFetcher(ctx context.Context) (ChartFetcher, error) {
	if m.ChartFetcherFunc != nil {
		return m.ChartFetcherFunc(ctx)
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
