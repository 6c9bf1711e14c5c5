// Package constants provides shared constants used throughout surfpub.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the standard timeout for content-service requests
	DefaultHTTPTimeout = 30 * time.Second

	// ShutdownTimeout bounds cleanup after a failed run
	ShutdownTimeout = 5 * time.Second

	// ChartFetchTimeout bounds a single helm fetch
	ChartFetchTimeout = 2 * time.Minute
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Publishing defaults
const (
	// DefaultBaseURL is the content service used when none is configured
	DefaultBaseURL = "https://confluence.ipttools.info"

	// DefaultJiraURL is the issue tracker linked from release notes
	DefaultJiraURL = "https://jira.ipttools.info"

	// DefaultRoot is the directory walked for report fragments
	DefaultRoot = "./"

	// DefaultSuffix selects report fragments during discovery
	DefaultSuffix = ".insert"
)

// Environment variable names
const (
	// EnvUser holds the content-service username
	EnvUser = "CONF_USER"

	// EnvPassword holds the content-service password
	EnvPassword = "CONF_PASSWORD"

	// EnvBaseURL overrides DefaultBaseURL
	EnvBaseURL = "CONFLUENCE_URL"

	// EnvJiraUser holds the issue-tracker username
	EnvJiraUser = "JIRA_USER"

	// EnvJiraToken holds the issue-tracker API token
	EnvJiraToken = "JIRA_TOKEN"
)
