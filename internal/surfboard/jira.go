package surfboard

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/surfpub/internal/transport"
)

// jiraService identifies the issue tracker in errors.
const jiraService = "jira"

// SummaryFetcher looks up the summary of an issue.
type SummaryFetcher interface {
	Summary(ctx context.Context, key string) (string, error)
}

// JiraClient fetches issue summaries from a Jira instance.
type JiraClient struct {
	baseURL string
	http    *transport.Client
}

// NewJiraClient creates a client authenticating with basic auth, or with
// token as a personal access token when user is empty.
func NewJiraClient(baseURL, user, token string, timeout time.Duration) *JiraClient {
	var auth transport.Authenticator = &transport.BasicAuth{Username: user, Password: token}
	if user == "" {
		auth = &transport.BearerAuth{Token: token}
	}
	return &JiraClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    transport.New(auth, timeout),
	}
}

// Close releases idle connections.
func (c *JiraClient) Close() {
	c.http.CloseIdleConnections()
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
	} `json:"fields"`
}

// Summary implements SummaryFetcher.
func (c *JiraClient) Summary(ctx context.Context, key string) (string, error) {
	endpoint := c.baseURL + "/rest/api/latest/issue/" + url.PathEscape(key) + "?fields=summary"
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var issue issueResponse
	if err := transport.DecodeResponse(resp, jiraService, &issue); err != nil {
		return "", err
	}
	return issue.Fields.Summary, nil
}
