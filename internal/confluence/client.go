// Package confluence is a minimal client for the Confluence content REST API:
// title lookup, page creation and in-place page update.
package confluence

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/surfpub/internal/transport"
	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
	"github.com/agentstation/surfpub/pkg/reconciler"
)

// ServiceName identifies the content service in errors and logs.
const ServiceName = "confluence"

const contentPath = "/rest/api/content"

// Credentials authenticate against the content service.
type Credentials struct {
	Username string
	Password string
}

// Validate reports missing credentials.
func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return errors.NewConfigError("credentials",
			"Username and password are None please set credentials", errors.ErrCredentialsRequired)
	}
	return nil
}

// Client talks to a single space of a Confluence instance.
type Client struct {
	baseURL  string
	spaceKey string
	http     *transport.Client
}

// NewClient creates a client for spaceKey on the instance at baseURL.
// A non-positive timeout selects the transport default.
func NewClient(baseURL, spaceKey string, creds Credentials, timeout time.Duration) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if spaceKey == "" {
		return nil, errors.NewValidationError("space_key", spaceKey, "cannot be empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewValidationError("base_url", baseURL, "must be an absolute URL")
	}

	auth := &transport.BasicAuth{Username: creds.Username, Password: creds.Password}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		spaceKey: spaceKey,
		http:     transport.New(auth, timeout),
	}, nil
}

// SpaceKey returns the space the client publishes into.
func (c *Client) SpaceKey() string {
	return c.spaceKey
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Exists searches the space for a page titled title.
func (c *Client) Exists(ctx context.Context, title string) (bool, *SearchResult, error) {
	query := url.Values{}
	query.Set("title", title)
	query.Set("spaceKey", c.spaceKey)
	query.Set("expand", "version")

	logging.FromContext(ctx).Debug().
		Str("title", title).
		Str("space", c.spaceKey).
		Msg("Looking up page")

	resp, err := c.http.Get(ctx, c.baseURL+contentPath+"?"+query.Encode())
	if err != nil {
		return false, nil, err
	}

	var result SearchResult
	if err := transport.DecodeResponse(resp, ServiceName, &result); err != nil {
		return false, nil, err
	}
	return len(result.Results) > 0, &result, nil
}

// FindPage implements reconciler.Lookup.
func (c *Client) FindPage(ctx context.Context, title string) (*reconciler.PageRef, error) {
	found, result, err := c.Exists(ctx, title)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	page := result.Results[0]
	return &reconciler.PageRef{
		Title:    page.Title,
		ID:       page.ID,
		Revision: page.Revision(),
	}, nil
}

// Create creates a new page from payload.
func (c *Client) Create(ctx context.Context, payload *Payload) (*Content, error) {
	content, err := c.send(ctx, http.MethodPost, c.baseURL+contentPath, payload)
	if err != nil {
		return nil, errors.NewPublishError("create", payload.Title, "", err)
	}
	return content, nil
}

// Update replaces the body of page pageID with payload.
func (c *Client) Update(ctx context.Context, pageID string, payload *Payload) (*Content, error) {
	if pageID == "" {
		return nil, errors.NewValidationError("page_id", pageID, "cannot be empty")
	}
	endpoint := c.baseURL + contentPath + "/" + url.PathEscape(pageID)
	content, err := c.send(ctx, http.MethodPut, endpoint, payload)
	if err != nil {
		return nil, errors.NewPublishError("update", payload.Title, pageID, err)
	}
	return content, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload *Payload) (*Content, error) {
	if payload == nil {
		return nil, errors.NewValidationError("payload", nil, "cannot be nil")
	}

	resp, err := c.http.Send(ctx, method, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var content Content
	if err := transport.DecodeResponse(resp, ServiceName, &content); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Str("method", method).
		Str("page_id", content.ID).
		Int("revision", content.Revision()).
		Msg("Page published")
	return &content, nil
}
