package confluence

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/agentstation/surfpub/pkg/errors"
)

const (
	// PageType is the content type of every published report.
	PageType = "page"
	// StorageRepresentation is the body format the service stores pages in.
	StorageRepresentation = "storage"
)

// Revision is a page version number as reported by the service.
// It decodes from a JSON number, a numeric string, an empty string or null;
// the last two decode to 0.
type Revision int

// UnmarshalJSON implements json.Unmarshaler.
func (r *Revision) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*r = 0
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.NewParseError("json", "", "version number "+raw+" is not an integer", err)
	}
	*r = Revision(n)
	return nil
}

// Version is the version block of a content object.
type Version struct {
	Number Revision `json:"number"`
}

// Space identifies a space by key.
type Space struct {
	Key string `json:"key"`
}

// Ancestor references a parent page.
type Ancestor struct {
	ID string `json:"id"`
}

// Storage is a page body in a given representation.
type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// Body wraps the storage representation of a page.
type Body struct {
	Storage Storage `json:"storage"`
}

// Links holds the service's link block.
type Links struct {
	Base  string `json:"base,omitempty"`
	WebUI string `json:"webui,omitempty"`
}

// Content is a page as returned by the content endpoints.
type Content struct {
	ID      string   `json:"id"`
	Type    string   `json:"type,omitempty"`
	Title   string   `json:"title"`
	Version *Version `json:"version,omitempty"`
	Links   Links    `json:"_links,omitempty"`
}

// Revision returns the reported version number, or 0 when none was reported.
func (c *Content) Revision() int {
	if c == nil || c.Version == nil {
		return 0
	}
	return int(c.Version.Number)
}

// URL returns the browser link of the page when the service reported one.
func (c *Content) URL() string {
	if c == nil || c.Links.WebUI == "" {
		return ""
	}
	return strings.TrimSuffix(c.Links.Base, "/") + c.Links.WebUI
}

// SearchResult is the response of a title search.
type SearchResult struct {
	Results []Content `json:"results"`
	Size    int       `json:"size"`
}

// Payload is the request body of a create or update call.
type Payload struct {
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Space     Space      `json:"space"`
	Ancestors []Ancestor `json:"ancestors,omitempty"`
	Body      Body       `json:"body"`
	Version   *Version   `json:"version,omitempty"`
}

// NewCreatePayload builds the body of a create call placing the page under ancestorID.
func NewCreatePayload(title, body, spaceKey, ancestorID string) *Payload {
	return &Payload{
		Type:      PageType,
		Title:     title,
		Space:     Space{Key: spaceKey},
		Ancestors: ancestors(ancestorID),
		Body: Body{Storage: Storage{
			Value:          body,
			Representation: StorageRepresentation,
		}},
	}
}

// NewUpdatePayload builds the body of an update call. The service expects the
// next version number, so the payload carries revision+1.
func NewUpdatePayload(title, body, spaceKey, ancestorID, pageID string, revision int) *Payload {
	p := NewCreatePayload(title, body, spaceKey, ancestorID)
	p.ID = pageID
	p.Version = &Version{Number: Revision(revision + 1)}
	return p
}

func ancestors(id string) []Ancestor {
	if id == "" {
		return nil
	}
	return []Ancestor{{ID: id}}
}
