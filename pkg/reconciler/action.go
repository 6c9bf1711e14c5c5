package reconciler

import (
	"fmt"

	"github.com/agentstation/surfpub/pkg/errors"
)

// Kind identifies which publish operation an Action asks for.
type Kind string

const (
	// KindCreate creates a new page under the anchor page.
	KindCreate Kind = "create"
	// KindUpdate updates an existing page in place.
	KindUpdate Kind = "update"
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	return string(k)
}

// Action is the publish decision for one input file.
// A create action never carries a page id or revision; an update action
// always carries both.
type Action struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Title    string `json:"title" yaml:"title"`
	ParentID string `json:"parent_id" yaml:"parent_id"`
	PageID   string `json:"page_id,omitempty" yaml:"page_id,omitempty"`
	Revision int    `json:"revision,omitempty" yaml:"revision,omitempty"`
}

// Create returns an action that creates title as a child of parentID.
func Create(title, parentID string) Action {
	return Action{
		Kind:     KindCreate,
		Title:    title,
		ParentID: parentID,
	}
}

// Update returns an action that updates page pageID at its current revision.
func Update(title, pageID, parentID string, revision int) Action {
	return Action{
		Kind:     KindUpdate,
		Title:    title,
		ParentID: parentID,
		PageID:   pageID,
		Revision: revision,
	}
}

// IsCreate reports whether the action creates a page.
func (a Action) IsCreate() bool {
	return a.Kind == KindCreate
}

// IsUpdate reports whether the action updates a page.
func (a Action) IsUpdate() bool {
	return a.Kind == KindUpdate
}

// Validate checks that the action is well-formed.
func (a Action) Validate() error {
	if a.Title == "" {
		return errors.NewValidationError("title", a.Title, "cannot be empty")
	}
	if a.ParentID == "" {
		return errors.NewValidationError("parent_id", a.ParentID, "cannot be empty")
	}

	switch a.Kind {
	case KindCreate:
		if a.PageID != "" || a.Revision != 0 {
			return errors.NewValidationError("kind", a.Kind, "create action must not carry a page id or revision")
		}
	case KindUpdate:
		if a.PageID == "" {
			return errors.NewValidationError("page_id", a.PageID, "update action requires a page id")
		}
		if a.Revision < 1 {
			return errors.NewValidationError("revision", a.Revision, "update action requires a revision of at least 1")
		}
	default:
		return errors.NewValidationError("kind", a.Kind, "must be create or update")
	}
	return nil
}

// String returns a short human-readable description of the action.
func (a Action) String() string {
	if a.IsUpdate() {
		return fmt.Sprintf("update %q (id %s, revision %d)", a.Title, a.PageID, a.Revision)
	}
	return fmt.Sprintf("%s %q under %s", a.Kind, a.Title, a.ParentID)
}
