// Package reconciler decides how a report is published: it compares the
// desired page title with what the content service already holds and
// returns either a Create or an Update action.
//
// The decision is a pure function of the title and the lookup result.
// Nothing is cached between calls, so reconciling the same title twice
// against unchanged remote state yields the same action.
package reconciler

import (
	"context"

	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
)

// PageRef identifies an existing remote page.
type PageRef struct {
	Title string
	ID    string
	// Revision is the page's current version. Zero means the service
	// reported no version for the page.
	Revision int
}

// Lookup finds the remote page holding a title.
// It returns a nil PageRef and a nil error when no page matches.
type Lookup interface {
	FindPage(ctx context.Context, title string) (*PageRef, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, title string) (*PageRef, error)

// FindPage implements Lookup.
func (f LookupFunc) FindPage(ctx context.Context, title string) (*PageRef, error) {
	return f(ctx, title)
}

// Reconciler turns a page title into a publish action.
type Reconciler interface {
	// Reconcile looks title up and returns the action that publishes it.
	// Lookup failures are returned as *errors.LookupError and are never retried.
	Reconcile(ctx context.Context, title string, lookup Lookup) (Action, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	parentID string
}

// New creates a Reconciler that places new pages under parentID.
func New(parentID string) (Reconciler, error) {
	if parentID == "" {
		return nil, &errors.ValidationError{
			Field:   "parent_id",
			Message: "anchor page id cannot be empty",
		}
	}
	return &reconciler{parentID: parentID}, nil
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, title string, lookup Lookup) (Action, error) {
	if lookup == nil {
		return Action{}, &errors.ValidationError{Field: "lookup", Message: "cannot be nil"}
	}
	logger := logging.FromContext(ctx)

	ref, err := lookup.FindPage(ctx, title)
	if err != nil {
		if errors.IsLookupError(err) {
			return Action{}, err
		}
		return Action{}, errors.NewLookupError(title, err)
	}

	if ref == nil {
		logger.Debug().Str("title", title).Msg("No existing page, creating")
		return Create(title, r.parentID), nil
	}

	if ref.ID == "" {
		return Action{}, errors.NewLookupError(title,
			errors.NewParseError("json", "", "matching page has no id", nil))
	}

	revision := ref.Revision
	switch {
	case revision < 0:
		return Action{}, errors.NewLookupError(title,
			errors.NewParseError("json", "", "matching page has a negative version", nil))
	case revision == 0:
		// The service occasionally reports a page without a version.
		logger.Debug().
			Str("title", title).
			Str("page_id", ref.ID).
			Msg("Page reported no version, assuming revision 1")
		revision = 1
	}

	logger.Debug().
		Str("title", title).
		Str("page_id", ref.ID).
		Int("revision", revision).
		Msg("Existing page found, updating")
	return Update(title, ref.ID, r.parentID, revision), nil
}
