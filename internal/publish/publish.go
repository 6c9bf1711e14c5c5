// Package publish runs a publish batch: every discovered report fragment is
// titled, reconciled against the content service and created or updated, one
// file at a time in path order.
package publish

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/agentstation/surfpub/internal/confluence"
	"github.com/agentstation/surfpub/internal/discovery"
	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
	"github.com/agentstation/surfpub/pkg/reconciler"
	"github.com/agentstation/surfpub/pkg/title"
)

// Service is the content service a batch publishes to.
type Service interface {
	reconciler.Lookup
	Create(ctx context.Context, payload *confluence.Payload) (*confluence.Content, error)
	Update(ctx context.Context, pageID string, payload *confluence.Payload) (*confluence.Content, error)
}

// Source yields the files of a batch and their content.
type Source interface {
	Find(ctx context.Context) ([]discovery.File, error)
	Read(file discovery.File) (string, error)
}

// Options configures a batch.
type Options struct {
	SpaceKey string
	AnchorID string
	Project  string
	// DryRun reconciles every file but never creates or updates a page.
	DryRun bool
	// KeepGoing continues past publish failures. Lookup failures always stop
	// the batch.
	KeepGoing bool
}

// Validate checks that the batch inputs are present.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.SpaceKey, validation.Required),
		validation.Field(&o.AnchorID, validation.Required),
		validation.Field(&o.Project, validation.Required),
	)
}

// Publisher runs publish batches.
type Publisher struct {
	service    Service
	source     Source
	reconciler reconciler.Reconciler
	opts       Options
}

// New creates a Publisher.
func New(service Service, source Source, opts Options) (*Publisher, error) {
	if service == nil {
		return nil, errors.NewValidationError("service", nil, "cannot be nil")
	}
	if source == nil {
		return nil, errors.NewValidationError("source", nil, "cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, errors.WrapValidation("options", err)
	}

	r, err := reconciler.New(opts.AnchorID)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		service:    service,
		source:     source,
		reconciler: r,
		opts:       opts,
	}, nil
}

// Run publishes every file of the source.
//
// A lookup failure stops the batch immediately. A publish failure stops it
// too unless KeepGoing is set, in which case the remaining files are still
// published and the failures are joined into the returned error. The Result
// is returned in every case and lists the files processed so far.
func (p *Publisher) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	ctx = logging.WithSpace(logging.WithRunID(ctx, runID), p.opts.SpaceKey)
	logger := logging.FromContext(ctx)

	result := &Result{
		RunID:   runID,
		Space:   p.opts.SpaceKey,
		Anchor:  p.opts.AnchorID,
		Project: p.opts.Project,
		DryRun:  p.opts.DryRun,
	}
	defer func() { result.Duration = time.Since(start) }()

	files, err := p.source.Find(ctx)
	if err != nil {
		result.Aborted = true
		return result, err
	}
	logger.Info().Int("files", len(files)).Bool("dry_run", p.opts.DryRun).Msg("Starting publish run")

	var publishErrs []error
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			result.Aborted = true
			return result, errors.Join(append(publishErrs, err)...)
		}

		outcome, err := p.publishFile(ctx, file)
		result.Outcomes = append(result.Outcomes, outcome)
		if err == nil {
			continue
		}

		if errors.IsLookupError(err) || !p.opts.KeepGoing || !errors.IsPublishError(err) {
			result.Aborted = i < len(files)-1
			return result, errors.Join(append(publishErrs, err)...)
		}
		publishErrs = append(publishErrs, err)
	}

	logger.Info().
		Int("created", result.Count(StatusCreated)).
		Int("updated", result.Count(StatusUpdated)).
		Int("planned", result.Count(StatusPlanned)).
		Int("failed", result.Count(StatusFailed)).
		Msg("Publish run finished")
	return result, errors.Join(publishErrs...)
}

func (p *Publisher) publishFile(ctx context.Context, file discovery.File) (Outcome, error) {
	pageTitle := title.Derive(p.opts.Project, file.Name)
	ctx = logging.WithTitle(logging.WithFile(ctx, file.Name), pageTitle)
	logger := logging.FromContext(ctx)

	outcome := Outcome{File: file.Name, Title: pageTitle}
	fail := func(err error) (Outcome, error) {
		outcome.Status = StatusFailed
		outcome.Err = err
		outcome.Error = err.Error()
		logger.Error().Err(err).Msg("Failed to publish report")
		return outcome, err
	}

	body, err := p.source.Read(file)
	if err != nil {
		return fail(err)
	}

	action, err := p.reconciler.Reconcile(ctx, pageTitle, p.service)
	if err != nil {
		return fail(err)
	}
	outcome.Action = action.Kind
	outcome.PageID = action.PageID
	outcome.Revision = action.Revision

	if p.opts.DryRun {
		outcome.Status = StatusPlanned
		logger.Info().Str("action", action.String()).Msg("Dry run, not publishing")
		return outcome, nil
	}

	content, err := p.dispatch(ctx, action, body)
	if err != nil {
		return fail(err)
	}

	outcome.PageID = content.ID
	outcome.Revision = content.Revision()
	outcome.URL = content.URL()
	if action.IsCreate() {
		outcome.Status = StatusCreated
	} else {
		outcome.Status = StatusUpdated
	}
	logger.Info().
		Str("status", string(outcome.Status)).
		Str("page_id", outcome.PageID).
		Int("revision", outcome.Revision).
		Msg("Published report")
	return outcome, nil
}

func (p *Publisher) dispatch(ctx context.Context, action reconciler.Action, body string) (*confluence.Content, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}

	switch action.Kind {
	case reconciler.KindUpdate:
		payload := confluence.NewUpdatePayload(action.Title, body, p.opts.SpaceKey,
			action.ParentID, action.PageID, action.Revision)
		return p.service.Update(ctx, action.PageID, payload)
	default:
		payload := confluence.NewCreatePayload(action.Title, body, p.opts.SpaceKey, action.ParentID)
		return p.service.Create(ctx, payload)
	}
}
