package publish

import (
	"time"

	"github.com/agentstation/surfpub/pkg/reconciler"
)

// Status is the final state of one input file.
type Status string

const (
	// StatusCreated means a new page was created.
	StatusCreated Status = "created"
	// StatusUpdated means an existing page was updated in place.
	StatusUpdated Status = "updated"
	// StatusPlanned means the action was decided but not executed (dry run).
	StatusPlanned Status = "planned"
	// StatusFailed means the lookup or the publish call failed.
	StatusFailed Status = "failed"
)

// Outcome records what happened to one input file.
type Outcome struct {
	File     string          `json:"file" yaml:"file"`
	Title    string          `json:"title" yaml:"title"`
	Action   reconciler.Kind `json:"action,omitempty" yaml:"action,omitempty"`
	Status   Status          `json:"status" yaml:"status"`
	PageID   string          `json:"page_id,omitempty" yaml:"page_id,omitempty"`
	Revision int             `json:"revision,omitempty" yaml:"revision,omitempty"`
	URL      string          `json:"url,omitempty" yaml:"url,omitempty"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
	Err      error           `json:"-" yaml:"-"`
}

// Failed reports whether the file was not published.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Result is the report of a whole run.
type Result struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Space    string        `json:"space" yaml:"space"`
	Anchor   string        `json:"anchor" yaml:"anchor"`
	Project  string        `json:"project" yaml:"project"`
	DryRun   bool          `json:"dry_run" yaml:"dry_run"`
	Outcomes []Outcome     `json:"outcomes" yaml:"outcomes"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	// Aborted is set when the run stopped before every file was processed.
	Aborted bool `json:"aborted" yaml:"aborted"`
}

// Count returns how many outcomes have status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed outcomes.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}
