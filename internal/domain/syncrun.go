package domain

import "time"

// SyncKind identifies what a sync run ingested.
type SyncKind string

const (
	SyncKindItems   SyncKind = "item_sync"
	SyncKindOutlets SyncKind = "outlet_sync"
)

// SyncStatus is the lifecycle state of a sync run.
type SyncStatus string

const (
	SyncStarted   SyncStatus = "started"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
)

// SyncRun is one append-only audit record of a sync. It is created when the
// sync starts and sealed exactly once when it completes or fails.
type SyncRun struct {
	ID          string     `json:"id"`
	Kind        SyncKind   `json:"kind"`
	Status      SyncStatus `json:"status"`
	Processed   int        `json:"processed"`
	Added       int        `json:"added"`
	Updated     int        `json:"updated"`
	Errors      []string   `json:"errors,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Complete seals the run as successful with its final counters.
func (r *SyncRun) Complete(processed, added, updated int, errs []string, now time.Time) {
	r.Status = SyncCompleted
	r.Processed = processed
	r.Added = added
	r.Updated = updated
	r.Errors = errs
	r.CompletedAt = &now
}

// Fail seals the run as failed, preserving whatever partial counters were
// reached before the error.
func (r *SyncRun) Fail(errMsg string, now time.Time) {
	r.Status = SyncFailed
	r.Errors = append(r.Errors, errMsg)
	r.CompletedAt = &now
}

// SyncResult is the caller-facing summary of a finished sync.
type SyncResult struct {
	RunID     string   `json:"run_id"`
	Kind      SyncKind `json:"kind"`
	Processed int      `json:"processed"`
	Added     int      `json:"added"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors,omitempty"`
}
