package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Run is one execution of the pipeline.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	State      string
	Attempted  int
	Fetched    int
	Updated    int
	ReportPath string
	Error      string
}

// RunEvent is the outcome of one pipeline stage for one user.
type RunEvent struct {
	ID        string
	RunID     string
	UserID    int
	Stage     string // "fetch", "generate", "report", "update"
	Outcome   string // "ok", "not_found", "remote_error", "transport_error", "failed"
	Detail    string
	CreatedAt time.Time
}
