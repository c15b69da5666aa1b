// Package pipeline runs the extract, enrich and load stages over one batch of
// users. Failures on a single user are logged and isolated; only an unusable
// identity file or an empty batch abort a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/newsetl/internal/record"
	"github.com/kalambet/newsetl/internal/storage"
	"github.com/kalambet/newsetl/internal/usersapi"
)

// IdentifierSource supplies the user ids of a run.
type IdentifierSource interface {
	ReadUserIDs() ([]int, error)
}

// UserFetcher loads one user. (nil, nil) means the user does not exist.
type UserFetcher interface {
	GetUser(ctx context.Context, id int) (*record.Record, error)
}

// UserUpdater writes one enriched user back.
type UserUpdater interface {
	UpdateUser(ctx context.Context, u *record.Record) (bool, error)
}

// NewsGenerator produces the message for one user. It must not fail.
type NewsGenerator interface {
	Generate(ctx context.Context, u *record.Record) string
}

// ReportWriter persists the enriched batch.
type ReportWriter interface {
	WriteReport(recs []*record.Record) error
}

// Ledger records run outcomes. It is write-only from the pipeline's side.
type Ledger interface {
	CreateRun(r storage.Run) error
	FinishRun(r storage.Run) error
	SaveRunEvent(e storage.RunEvent) error
}

// Deps wires an Orchestrator. Report, Ledger and OnFetched are optional.
type Deps struct {
	IDs       IdentifierSource
	Fetcher   UserFetcher
	Generator NewsGenerator
	Updater   UserUpdater
	Report    ReportWriter
	Ledger    Ledger
	IconURL   string

	// OnFetched is called once with the fetched batch, before enrichment.
	OnFetched func(batch []*record.Record)
}

const (
	stageFetch    = "fetch"
	stageGenerate = "generate"
	stageReport   = "report"
	stageUpdate   = "update"

	outcomeOK             = "ok"
	outcomeNotFound       = "not_found"
	outcomeRemoteError    = "remote_error"
	outcomeTransportError = "transport_error"
	outcomeFailed         = "failed"
)

// Summary describes a finished run.
type Summary struct {
	RunID     string
	State     State
	Attempted int // identifiers read from the source
	Fetched   int // users in the batch
	Updated   int // successful updates
	ReportErr error
}

// String renders the update tally, e.g. "2/2".
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d", s.Updated, s.Fetched)
}

// Orchestrator runs the pipeline stages in order. An Orchestrator is meant
// for a single run at a time.
type Orchestrator struct {
	deps   Deps
	state  State
	runID  string
	ledger Ledger
	logger *slog.Logger
	now    func() time.Time
}

// NewOrchestrator creates an Orchestrator from deps.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		state:  StateLoadingIdentifiers,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// State returns the current state of the run.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes one full pass. The returned error is non-nil only when the run
// ends in StateAborted.
func (o *Orchestrator) Run(ctx context.Context) (sum Summary, err error) {
	o.runID = uuid.NewString()
	o.state = StateLoadingIdentifiers
	o.ledger = o.deps.Ledger
	sum.RunID = o.runID

	o.beginRun()
	defer func() {
		sum.State = o.state
		o.finishRun(sum, err)
	}()

	ids, err := o.deps.IDs.ReadUserIDs()
	if err != nil {
		return sum, o.abort(fmt.Errorf("loading user ids: %w", err))
	}
	sum.Attempted = len(ids)
	o.logger.Info("user ids loaded", "count", len(ids), "ids", ids)

	o.transition(StateFetching)
	batch := o.fetch(ctx, ids)
	sum.Fetched = len(batch)
	if len(batch) == 0 {
		return sum, o.abort(&NoValidRecordsError{Attempted: len(ids)})
	}
	o.logger.Info("users loaded", "fetched", len(batch), "attempted", len(ids))

	o.transition(StateReportingPending)
	if o.deps.OnFetched != nil {
		o.deps.OnFetched(batch)
	}

	o.transition(StateGenerating)
	o.generate(ctx, batch)

	if o.deps.Report != nil {
		if err := o.deps.Report.WriteReport(batch); err != nil {
			sum.ReportErr = err
			o.logger.Error("writing report failed", "error", err)
			o.event(0, stageReport, outcomeFailed, err.Error())
		} else {
			o.event(0, stageReport, outcomeOK, "")
		}
	}

	o.transition(StateUpdating)
	sum.Updated = o.update(ctx, batch)

	o.transition(StateDone)
	o.logger.Info("run complete", "updated", sum.Updated, "total", sum.Fetched)
	return sum, nil
}

func (o *Orchestrator) fetch(ctx context.Context, ids []int) []*record.Record {
	batch := make([]*record.Record, 0, len(ids))
	for _, id := range ids {
		u, err := o.deps.Fetcher.GetUser(ctx, id)

		var statusErr *usersapi.RemoteStatusError
		switch {
		case err == nil && u != nil:
			if u.ID == 0 {
				u.ID = id
			}
			batch = append(batch, u)
			o.event(id, stageFetch, outcomeOK, "")
		case err == nil:
			o.event(id, stageFetch, outcomeNotFound, "")
		case errors.As(err, &statusErr):
			// Already logged by the client; a failing lookup is treated as
			// a missing user.
			o.event(id, stageFetch, outcomeRemoteError, statusErr.Error())
		default:
			o.logger.Error("fetching user failed, skipping", "user_id", id, "error", err)
			o.event(id, stageFetch, outcomeTransportError, err.Error())
		}
	}
	return batch
}

func (o *Orchestrator) generate(ctx context.Context, batch []*record.Record) {
	for _, u := range batch {
		text := o.deps.Generator.Generate(ctx, u)
		record.Enrich(u, text, o.deps.IconURL)
		o.event(u.ID, stageGenerate, outcomeOK, text)
	}
}

func (o *Orchestrator) update(ctx context.Context, batch []*record.Record) int {
	updated := 0
	for _, u := range batch {
		ok, err := o.deps.Updater.UpdateUser(ctx, u)
		switch {
		case err != nil:
			o.logger.Error("updating user failed", "user_id", u.ID, "error", err)
			o.event(u.ID, stageUpdate, outcomeTransportError, err.Error())
		case ok:
			updated++
			o.event(u.ID, stageUpdate, outcomeOK, "")
		default:
			o.event(u.ID, stageUpdate, outcomeFailed, "")
		}
	}
	return updated
}

func (o *Orchestrator) transition(next State) {
	if o.state.Terminal() {
		o.logger.Error("ignoring transition from terminal state", "from", o.state, "to", next)
		return
	}
	o.logger.Debug("pipeline state", "run_id", o.runID, "from", o.state, "to", next)
	o.state = next
}

func (o *Orchestrator) abort(err error) error {
	if !o.state.canAbort() {
		// Later stages isolate their failures; reaching this is a bug.
		panic(fmt.Sprintf("pipeline: abort from state %s", o.state))
	}
	o.logger.Debug("pipeline state", "run_id", o.runID, "from", o.state, "to", StateAborted, "error", err)
	o.state = StateAborted
	return err
}

// --- ledger ---

func (o *Orchestrator) beginRun() {
	if o.ledger == nil {
		return
	}
	err := o.ledger.CreateRun(storage.Run{
		ID:        o.runID,
		StartedAt: o.now(),
		State:     o.state.String(),
	})
	if err != nil {
		o.logger.Warn("run ledger unavailable for this run", "error", err)
		o.ledger = nil
	}
}

func (o *Orchestrator) finishRun(sum Summary, runErr error) {
	if o.ledger == nil {
		return
	}
	r := storage.Run{
		ID:         o.runID,
		FinishedAt: o.now(),
		State:      sum.State.String(),
		Attempted:  sum.Attempted,
		Fetched:    sum.Fetched,
		Updated:    sum.Updated,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	if w, ok := o.deps.Report.(interface{ ReportPath() string }); ok && sum.State == StateDone {
		r.ReportPath = w.ReportPath()
	}
	if err := o.ledger.FinishRun(r); err != nil {
		o.logger.Warn("recording run result failed", "run_id", o.runID, "error", err)
	}
}

func (o *Orchestrator) event(userID int, stage, outcome, detail string) {
	if o.ledger == nil {
		return
	}
	err := o.ledger.SaveRunEvent(storage.RunEvent{
		ID:        uuid.NewString(),
		RunID:     o.runID,
		UserID:    userID,
		Stage:     stage,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: o.now(),
	})
	if err != nil {
		o.logger.Warn("recording run event failed", "run_id", o.runID, "user_id", userID, "stage", stage, "error", err)
	}
}
