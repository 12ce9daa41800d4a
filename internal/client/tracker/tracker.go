// Package tracker keeps a session-local view of a user's multi-section
// profile and the completion flag of each wizard step.
//
// A Tracker is created per owning view. Mount starts the initial load,
// Close discards any response that arrives afterwards. Fetch failures are
// logged and swallowed: the tracker keeps its last known state and the
// only recovery is another call to Load.
//
// MarkStepComplete may set a flag the predicates would not; the flag stays
// set until the next successful Load recomputes it from server data.
package tracker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/ProfileDesk/internal/completion"
	"github.com/atinyakov/ProfileDesk/internal/models"
)

// Fetcher retrieves the full profile record for a user.
type Fetcher interface {
	FetchProfile(ctx context.Context, creds models.Credentials) (models.ProfileRecord, error)
}

// Snapshot is a consistent copy of the tracker state.
type Snapshot struct {
	Profile     models.ProfileRecord
	Completed   models.CompletionState
	CurrentStep int
}

// Tracker owns the profile record, its derived completion state and the
// wizard cursor. It is safe for concurrent use.
type Tracker struct {
	fetcher Fetcher
	creds   models.Credentials
	log     *zap.Logger

	life   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	record    models.ProfileRecord
	completed models.CompletionState
	current   int
	seq       uint64
	closed    bool
}

// New returns an empty tracker for creds. A nil logger discards diagnostics.
func New(fetcher Fetcher, creds models.Credentials, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	life, cancel := context.WithCancel(context.Background())
	return &Tracker{
		fetcher: fetcher,
		creds:   creds,
		log:     log.With(zap.String("user_id", creds.UserID)),
		life:    life,
		cancel:  cancel,
	}
}

// Mount starts the initial Load in the background. The returned channel is
// closed once that load has finished or been discarded.
func (t *Tracker) Mount(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.Load(ctx)
	}()
	return done
}

// Close detaches the tracker from its view. In-flight fetches are cancelled
// and their results ignored. Close is idempotent.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.cancel()
}

// Load fetches the profile once and, on success, replaces every section and
// recomputes every completion flag. Only the most recently issued Load may
// apply its response; older ones are dropped when they resolve.
func (t *Tracker) Load(ctx context.Context) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.seq++
	seq := t.seq
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.life, cancel)
	defer stop()

	record, err := t.fetcher.FetchProfile(ctx, t.creds)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		t.log.Debug("tracker closed, dropping profile response", zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		t.log.Error("profile fetch failed", zap.Uint64("seq", seq), zap.Error(err))
		return
	}
	if seq != t.seq {
		t.log.Debug("stale profile response dropped",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", t.seq),
		)
		return
	}

	t.record = record
	t.completed = completion.Evaluate(record)
	t.log.Debug("profile loaded", zap.Int("completed", t.completed.Count()))
}

// UpdateProfileSection replaces one section in memory. It neither persists
// the data nor recomputes completion. data must have the Go type of the
// section (see models.ProfileRecord.SetSection) or be nil.
func (t *Tracker) UpdateProfileSection(section models.Section, data any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.record
	if err := rec.SetSection(section, data); err != nil {
		return err
	}
	t.record = rec
	return nil
}

// MarkStepComplete forces the flag at index to true. Indices outside the
// section range are ignored.
func (t *Tracker) MarkStepComplete(index int) {
	if !models.Section(index).Valid() {
		t.log.Warn("mark step complete: index out of range", zap.Int("index", index))
		return
	}
	t.mu.Lock()
	t.completed[index] = true
	t.mu.Unlock()
}

// SetCurrentStep moves the wizard cursor. No bounds are enforced.
func (t *Tracker) SetCurrentStep(index int) {
	t.mu.Lock()
	t.current = index
	t.mu.Unlock()
}

// CurrentStep returns the wizard cursor.
func (t *Tracker) CurrentStep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// ProfileData returns a copy of the current profile record.
func (t *Tracker) ProfileData() models.ProfileRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record.Clone()
}

// CompletedSteps returns the current completion flags.
func (t *Tracker) CompletedSteps() models.CompletionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Snapshot returns record, flags and cursor as of one instant.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Profile:     t.record.Clone(),
		Completed:   t.completed,
		CurrentStep: t.current,
	}
}
