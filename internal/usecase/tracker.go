// Package usecase holds the session lifecycle manager and the
// reconciliation process: the rules that turn timer transitions into
// durable session records and keep the local cache and the remote
// ledger consistent.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"

	"timeledger/internal/domain"
	"timeledger/internal/ports"
)

// Validation errors surfaced at the boundary; none of them leave state
// changed.
var (
	ErrTimerRunning      = errors.New("timer is running: stop it before switching projects")
	ErrSessionOpen       = errors.New("a session is open: stop it first")
	ErrNoProjectSelected = errors.New("no project selected")
	ErrAlreadyRunning    = errors.New("timer is already running")
	ErrNotRunning        = errors.New("timer is not running")
	ErrNoOpenSession     = errors.New("no open session")
	ErrEmptyProjectName  = errors.New("project name must not be empty")
	ErrUnknownProject    = errors.New("unknown project")
	ErrProjectHidden     = errors.New("project is hidden")
)

// Tracker owns the timer state machine and routes every finalized
// session to the remote ledger or the local cache. All operations are
// serialized by one mutex; a Stop fully resolves before the next Start
// is accepted.
type Tracker struct {
	Log *slog.Logger

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string

	mu        sync.Mutex
	state     domain.TimerState
	projects  []domain.Project
	authState domain.AuthState

	// remote holds ledger-fetched sessions (Synced=true); pending
	// mirrors the durable cache (Synced=false). A session lives in at
	// most one of the two.
	remote  []domain.Session
	pending []domain.Session

	store  ports.StateStore
	cache  ports.SessionCache
	ledger ports.Ledger
	tokens ports.TokenSource
}

// NewTracker loads persisted state and returns a ready tracker. Store
// read failures have already been degraded to empty by the adapter.
func NewTracker(log *slog.Logger, store ports.StateStore, cache ports.SessionCache, ledger ports.Ledger, tokens ports.TokenSource) (*Tracker, error) {
	t := &Tracker{
		Log:       log,
		Now:       time.Now,
		NewID:     newULID,
		authState: domain.AuthSignedOut,
		store:     store,
		cache:     cache,
		ledger:    ledger,
		tokens:    tokens,
	}
	projects, err := store.LoadProjects()
	if err != nil {
		return nil, err
	}
	t.projects = projects
	state, err := store.LoadTimer()
	if err != nil {
		return nil, err
	}
	t.state = state
	pending, err := cache.ReadAll()
	if err != nil {
		return nil, err
	}
	t.pending = pending
	return t, nil
}

func newULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.New(rand.NewSource(time.Now().UnixNano()))).String()
}

// State returns a snapshot of the timer state.
func (t *Tracker) State() domain.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// AuthState returns the current connectivity status.
func (t *Tracker) AuthState() domain.AuthState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.authState
}

// Projects returns a copy of the active project set.
func (t *Tracker) Projects() []domain.Project {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Project, len(t.projects))
	copy(out, t.projects)
	return out
}

// Sessions returns the authoritative session view: the union of the
// ledger-fetched set and the locally cached pending set.
func (t *Tracker) Sessions() []domain.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Session, 0, len(t.remote)+len(t.pending))
	out = append(out, t.remote...)
	out = append(out, t.pending...)
	return out
}

// AddProject creates a project with the given name.
func (t *Tracker) AddProject(name string) (domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, ErrEmptyProjectName
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p := domain.Project{ID: t.NewID(), Name: name}
	t.projects = append(t.projects, p)
	t.saveProjects()
	return p, nil
}

// DeleteProject removes a project from the active set. Ledger rows
// referencing it become orphaned, not deleted. If the timer points at
// the deleted project, the timer resets to idle.
func (t *Tracker) DeleteProject(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := -1
	for i := range t.projects {
		if t.projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownProject
	}
	t.projects = append(t.projects[:idx], t.projects[idx+1:]...)
	t.saveProjects()
	if t.state.CurrentProjectID == id {
		t.state = domain.TimerState{}
		t.saveTimer()
	}
	return nil
}

// ToggleProjectHidden flips a project's visibility in the timer UI.
// Hidden projects keep counting in stats and export.
func (t *Tracker) ToggleProjectHidden(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := domain.FindProject(t.projects, id)
	if p == nil {
		return ErrUnknownProject
	}
	p.Hidden = !p.Hidden
	t.saveProjects()
	return nil
}

// SelectProject changes the active project. Refused while a session is
// open: switching would turn an explicit stop into an implicit one.
// An empty id deselects.
func (t *Tracker) SelectProject(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Running {
		return ErrTimerRunning
	}
	if t.state.Open() {
		return ErrSessionOpen
	}
	if id != "" {
		p := domain.FindProject(t.projects, id)
		if p == nil {
			return ErrUnknownProject
		}
		if p.Hidden {
			return ErrProjectHidden
		}
	}
	t.state.CurrentProjectID = id
	t.saveTimer()
	return nil
}

// SetNote updates the note attached to the next finalized session.
func (t *Tracker) SetNote(note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.CurrentNote = note
	t.saveTimer()
}

// Start begins tracking, or resumes a paused session against the same
// open interval.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.CurrentProjectID == "" {
		return ErrNoProjectSelected
	}
	if t.state.Running {
		return ErrAlreadyRunning
	}
	if t.state.CurrentSessionStart == nil {
		now := t.Now()
		t.state.CurrentSessionStart = &now
	}
	t.state.Running = true
	t.saveTimer()
	return nil
}

// Pause halts the display without closing the open interval. The
// session start is untouched; paused wall-clock time still counts
// toward the final duration.
func (t *Tracker) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Running {
		return ErrNotRunning
	}
	t.state.Running = false
	t.saveTimer()
	return nil
}

// Stop closes the open interval and finalizes exactly one session
// spanning from the original start to now, pauses included. Intervals
// under one second are discarded. The timer always resets to idle,
// whatever the persistence outcome. The finalized session (nil when
// discarded) is returned for display.
func (t *Tracker) Stop(ctx context.Context) (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Open() {
		return nil, ErrNoOpenSession
	}

	start := *t.state.CurrentSessionStart
	end := t.Now()
	duration := int64(end.Sub(start) / time.Second)

	projectID := t.state.CurrentProjectID
	note := t.state.CurrentNote
	t.state = domain.TimerState{}
	t.saveTimer()

	if duration < 1 {
		t.Log.Debug("discarding sub-second session", slog.String("project", projectID))
		return nil, nil
	}

	session := domain.Session{
		ID:          t.NewID(),
		ProjectID:   projectID,
		StartTime:   start,
		EndTime:     end,
		DurationSec: duration,
		Note:        note,
		Date:        start.Format(domain.DateLayout),
	}
	t.persist(ctx, &session)
	return &session, nil
}

// Elapsed returns the open interval's length so far, zero when idle.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Open() {
		return 0
	}
	return t.Now().Sub(*t.state.CurrentSessionStart)
}

// persist routes one finalized session: remote ledger when signed in,
// durable cache otherwise or on any remote failure. A session is never
// silently dropped. Caller holds t.mu.
func (t *Tracker) persist(ctx context.Context, session *domain.Session) {
	if t.authState == domain.AuthSignedIn {
		if p := domain.FindProject(t.projects, session.ProjectID); p != nil {
			err := t.appendRemote(ctx, *session, p.Name)
			if err == nil {
				session.Synced = true
				t.remote = append(t.remote, *session)
				t.Log.Info("session appended to ledger",
					slog.String("project", p.Name),
					slog.Int64("duration_sec", session.DurationSec))
				return
			}
			t.authState = domain.AuthError
			t.Log.Warn("ledger append failed, caching session locally",
				slog.String("error", err.Error()))
		}
	}
	t.cacheLocally(*session)
}

// appendRemote acquires a fresh token (with retry) and attempts one
// ledger append.
func (t *Tracker) appendRemote(ctx context.Context, session domain.Session, projectName string) error {
	token, err := t.token(ctx)
	if err != nil {
		return err
	}
	return t.ledger.Append(ctx, token, session, projectName)
}

// cacheLocally makes a session durable in the local cache and mirrors
// it in the in-memory pending list. A cache write failure is logged;
// the session stays in memory for a later reconciliation attempt.
func (t *Tracker) cacheLocally(session domain.Session) {
	if err := t.cache.Append(session); err != nil {
		t.Log.Error("local cache write failed, session held in memory only",
			slog.String("session", session.ID), slog.String("error", err.Error()))
	}
	t.pending = append(t.pending, session)
}

// token acquires a capability token, retrying transient failures with
// exponential backoff.
func (t *Tracker) token(ctx context.Context) (string, error) {
	var token string
	op := func() error {
		var err error
		token, err = t.tokens.Token(ctx)
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return "", err
	}
	return token, nil
}

// SignIn verifies ledger connectivity and, on success, marks the
// tracker signed in and refreshes the authoritative remote view.
func (t *Tracker) SignIn(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.authState = domain.AuthPending
	token, err := t.token(ctx)
	if err != nil {
		t.authState = domain.AuthError
		return err
	}
	ok, err := t.ledger.TestConnection(ctx, token)
	if err != nil || !ok {
		t.authState = domain.AuthError
		if err == nil {
			err = errors.New("ledger connection test failed")
		}
		return err
	}
	t.authState = domain.AuthSignedIn
	t.refreshRemote(ctx, token)
	return nil
}

// SignOut drops connectivity. Cached sessions stay cached.
func (t *Tracker) SignOut() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.authState = domain.AuthSignedOut
	t.remote = nil
}

// refreshRemote replaces the remote set from a full ledger scan. On
// failure the previously loaded view is kept. Caller holds t.mu.
func (t *Tracker) refreshRemote(ctx context.Context, token string) {
	fetched, err := t.ledger.FetchAll(ctx, token, t.projects)
	if err != nil {
		t.Log.Warn("ledger fetch failed, keeping previous view",
			slog.String("error", err.Error()))
		return
	}
	t.remote = fetched
}

func (t *Tracker) saveProjects() {
	if err := t.store.SaveProjects(t.projects); err != nil {
		t.Log.Error("saving projects failed", slog.String("error", err.Error()))
	}
}

func (t *Tracker) saveTimer() {
	if err := t.store.SaveTimer(t.state); err != nil {
		t.Log.Error("saving timer state failed", slog.String("error", err.Error()))
	}
}
