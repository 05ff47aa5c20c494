package usecase

import (
	"context"
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"timeledger/internal/domain"
)

// ReconcileResult reports how a cache drain went, for user-facing
// status messages.
type ReconcileResult struct {
	Synced       int
	StillPending int
}

// Reconcile drains the local session cache into the remote ledger:
// every cached session is appended oldest-first, successes are removed
// from the cache, failures and sessions whose project no longer exists
// stay pending. If anything synced, the remote view is re-fetched so
// the authoritative set reflects the ledger, not a local approximation.
//
// The whole read-all / compute-pending / overwrite-all round-trip runs
// under the tracker mutex, so a concurrent Stop cannot race the cache.
// Re-running with an empty cache is a no-op; successes are removed from
// the cache before anything else can re-read it, so a re-run never
// double-appends.
func (t *Tracker) Reconcile(ctx context.Context) (ReconcileResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cached, err := t.cache.ReadAll()
	if err != nil {
		return ReconcileResult{}, err
	}
	if len(cached) == 0 {
		// Memory-only sessions (whose cache write failed) stay in
		// t.pending; only the durable cache drives a drain.
		return ReconcileResult{}, nil
	}

	token, err := t.token(ctx)
	if err != nil {
		t.authState = domain.AuthError
		return ReconcileResult{StillPending: len(cached)}, err
	}

	var (
		synced       []domain.Session
		stillPending []domain.Session
	)
	for _, session := range cached {
		project := domain.FindProject(t.projects, session.ProjectID)
		if project == nil {
			// Left pending, never dropped: the project may come back.
			t.Log.Debug("skipping cached session with unresolved project",
				slog.String("session", session.ID),
				slog.String("project_id", session.ProjectID))
			stillPending = append(stillPending, session)
			continue
		}
		if err := t.appendWithRetry(ctx, token, session, project.Name); err != nil {
			t.Log.Warn("cached session append failed, keeping pending",
				slog.String("session", session.ID),
				slog.String("error", err.Error()))
			stillPending = append(stillPending, session)
			continue
		}
		session.Synced = true
		synced = append(synced, session)
	}

	if err := t.cache.ReplaceAll(stillPending); err != nil {
		t.Log.Error("rewriting session cache failed",
			slog.String("error", err.Error()))
	}
	t.pending = stillPending

	if len(synced) > 0 {
		if fetched, err := t.ledger.FetchAll(ctx, token, t.projects); err == nil {
			t.remote = fetched
		} else {
			// The appends are durable in the ledger even if the re-fetch
			// failed; reflect them locally and keep the previous view.
			t.Log.Warn("ledger re-fetch after reconcile failed",
				slog.String("error", err.Error()))
			t.remote = append(t.remote, synced...)
		}
	}

	t.Log.Info("reconciliation finished",
		slog.Int("synced", len(synced)),
		slog.Int("still_pending", len(stillPending)))
	return ReconcileResult{Synced: len(synced), StillPending: len(stillPending)}, nil
}

// appendWithRetry attempts one ledger append, retrying transient
// failures with exponential backoff.
func (t *Tracker) appendWithRetry(ctx context.Context, token string, session domain.Session, projectName string) error {
	op := func() error {
		return t.ledger.Append(ctx, token, session, projectName)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(op, b)
}
