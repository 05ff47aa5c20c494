package ports

import (
	"context"

	"timeledger/internal/domain"
)

// Ledger is the remote append-only system-of-record for synced sessions.
// Append writes one finalized session; FetchAll is a full scan returning
// every row that maps to a known project. Implementations must never
// reorder or rewrite existing rows.
type Ledger interface {
	TestConnection(ctx context.Context, token string) (bool, error)
	Append(ctx context.Context, token string, session domain.Session, projectName string) error
	FetchAll(ctx context.Context, token string, projects []domain.Project) ([]domain.Session, error)
}

// SessionCache is the durable local holding area for sessions that could
// not be written to the ledger. ReplaceAll overwrites the whole cache;
// callers serialize the read-all / compute-pending / overwrite-all
// round-trip themselves.
type SessionCache interface {
	ReadAll() ([]domain.Session, error)
	Append(session domain.Session) error
	ReplaceAll(sessions []domain.Session) error
}

// StateStore persists the mutable tracker state between invocations:
// the project set and the open timer.
type StateStore interface {
	LoadProjects() ([]domain.Project, error)
	SaveProjects(projects []domain.Project) error
	LoadTimer() (domain.TimerState, error)
	SaveTimer(state domain.TimerState) error
}

// TokenSource acquires a fresh capability token for ledger access.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
