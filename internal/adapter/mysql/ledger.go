// Package mysql implements ports.Ledger against a MySQL table, for
// setups that prefer a self-hosted ledger over a spreadsheet. Rows are
// append-only; nothing here updates or deletes.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"timeledger/internal/domain"
)

// Ledger writes and scans the ledger_sessions table.
type Ledger struct {
	db  *sql.DB
	log *slog.Logger
}

// NewLedger opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewLedger(ctx context.Context, dsn string, log *slog.Logger) (*Ledger, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db, log: log}, nil
}

// TestConnection pings the database. The token is unused; access control
// is the DSN's concern.
func (l *Ledger) TestConnection(ctx context.Context, _ string) (bool, error) {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := l.db.PingContext(c); err != nil {
		return false, err
	}
	return true, nil
}

// Append inserts one finalized session row.
func (l *Ledger) Append(ctx context.Context, _ string, session domain.Session, projectName string) error {
	const q = `
INSERT INTO ledger_sessions
  (project, start_time, end_time, duration_hours, note, date)
VALUES
  (?, ?, ?, ?, ?, ?);
`
	_, err := l.db.ExecContext(
		ctx,
		q,
		projectName,
		session.StartTime.UTC(),
		session.EndTime.UTC(),
		session.Hours(),
		session.Note,
		session.Date,
	)
	if err != nil {
		return err
	}
	l.log.Info("mysql ledger appended session",
		slog.String("project", projectName), slog.String("date", session.Date))
	return nil
}

// FetchAll scans every row and maps it back to a session. Rows naming a
// project that no longer exists are skipped, matching the sheet ledger's
// discard rules.
func (l *Ledger) FetchAll(ctx context.Context, _ string, projects []domain.Project) ([]domain.Session, error) {
	const q = `
SELECT id, project, start_time, end_time, note
FROM ledger_sessions
ORDER BY id;
`
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var (
			id      int64
			project string
			start   time.Time
			end     time.Time
			note    sql.NullString
		)
		if err := rows.Scan(&id, &project, &start, &end, &note); err != nil {
			return nil, err
		}
		p := domain.FindProjectByName(projects, project)
		if p == nil {
			l.log.Debug("mysql ledger skipping row for unknown project",
				slog.Int64("row", id), slog.String("project", project))
			continue
		}
		duration := int64(end.Sub(start) / time.Second)
		if duration < 0 {
			duration = 0
		}
		out = append(out, domain.Session{
			ID:          fmt.Sprintf("ledger-%d", id),
			ProjectID:   p.ID,
			StartTime:   start,
			EndTime:     end,
			DurationSec: duration,
			Note:        note.String,
			Date:        start.Format(domain.DateLayout),
			Synced:      true,
		})
	}
	return out, rows.Err()
}

// Close closes the underlying DB. Not part of the Ledger port to keep it
// minimal.
func (l *Ledger) Close() error { return l.db.Close() }
