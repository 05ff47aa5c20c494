package domain

import "time"

// DateLayout is the calendar-day format used by Session.Date and by the
// remote ledger's date column.
const DateLayout = "2006-01-02"

// Session is one finalized record of continuous tracked work on a project.
// Pause time is included; a pause/resume cycle never splits a session.
// Sessions are immutable once finalized.
type Session struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationSec int64     `json:"duration_sec"`
	Note        string    `json:"note"`
	Date        string    `json:"date"` // calendar day of StartTime, YYYY-MM-DD
	Synced      bool      `json:"synced"`
}

// Hours returns the session duration in hours.
func (s Session) Hours() float64 {
	return float64(s.DurationSec) / 3600
}

// TimerState is the single mutable locus of "am I tracking right now".
// CurrentSessionStart is non-nil if and only if a session is open
// (running, or paused but not yet stopped).
type TimerState struct {
	Running             bool       `json:"running"`
	CurrentProjectID    string     `json:"current_project_id"`
	CurrentSessionStart *time.Time `json:"current_session_start"`
	CurrentNote         string     `json:"current_note"`
}

// Open reports whether a session is currently open.
func (t TimerState) Open() bool {
	return t.CurrentSessionStart != nil
}
