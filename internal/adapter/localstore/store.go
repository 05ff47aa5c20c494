// Package localstore is a JSON blob store on the local filesystem. It
// holds everything the tracker needs between invocations: the project
// set, the open timer, and sessions waiting to be written to the ledger.
package localstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"timeledger/internal/domain"
)

const (
	projectsFile = "projects.json"
	pendingFile  = "pending.json"
	timerFile    = "state.json"
)

// Store reads and writes JSON blobs under a base directory. All access is
// mutex-guarded so a cache drain and a new append cannot interleave their
// read-modify-write round-trips.
type Store struct {
	baseDir string
	log     *slog.Logger
	mu      sync.Mutex
}

// New ensures the base directory exists and returns a store over it.
func New(baseDir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{baseDir: baseDir, log: log}, nil
}

// LoadProjects returns the stored project set, empty when missing or
// unreadable. Corrupt data is logged and treated as empty.
func (s *Store) LoadProjects() ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var projects []domain.Project
	s.read(projectsFile, &projects)
	return projects, nil
}

// SaveProjects overwrites the stored project set.
func (s *Store) SaveProjects(projects []domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(projectsFile, projects)
}

// LoadTimer returns the persisted timer state, idle when missing.
func (s *Store) LoadTimer() (domain.TimerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var state domain.TimerState
	s.read(timerFile, &state)
	return state, nil
}

// SaveTimer overwrites the persisted timer state.
func (s *Store) SaveTimer(state domain.TimerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(timerFile, state)
}

// ReadAll returns every cached session in append order, oldest first.
func (s *Store) ReadAll() ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sessions []domain.Session
	s.read(pendingFile, &sessions)
	return sessions, nil
}

// Append adds one session to the end of the cache.
func (s *Store) Append(session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sessions []domain.Session
	s.read(pendingFile, &sessions)
	sessions = append(sessions, session)
	return s.write(pendingFile, sessions)
}

// ReplaceAll overwrites the cache with exactly the given sessions.
func (s *Store) ReplaceAll(sessions []domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return s.write(pendingFile, sessions)
}

// read unmarshals a blob into v. A missing file is normal; any other
// failure is logged and v is left at its zero value.
func (s *Store) read(name string, v any) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("local store read failed, treating as empty",
				slog.String("file", name), slog.String("error", err.Error()))
		}
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("local store blob corrupt, treating as empty",
			slog.String("file", name), slog.String("error", err.Error()))
	}
}

func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.baseDir, name)
	// Write-then-rename so a crash mid-write cannot corrupt the blob.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
