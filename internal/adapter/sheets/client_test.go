package sheets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeledger/internal/domain"
)

var projects = []domain.Project{
	{ID: "p1", Name: "Website"},
	{ID: "p2", Name: "Backend"},
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSpreadsheetIDFromURL(t *testing.T) {
	id, err := SpreadsheetIDFromURL("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9", id)

	_, err = SpreadsheetIDFromURL("https://example.com/not-a-sheet")
	assert.Error(t, err)
}

func TestAppendSendsLedgerRow(t *testing.T) {
	var captured struct {
		Values [][]any `json:"values"`
	}
	var gotAuth, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet123", testLogger())
	session := domain.Session{
		StartTime:   time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC),
		DurationSec: 5400,
		Note:        "frontend work",
		Date:        "2024-03-10",
	}
	require.NoError(t, c.Append(context.Background(), "tok", session, "Website"))

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/v4/spreadsheets/sheet123/values/A1:F1:append", gotPath)
	assert.Contains(t, gotQuery, "valueInputOption=USER_ENTERED")

	require.Len(t, captured.Values, 1)
	row := captured.Values[0]
	require.Len(t, row, 6)
	assert.Equal(t, "Website", row[0])
	assert.Equal(t, "2024-03-10T09:00:00Z", row[1])
	assert.Equal(t, "2024-03-10T10:30:00Z", row[2])
	assert.Equal(t, "1.5000", row[3])
	assert.Equal(t, "frontend work", row[4])
	assert.Equal(t, "2024-03-10", row[5])
}

func TestAppendNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet123", testLogger())
	err := c.Append(context.Background(), "tok", domain.Session{}, "Website")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetchAllSkipsHeaderAndBadRows(t *testing.T) {
	payload := map[string]any{
		"values": [][]string{
			{"Project", "Start Time", "End Time", "Duration (h)", "Note", "Date"},
			{"Website", "2024-03-10T09:00:00Z", "2024-03-10T10:00:00Z", "1.0000", "ok row", "2024-03-10"},
			{"Website", "not-a-time", "2024-03-10T10:00:00Z", "", "bad start", ""},
			{"Website", "2024-03-10T09:00:00Z", "also-bad", "", "bad end", ""},
			{"Ghost", "2024-03-10T09:00:00Z", "2024-03-10T10:00:00Z", "", "unknown project", ""},
			{"", "2024-03-10T09:00:00Z", "2024-03-10T10:00:00Z", "", "missing project", ""},
			{"Backend", "2024-03-11T08:00:00Z", "2024-03-11T08:30:00Z"},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/spreadsheets/sheet123/values/A:F", r.URL.Path)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet123", testLogger())
	sessions, err := c.FetchAll(context.Background(), "tok", projects)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "p1", sessions[0].ProjectID)
	assert.Equal(t, int64(3600), sessions[0].DurationSec)
	assert.Equal(t, "ok row", sessions[0].Note)
	assert.Equal(t, "2024-03-10", sessions[0].Date)
	assert.True(t, sessions[0].Synced)

	// Short row without note columns still parses.
	assert.Equal(t, "p2", sessions[1].ProjectID)
	assert.Equal(t, "", sessions[1].Note)
	assert.Equal(t, int64(1800), sessions[1].DurationSec)
}

func TestFetchAllWithoutHeaderRow(t *testing.T) {
	payload := map[string]any{
		"values": [][]string{
			{"Website", "2024-03-10T09:00:00Z", "2024-03-10T10:00:00Z", "1.0000", "", "2024-03-10"},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet123", testLogger())
	sessions, err := c.FetchAll(context.Background(), "tok", projects)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestFetchAllEmptySheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet123", testLogger())
	sessions, err := c.FetchAll(context.Background(), "tok", projects)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer good" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet123", testLogger())

	ok, err := c.TestConnection(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.TestConnection(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.TestConnection(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok, "missing token short-circuits")
}
