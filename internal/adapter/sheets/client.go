// Package sheets implements ports.Ledger against the Google Sheets
// values API. The sheet is treated as an append-only ledger: one row per
// session, columns [Project, Start Time, End Time, Duration (h), Note, Date].
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"timeledger/internal/domain"
)

var sheetIDPattern = regexp.MustCompile(`spreadsheets/d/([a-zA-Z0-9-_]+)`)

// SpreadsheetIDFromURL extracts the opaque spreadsheet id from a
// user-supplied sheet URL.
func SpreadsheetIDFromURL(sheetURL string) (string, error) {
	m := sheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return "", fmt.Errorf("sheets: no spreadsheet id in %q", sheetURL)
	}
	return m[1], nil
}

// Client implements ports.Ledger using the Sheets v4 values endpoints.
type Client struct {
	baseURL       string
	spreadsheetID string
	http          *http.Client
	log           *slog.Logger
}

func NewClient(baseURL, spreadsheetID string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://sheets.googleapis.com"
	}
	return &Client{
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (c *Client) valuesURL(rng string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u.Path = fmt.Sprintf("/v4/spreadsheets/%s/values/%s", c.spreadsheetID, rng)
	return u.String(), nil
}

// TestConnection reads a single cell to verify the sheet is reachable
// with the given token.
func (c *Client) TestConnection(ctx context.Context, token string) (bool, error) {
	if c.spreadsheetID == "" || token == "" {
		return false, nil
	}
	endpoint, err := c.valuesURL("A1")
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// Append writes one session as a ledger row.
// Columns: A project, B start ISO, C end ISO, D duration in hours
// (4 decimals), E note, F date.
func (c *Client) Append(ctx context.Context, token string, session domain.Session, projectName string) error {
	if token == "" {
		return errors.New("sheets: missing token")
	}
	endpoint, err := c.valuesURL("A1:F1")
	if err != nil {
		return err
	}
	endpoint += ":append?valueInputOption=USER_ENTERED"

	body := map[string]any{
		"values": [][]any{{
			projectName,
			session.StartTime.UTC().Format(time.RFC3339),
			session.EndTime.UTC().Format(time.RFC3339),
			fmt.Sprintf("%.4f", session.Hours()),
			session.Note,
			session.Date,
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sheets: unexpected status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// FetchAll scans columns A:F and maps rows to sessions. An optional
// header row (first cell "Project", case-insensitive) is skipped. Rows
// missing project/start/end, with unparsable timestamps, or naming an
// unknown project are discarded.
func (c *Client) FetchAll(ctx context.Context, token string, projects []domain.Project) ([]domain.Session, error) {
	if token == "" {
		return nil, errors.New("sheets: missing token")
	}
	endpoint, err := c.valuesURL("A:F")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("sheets: unexpected status %d: %s", resp.StatusCode, string(b))
	}

	var raw struct {
		Values [][]string `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	rows := raw.Values
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(rows[0][0], "project") {
		rows = rows[1:]
	}

	out := make([]domain.Session, 0, len(rows))
	for i, row := range rows {
		s, ok := c.mapRow(i, row, projects)
		if !ok {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// mapRow converts one sheet row to a session. Positional columns:
// [projectName, startISO, endISO, _, note, _].
func (c *Client) mapRow(index int, row []string, projects []domain.Project) (domain.Session, bool) {
	if len(row) < 3 || row[0] == "" || row[1] == "" || row[2] == "" {
		return domain.Session{}, false
	}
	start, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		c.log.Debug("sheets: discarding row with bad start time",
			slog.Int("row", index), slog.String("value", row[1]))
		return domain.Session{}, false
	}
	end, err := time.Parse(time.RFC3339, row[2])
	if err != nil {
		c.log.Debug("sheets: discarding row with bad end time",
			slog.Int("row", index), slog.String("value", row[2]))
		return domain.Session{}, false
	}
	project := domain.FindProjectByName(projects, row[0])
	if project == nil {
		c.log.Debug("sheets: discarding row for unknown project",
			slog.Int("row", index), slog.String("project", row[0]))
		return domain.Session{}, false
	}

	duration := int64(end.Sub(start) / time.Second)
	if duration < 0 {
		duration = 0
	}
	note := ""
	if len(row) > 4 {
		note = row[4]
	}
	return domain.Session{
		ID:          fmt.Sprintf("sheet-%d-%d", index, start.UnixMilli()),
		ProjectID:   project.ID,
		StartTime:   start,
		EndTime:     end,
		DurationSec: duration,
		Note:        note,
		Date:        start.Format(domain.DateLayout),
		Synced:      true,
	}, true
}
