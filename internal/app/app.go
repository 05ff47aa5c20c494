// Package app wires adapters and the tracker use case from configuration.
package app

import (
	"context"
	"errors"
	"log/slog"

	googleadapter "timeledger/internal/adapter/google"
	"timeledger/internal/adapter/localstore"
	msql "timeledger/internal/adapter/mysql"
	"timeledger/internal/adapter/sheets"
	"timeledger/internal/config"
	"timeledger/internal/domain"
	"timeledger/internal/migrate"
	"timeledger/internal/ports"
	"timeledger/internal/usecase"
)

// App holds the wired tracker and its logger.
type App struct {
	Log     *slog.Logger
	Tracker *usecase.Tracker
}

// staticToken satisfies ports.TokenSource when no real token flow is
// configured (MySQL ledger, or offline-only use).
type staticToken struct{}

func (staticToken) Token(context.Context) (string, error) { return "local", nil }

// New builds the app. The ledger backend is chosen by configuration:
// MySQL when a DSN is set, Google Sheets when a sheet URL is set,
// otherwise the tracker runs offline-only (everything lands in the
// local cache until a ledger is configured).
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	store, err := localstore.New(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}

	var (
		ledger ports.Ledger
		tokens ports.TokenSource = staticToken{}
	)
	switch {
	case cfg.MySQL.DSN != "":
		if err := migrate.Run(ctx, cfg.MySQL.DSN, log); err != nil {
			return nil, err
		}
		l, err := msql.NewLedger(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
		ledger = l
	case cfg.Google.SheetURL != "":
		id, err := sheets.SpreadsheetIDFromURL(cfg.Google.SheetURL)
		if err != nil {
			return nil, err
		}
		ledger = sheets.NewClient("", id, log)
		tokens = googleadapter.NewTokenSource(
			cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RefreshToken)
	default:
		ledger = offlineLedger{}
	}

	tracker, err := usecase.NewTracker(log, store, store, ledger, tokens)
	if err != nil {
		return nil, err
	}
	return &App{Log: log, Tracker: tracker}, nil
}

// offlineLedger rejects every remote operation so the persistence
// router always falls back to the local cache.
type offlineLedger struct{}

var errNoLedger = errors.New("no ledger configured")

func (offlineLedger) TestConnection(context.Context, string) (bool, error) {
	return false, errNoLedger
}

func (offlineLedger) Append(context.Context, string, domain.Session, string) error {
	return errNoLedger
}

func (offlineLedger) FetchAll(context.Context, string, []domain.Project) ([]domain.Session, error) {
	return nil, errNoLedger
}
