package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/stats"
)

// HTTPServer returns a configured http.Server exposing the trigger and
// status endpoints. Call ListenAndServe on it in a goroutine and
// Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// /sync triggers a reconciliation: drain the local cache into the
	// ledger. Optional ?timeout=5m bounds the run.
	mux.HandleFunc("/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		if tStr := r.URL.Query().Get("timeout"); tStr != "" {
			if d, err := time.ParseDuration(tStr); err == nil && d > 0 {
				var cancel func()
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
		}

		result, err := a.Tracker.Reconcile(ctx)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status":        "error",
				"error":         err.Error(),
				"still_pending": result.StillPending,
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        "ok",
			"synced":        result.Synced,
			"still_pending": result.StillPending,
		})
	})

	// /stats?date=YYYY-MM-DD&bucket=day|week|month returns the
	// aggregated view for the requested bucket, defaulting to today.
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		date := q.Get("date")
		if date == "" {
			date = time.Now().Format(domain.DateLayout)
		}
		bucket := stats.BucketDay
		if b := q.Get("bucket"); b != "" {
			var err error
			bucket, err = stats.ParseBucket(b)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		rows := stats.Calculate(a.Tracker.Sessions(), a.Tracker.Projects(), date, bucket)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"date":        date,
			"bucket":      string(bucket),
			"total_hours": stats.Total(rows),
			"projects":    rows,
		})
	})

	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.Log, mux)}
	a.Log.Info("http trigger server configured", slog.String("addr", addr))
	return srv
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
