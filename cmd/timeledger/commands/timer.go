package commands

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timeledger/internal/domain"
)

var selectCmd = &cobra.Command{
	Use:   "select [id]",
	Short: "Select the active project (no argument deselects)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		if err := a.Tracker.SelectProject(id); err != nil {
			return err
		}
		if id == "" {
			fmt.Println("project deselected")
		} else {
			fmt.Println("project selected")
		}
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the timer (or resume a paused session)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Tracker.Start(); err != nil {
			return err
		}
		fmt.Println("timer running")
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the display; the open session keeps accumulating",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Tracker.Pause(); err != nil {
			return err
		}
		fmt.Println("timer paused")
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and persist the finalized session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		// Opportunistic sign-in so the session can go straight to the
		// ledger; on failure the router caches it locally.
		if err := a.Tracker.SignIn(ctx); err != nil {
			a.Log.Debug("working offline", slog.String("error", err.Error()))
		}
		session, err := a.Tracker.Stop(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			fmt.Println("session under one second, discarded")
			return nil
		}
		where := "cached locally, run 'timeledger sync' when back online"
		if session.Synced {
			where = "written to the ledger"
		}
		fmt.Printf("session saved (%s): %s\n", where, formatClock(time.Duration(session.DurationSec)*time.Second))
		return nil
	},
}

var noteCmd = &cobra.Command{
	Use:   "note <text>",
	Short: "Attach a note to the open session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		a.Tracker.SetNote(strings.Join(args, " "))
		fmt.Println("note set")
		return nil
	},
}

var watch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the timer state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		printStatus(a.Tracker.State(), a.Tracker.Elapsed(), a.Tracker.Projects())
		if !watch {
			return nil
		}
		// One-second display tick; torn down with the context so no
		// periodic task outlives the watch.
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				state := a.Tracker.State()
				if !state.Open() {
					printStatus(state, 0, a.Tracker.Projects())
					return nil
				}
				fmt.Printf("\r%s", formatClock(a.Tracker.Elapsed()))
			}
		}
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&watch, "watch", "w", false, "refresh the elapsed time every second")
}

func printStatus(state domain.TimerState, elapsed time.Duration, projects []domain.Project) {
	switch {
	case state.Running:
		fmt.Printf("running on %s for %s\n", projectName(projects, state.CurrentProjectID), formatClock(elapsed))
	case state.Open():
		fmt.Printf("paused on %s at %s\n", projectName(projects, state.CurrentProjectID), formatClock(elapsed))
	case state.CurrentProjectID != "":
		fmt.Printf("idle, %s selected\n", projectName(projects, state.CurrentProjectID))
	default:
		fmt.Println("idle, no project selected")
	}
	if state.CurrentNote != "" {
		fmt.Printf("note: %s\n", state.CurrentNote)
	}
}

func projectName(projects []domain.Project, id string) string {
	if p := domain.FindProject(projects, id); p != nil {
		return p.Name
	}
	return id
}

func formatClock(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
