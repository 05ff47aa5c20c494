package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Drain the local session cache into the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		if err := a.Tracker.SignIn(ctx); err != nil {
			return fmt.Errorf("cannot reach the ledger: %w", err)
		}
		result, err := a.Tracker.Reconcile(ctx)
		if err != nil {
			return err
		}
		switch {
		case result.Synced == 0 && result.StillPending == 0:
			fmt.Println("nothing to sync")
		case result.StillPending == 0:
			fmt.Printf("synced %d session(s)\n", result.Synced)
		default:
			fmt.Printf("synced %d session(s), %d still pending\n", result.Synced, result.StillPending)
		}
		return nil
	},
}
