// Command timeledger is a personal time tracker: select a project,
// start/pause/stop a timer, and sync finalized sessions to a remote
// ledger with an offline cache in between.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"timeledger/cmd/timeledger/commands"
)

func main() {
	// Optional .env next to the binary; real config comes from the
	// config file and TIMELEDGER_* env vars.
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
