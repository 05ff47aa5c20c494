package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"timeledger/internal/domain"
	"timeledger/internal/report"
	"timeledger/internal/stats"
)

var (
	reportDate   string
	reportBucket string
	reportFormat string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate sessions into a day/week/month report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}

		date := reportDate
		if date == "" {
			date = time.Now().Format(domain.DateLayout)
		} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
		}
		bucket, err := stats.ParseBucket(reportBucket)
		if err != nil {
			return err
		}

		// Reports cover the authoritative set: pull the ledger view in
		// when connected, fall back to cached sessions otherwise.
		if err := a.Tracker.SignIn(ctx); err != nil {
			a.Log.Debug("reporting from local data only", slog.String("error", err.Error()))
		}

		rows := stats.Calculate(a.Tracker.Sessions(), a.Tracker.Projects(), date, bucket)
		total := stats.Total(rows)

		out := os.Stdout
		if reportOut != "" {
			f, err := os.Create(reportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		switch reportFormat {
		case "csv":
			return report.WriteCSV(out, rows, total)
		case "xls":
			return report.WriteSpreadsheetML(out, rows, total)
		case "text":
			if len(rows) == 0 {
				fmt.Fprintf(out, "no sessions for %s (%s)\n", date, bucket)
				return nil
			}
			for _, r := range rows {
				fmt.Fprintf(out, "%-30s %8.4f  %-10s %6.2f%%\n",
					r.ProjectName, r.Hours, stats.FormatTime(r.Hours), stats.Percent(r.Hours, total))
			}
			fmt.Fprintf(out, "%-30s %8.4f  %-10s\n", "Total", total, stats.FormatTime(total))
			return nil
		default:
			return fmt.Errorf("invalid --format %q: want text, csv or xls", reportFormat)
		}
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDate, "date", "", "reference date, YYYY-MM-DD (default today)")
	reportCmd.Flags().StringVar(&reportBucket, "bucket", "day", "bucket: day, week or month")
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "output format: text, csv or xls")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write to file instead of stdout")
}
