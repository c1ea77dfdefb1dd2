package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"sfvotes/internal/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	summaryFrom string
	summaryTo   string
)

func init() {
	summaryCmd.Flags().StringVar(&summaryFrom, "from", "0000-01-01", "Only count votes on or after this date (YYYY-MM-DD).")
	summaryCmd.Flags().StringVar(&summaryTo, "to", "9999-12-31", "Only count votes on or before this date (YYYY-MM-DD).")
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary [--from <date>] [--to <date>]",
	Short: "Prints what the database holds and how every legislator voted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(configPath, dbPath)
		if err != nil {
			return err
		}
		return runSummary(cmd.Context(), config, os.Stdout, summaryFrom, summaryTo)
	},
}

func runSummary(ctx context.Context, config Config, out io.Writer, from, to string) error {
	sqlite, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqlite.Close()
	qry := db.New(sqlite)

	totals, err := qry.GetTotals(ctx)
	if err != nil {
		return fmt.Errorf("get totals: %w", err)
	}
	tallies, err := qry.ListLegislatorTallies(ctx, db.ListLegislatorTalliesParams{
		After:  from,
		Before: to,
	})
	if err != nil {
		return fmt.Errorf("list tallies: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Legislators", "Proposals", "Vote events", "Votes"})
	t.AppendRow(table.Row{totals.Legislators, totals.Proposals, totals.VoteEvents, totals.Votes})
	t.SetStyle(table.StyleRounded)
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Legislator", "Aye", "No"})
	for _, tally := range tallies {
		t.AppendRow(table.Row{tally.Name, tally.Ayes, tally.Noes})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	return nil
}
