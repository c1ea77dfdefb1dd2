package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sfvotes/internal/components/telemetry"
	"sfvotes/internal/db"
	"sfvotes/internal/page"
	"sfvotes/internal/votes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var dumpDir string

func init() {
	crawlCmd.Flags().StringVar(&dumpDir, "dump", "", "Write every page loaded during the crawl into this directory.")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl <first-year> <last-year>",
	Short: "Stores every vote from first-year to last-year (inclusive), nothing is stored if any part of the crawl fails.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		firstYear, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("first year: %w", err)
		}
		lastYear, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("last year: %w", err)
		}

		config, err := loadConfig(configPath, dbPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		shutdown, err := setupTelemetry(ctx, config.Telemetry)
		if err != nil {
			return err
		}
		defer shutdown()

		stats, err := runCrawl(ctx, config, firstYear, lastYear, dumpDir)
		if err != nil {
			return err
		}
		renderStats(os.Stdout, stats)
		return nil
	},
}

func setupTelemetry(ctx context.Context, config telemetry.Config) (func(), error) {
	if !config.Enabled() {
		return func() {}, nil
	}
	otel, err := telemetry.Setup(ctx, "sfvotes", config)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}
	telemetry.InstrumentPerfStats(ctx)
	return func() {
		err := otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}, nil
}

func newSession(tel telemetry.API, config Config, dumpDir, name string) (*page.HTTPSession, error) {
	if dumpDir != "" {
		dumpDir = filepath.Join(dumpDir, name)
	}
	session, err := page.NewHTTPSession(
		telemetry.NewScopedAPI(name, tel),
		config.sessionOptions(dumpDir),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s session: %w", name, err)
	}
	return session, nil
}

func runCrawl(ctx context.Context, config Config, firstYear, lastYear int, dumpDir string) (votes.Stats, error) {
	sqlite, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		return votes.Stats{}, fmt.Errorf("open db: %w", err)
	}
	defer sqlite.Close()

	tel := telemetry.SlogAPI{}

	listing, err := newSession(tel, config, dumpDir, "listing")
	if err != nil {
		return votes.Stats{}, err
	}
	defer listing.Close()
	detail, err := newSession(tel, config, dumpDir, "detail")
	if err != nil {
		return votes.Stats{}, err
	}
	defer detail.Close()

	crawler, err := votes.NewCrawler(votes.CrawlerOptions{
		Listing:            listing,
		Detail:             detail,
		MakeTx:             db.NewMakeTx(sqlite),
		Tel:                tel,
		BaseUrl:            config.BaseUrl,
		SettleDelay:        config.settleDelay(),
		MaxPagerExpansions: config.MaxPagerExpansions,
	})
	if err != nil {
		return votes.Stats{}, err
	}

	slog.Info("crawling votes", "first_year", firstYear, "last_year", lastYear, "base_url", config.BaseUrl)
	return crawler.Crawl(ctx, firstYear, lastYear)
}

func renderStats(out io.Writer, stats votes.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Crawl", stats.CrawlID})
	t.AppendRows([]table.Row{
		{"Years", fmt.Sprintf("%d (%d-%d)", stats.Years, stats.FirstYear, stats.LastYear)},
		{"Pages", stats.Pages},
		{"Rows", stats.Rows},
		{"Vote events", stats.VoteEvents},
		{"Votes", stats.Votes},
		{"New legislators", stats.LegislatorsCreated},
		{"New proposals", stats.ProposalsCreated},
		{"Detail pages", stats.DetailFetches},
		{"Elapsed", stats.Elapsed.Round(time.Millisecond).String()},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
