package votes

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"sfvotes/internal/components/assert"
	"sfvotes/internal/components/chrono"
	"sfvotes/internal/components/telemetry"
	"sfvotes/internal/db"
	"sfvotes/internal/legistar"
	"sfvotes/internal/page"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_crawl          = "crawl"
	report_crawl_navigate = "navigate"
)

// Stats summarizes a crawl, counts of a failed crawl describe work that was rolled back.
type Stats struct {
	CrawlID   string
	FirstYear int
	LastYear  int
	Started   time.Time
	Elapsed   time.Duration

	Years              int
	Pages              int
	Rows               int
	VoteEvents         int
	Votes              int
	LegislatorsCreated int
	ProposalsCreated   int
	DetailFetches      int
}

type CrawlerOptions struct {
	// Listing walks the voting grid, Detail loads detail pages. They must be distinct
	// sessions so detail pages never replace the grid.
	Listing page.Session
	Detail  page.Session
	MakeTx  db.MakeTx
	Tel     telemetry.API
	// Clock defaults to the system clock.
	Clock chrono.API

	BaseUrl            string
	SettleDelay        time.Duration
	MaxPagerExpansions int
}

// Crawler walks the voting grid year by year and page by page, storing everything it
// reads through a single unit of work that is only committed once every year is done.
type Crawler struct {
	listing page.Session
	makeTx  db.MakeTx
	tel     telemetry.API
	clock   chrono.API

	mainPage *url.URL
	settle   time.Duration
	pager    legistar.Pager
	details  legistar.DetailScraper
}

// sameSession reports whether both sessions are the same value, sessions of a type
// that cannot be compared are never the same.
func sameSession(a, b page.Session) bool {
	typ := reflect.TypeOf(a)
	if typ != reflect.TypeOf(b) || !typ.Comparable() {
		return false
	}
	return a == b
}

func NewCrawler(options CrawlerOptions) (Crawler, error) {
	assert.NotNil(options.Listing, "listing session")
	assert.NotNil(options.Detail, "detail session")
	assert.NotNil(options.MakeTx, "MakeTx")
	assert.NotNil(options.Tel, "telemetry")

	if sameSession(options.Listing, options.Detail) {
		return Crawler{}, fmt.Errorf("listing and detail pages must use different sessions")
	}
	base, err := url.Parse(options.BaseUrl)
	if err != nil {
		return Crawler{}, fmt.Errorf("parse base url: %w", err)
	}
	if !base.IsAbs() {
		return Crawler{}, fmt.Errorf("base url '%s' is not absolute", options.BaseUrl)
	}
	mainPage := base.JoinPath(legistar.MainPagePath)

	clock := options.Clock
	if clock == nil {
		clock = chrono.NewStandardImpl()
	}

	return Crawler{
		listing:  options.Listing,
		makeTx:   options.MakeTx,
		tel:      telemetry.NewScopedAPI("crawler", options.Tel),
		clock:    clock,
		mainPage: mainPage,
		settle:   options.SettleDelay,
		pager: legistar.NewPager(
			options.Listing,
			options.Tel,
			options.SettleDelay,
			options.MaxPagerExpansions,
		),
		details: legistar.NewDetailScraper(options.Detail, options.Tel),
	}, nil
}

// Crawl stores the votes of every year from firstYear to lastYear inclusive. Either all
// of them are committed or, on any error, none of them are.
func (c Crawler) Crawl(ctx context.Context, firstYear, lastYear int) (Stats, error) {
	if firstYear > lastYear {
		return Stats{}, fmt.Errorf("%w: %d comes after %d", ErrInvalidYearRange, firstYear, lastYear)
	}

	stats := Stats{
		CrawlID:   uuid.NewString(),
		FirstYear: firstYear,
		LastYear:  lastYear,
		Started:   c.clock.Now(),
	}

	ctx, span := tracer.Start(ctx, "Crawl", trace.WithAttributes(
		attribute.String("crawl_id", stats.CrawlID),
		attribute.Int("first_year", firstYear),
		attribute.Int("last_year", lastYear),
	))
	defer span.End()

	c.tel.ReportDebug("starting crawl", stats.CrawlID, firstYear, lastYear)

	err := c.crawl(ctx, &stats)
	stats.Elapsed = c.clock.Now().Sub(stats.Started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "crawl failed")
		c.tel.ReportBroken(report_crawl, err, stats.CrawlID)
		return stats, err
	}

	c.tel.ReportCount("vote-events", int64(stats.VoteEvents))
	c.tel.ReportCount("votes", int64(stats.Votes))
	return stats, nil
}

func (c Crawler) crawl(ctx context.Context, stats *Stats) error {
	tx, discard, commit, err := c.makeTx(ctx)
	if err != nil {
		c.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	resolver := NewResolver(tx, c.tel)
	defer func() {
		stats.LegislatorsCreated = resolver.LegislatorsCreated
		stats.ProposalsCreated = resolver.ProposalsCreated
		stats.DetailFetches = resolver.DetailFetches
	}()

	err = c.openVotes(ctx)
	if err != nil {
		return err
	}

	for year := stats.FirstYear; year <= stats.LastYear; year++ {
		err = c.crawlYear(ctx, tx, resolver, year, stats)
		if err != nil {
			return err
		}
		stats.Years++
	}

	err = commit()
	if err != nil {
		c.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err))
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (c Crawler) openVotes(ctx context.Context) error {
	err := c.listing.Open(ctx, c.mainPage.String())
	if err != nil {
		return err
	}
	link, err := c.listing.Find(ctx, page.ByPartialLinkText(legistar.VotesLinkText))
	if err != nil {
		c.tel.ReportBroken(report_crawl_navigate, err, c.mainPage.String())
		return fmt.Errorf("locate votes link: %w", err)
	}
	err = c.listing.Click(ctx, link)
	if err != nil {
		return fmt.Errorf("open votes: %w", err)
	}
	return c.listing.Wait(ctx, c.settle)
}

func (c Crawler) crawlYear(ctx context.Context, tx *db.Queries, resolver *Resolver, year int, stats *Stats) error {
	ctx, span := tracer.Start(ctx, "CrawlYear", trace.WithAttributes(
		attribute.Int("year", year),
	))
	defer span.End()

	found, err := legistar.SelectOption(ctx, c.listing, c.settle, legistar.TimePeriodInputID, strconv.Itoa(year))
	if err != nil {
		return fmt.Errorf("select year %d: %w", year, err)
	}
	if !found {
		err = fmt.Errorf("%w: %d", ErrYearNotFound, year)
		span.SetStatus(codes.Error, "year not found")
		return err
	}

	for n := 1; ; n++ {
		found, err := c.pager.GoToPage(ctx, legistar.VotingGridID, n)
		if err != nil {
			return fmt.Errorf("year %d: %w", year, err)
		}
		if !found {
			c.tel.ReportDebug("year done", year, n-1)
			return nil
		}
		err = c.crawlPage(ctx, tx, resolver, stats)
		if err != nil {
			return fmt.Errorf("year %d page %d: %w", year, n, err)
		}
	}
}

func (c Crawler) crawlPage(ctx context.Context, tx *db.Queries, resolver *Resolver, stats *Stats) error {
	ctx, span := tracer.Start(ctx, "CrawlPage")
	defer span.End()

	grid, err := legistar.ExtractGrid(ctx, c.listing, legistar.VotingGridID)
	if err != nil {
		return err
	}
	legislators, err := legistar.CheckVotingHeaders(grid.Headers)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("rows", len(grid.Rows)))

	for i, row := range grid.Rows {
		err = c.crawlRow(ctx, tx, resolver, legislators, row, stats)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	stats.Pages++
	pageCounter.Add(ctx, 1)
	return nil
}

// ballot returns whether the text of a cell is a vote and which way it went, anything
// other than exactly Aye or No means the legislator did not vote.
func ballot(text string) (aye, voted bool) {
	switch text {
	case "Aye":
		return true, true
	case "No":
		return false, true
	default:
		return false, false
	}
}

func (c Crawler) crawlRow(ctx context.Context, tx *db.Queries, resolver *Resolver, legislators []string, row legistar.Row, stats *Stats) error {
	fileText, err := row.Text(legistar.ColumnFileNumber)
	if err != nil {
		return err
	}
	fileNumber, err := legistar.ParseFileNumber(fileText)
	if err != nil {
		return err
	}
	dateText, err := row.Text(legistar.ColumnActionDate)
	if err != nil {
		return err
	}
	date, err := legistar.ParseDate(dateText)
	if err != nil {
		return err
	}

	proposal, err := resolver.ResolveProposal(ctx, fileNumber, c.detailFetcher(row))
	if err != nil {
		return err
	}

	event, err := tx.CreateVoteEvent(ctx, db.CreateVoteEventParams{
		ProposalID: proposal.ID,
		VoteDate:   legistar.FormatDate(date),
	})
	if err != nil {
		c.tel.ReportBroken(report_db_query, err, "CreateVoteEvent", fileNumber)
		return err
	}
	stats.VoteEvents++

	for _, name := range legislators {
		text, err := row.Text(name)
		if err != nil {
			return err
		}
		legislator, err := resolver.ResolveLegislator(ctx, name)
		if err != nil {
			return err
		}
		aye, voted := ballot(text)
		if !voted {
			continue
		}
		err = tx.CreateVote(ctx, db.CreateVoteParams{
			LegislatorID: legislator.ID,
			VoteEventID:  event.ID,
			AyeVote:      aye,
		})
		if err != nil {
			c.tel.ReportBroken(report_db_query, err, "CreateVote", name, fileNumber)
			return err
		}
		stats.Votes++
		voteCounter.Add(ctx, 1)
	}

	stats.Rows++
	rowCounter.Add(ctx, 1)
	return nil
}

// detailFetcher loads the detail page behind the row's file number link on the detail
// session, links are relative to the pages next to the landing page. The link is only
// required when the proposal is not stored yet.
func (c Crawler) detailFetcher(row legistar.Row) DetailFetcher {
	return func(ctx context.Context, fileNumber int64) (legistar.ProposalDetail, error) {
		href, err := row.Link(legistar.ColumnFileNumber)
		if err != nil {
			return legistar.ProposalDetail{}, err
		}
		link, err := c.mainPage.Parse(href)
		if err != nil {
			return legistar.ProposalDetail{}, fmt.Errorf("%w: detail link '%s': %w", legistar.ErrMalformedField, href, err)
		}
		return c.details.Fetch(ctx, link.String())
	}
}
