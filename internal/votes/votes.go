// Package votes turns the rows of the Legistar voting grid into legislators,
// proposals, vote events and votes inside a single unit of work.
package votes

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("sfvotes.internal.votes")
var meter = otel.Meter("sfvotes.internal.votes")

var pageCounter, _ = meter.Int64Counter(
	"votes.crawl.pages",
	metric.WithDescription("Grid pages processed."),
)
var rowCounter, _ = meter.Int64Counter(
	"votes.crawl.rows",
	metric.WithDescription("Grid rows stored as vote events."),
)
var voteCounter, _ = meter.Int64Counter(
	"votes.crawl.votes",
	metric.WithDescription("Aye or No ballots stored."),
)
var detailFetchCounter, _ = meter.Int64Counter(
	"votes.crawl.detail_fetches",
	metric.WithDescription("Legislation detail pages loaded."),
)

var (
	// ErrYearNotFound is returned when a requested year is not offered by the year selector.
	ErrYearNotFound = errors.New("year not found")
	// ErrInvalidYearRange is returned when the first year of a crawl comes after the last.
	ErrInvalidYearRange = errors.New("invalid year range")
)

const (
	report_db_query = "db-query"
)
