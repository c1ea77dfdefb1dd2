package legistar

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"sfvotes/internal/components/assert"
	"sfvotes/internal/components/telemetry"
	"sfvotes/internal/htmlutil"
	"sfvotes/internal/page"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_detail_fetch = "fetch"
)

const (
	fileNumberLabelID = "ctl00_ContentPlaceHolder1_lblFile2"
	titleLabelID      = "ctl00_ContentPlaceHolder1_lblTitle2"
	statusLabelID     = "ctl00_ContentPlaceHolder1_lblStatus2"
	typeLabelID       = "ctl00_ContentPlaceHolder1_lblType2"
	introducedLabelID = "ctl00_ContentPlaceHolder1_lblIntroduced2"
)

// ProposalDetail is what a legislation detail page says about a proposal.
type ProposalDetail struct {
	FileNumber   int64
	Title        string
	Status       string
	ProposalType string
	Introduced   time.Time
}

// DetailScraper reads legislation detail pages, it should own its session so loading
// a detail page never navigates away from the voting grid.
type DetailScraper struct {
	session page.Session
	tel     telemetry.API
}

func NewDetailScraper(session page.Session, tel telemetry.API) DetailScraper {
	assert.NotNil(session, "detail session")
	assert.NotNil(tel, "telemetry")
	return DetailScraper{
		session: session,
		tel:     telemetry.NewScopedAPI("detail", tel),
	}
}

func (d DetailScraper) Fetch(ctx context.Context, href string) (ProposalDetail, error) {
	ctx, span := tracer.Start(ctx, "FetchDetail", trace.WithAttributes(
		attribute.String("href", href),
	))
	defer span.End()

	detail, err := d.fetch(ctx, href)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch proposal detail")
		d.tel.ReportBroken(report_detail_fetch, err, href)
		return ProposalDetail{}, err
	}
	span.SetAttributes(attribute.Int64("file_number", detail.FileNumber))
	return detail, nil
}

func (d DetailScraper) label(ctx context.Context, id string) (string, error) {
	el, err := d.session.Find(ctx, page.ByID(id))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrMalformedField, id, err)
	}
	return htmlutil.NormalizeText(el.Text()), nil
}

func (d DetailScraper) fetch(ctx context.Context, href string) (ProposalDetail, error) {
	err := d.session.Open(ctx, href)
	if err != nil {
		return ProposalDetail{}, err
	}

	fileText, err := d.label(ctx, fileNumberLabelID)
	if err != nil {
		return ProposalDetail{}, err
	}
	fileNumber, err := ParseFileNumber(fileText)
	if err != nil {
		return ProposalDetail{}, err
	}
	title, err := d.label(ctx, titleLabelID)
	if err != nil {
		return ProposalDetail{}, err
	}
	status, err := d.label(ctx, statusLabelID)
	if err != nil {
		return ProposalDetail{}, err
	}
	proposalType, err := d.label(ctx, typeLabelID)
	if err != nil {
		return ProposalDetail{}, err
	}
	introducedText, err := d.label(ctx, introducedLabelID)
	if err != nil {
		return ProposalDetail{}, err
	}
	introduced, err := ParseDate(introducedText)
	if err != nil {
		return ProposalDetail{}, err
	}

	return ProposalDetail{
		FileNumber:   fileNumber,
		Title:        title,
		Status:       status,
		ProposalType: proposalType,
		Introduced:   introduced,
	}, nil
}

// ParseFileNumber parses the integer file number shown in grids and on detail pages.
func ParseFileNumber(text string) (int64, error) {
	text = htmlutil.NormalizeText(text)
	fileNumber, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: file number '%s': %w", ErrMalformedField, text, err)
	}
	return fileNumber, nil
}
