package votes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"sfvotes/internal/components/assert"
	"sfvotes/internal/components/telemetry"
	"sfvotes/internal/db"
	"sfvotes/internal/legistar"

	"github.com/antzucaro/matchr"
)

const (
	report_resolver_similar_legislator = "similar-legislator"
	report_resolver_fetch_detail       = "fetch-detail"
)

// names at least this similar are probably the same person spelled differently
const similarNameThreshold = 0.93

// DetailFetcher loads what the detail page of a file number says about the proposal.
type DetailFetcher func(ctx context.Context, fileNumber int64) (legistar.ProposalDetail, error)

// Resolver finds or creates legislators and proposals through a unit of work, entities
// created earlier through the same unit of work are found by later lookups.
type Resolver struct {
	tx    *db.Queries
	tel   telemetry.API
	names []string

	LegislatorsCreated int
	ProposalsCreated   int
	DetailFetches      int
}

func NewResolver(tx *db.Queries, tel telemetry.API) *Resolver {
	assert.NotNil(tx, "tx")
	assert.NotNil(tel, "telemetry")
	return &Resolver{
		tx:  tx,
		tel: telemetry.NewScopedAPI("resolver", tel),
	}
}

func (r *Resolver) ResolveLegislator(ctx context.Context, name string) (db.Legislator, error) {
	legislator, err := r.tx.GetLegislatorByName(ctx, name)
	if err == nil {
		r.remember(name)
		return legislator, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.tel.ReportBroken(report_db_query, err, "GetLegislatorByName", name)
		return db.Legislator{}, err
	}

	r.warnSimilar(name)
	legislator, err = r.tx.CreateLegislator(ctx, name)
	if err != nil {
		r.tel.ReportBroken(report_db_query, err, "CreateLegislator", name)
		return db.Legislator{}, err
	}
	r.LegislatorsCreated++
	r.remember(name)
	return legislator, nil
}

func (r *Resolver) remember(name string) {
	if !slices.Contains(r.names, name) {
		r.names = append(r.names, name)
	}
}

// warnSimilar does not merge anything, it only points out names that look like
// they belong to someone already seen.
func (r *Resolver) warnSimilar(name string) {
	for _, known := range r.names {
		similarity := matchr.JaroWinkler(name, known, false)
		if similarity >= similarNameThreshold {
			r.tel.ReportWarning(
				report_resolver_similar_legislator,
				fmt.Sprintf("'%s' looks like '%s' (%.3f)", name, known, similarity),
			)
		}
	}
}

// ResolveProposal finds the proposal with the given file number, the detail page is
// only fetched when the proposal is not stored yet.
func (r *Resolver) ResolveProposal(ctx context.Context, fileNumber int64, fetch DetailFetcher) (db.Proposal, error) {
	proposal, err := r.tx.GetProposalByFileNumber(ctx, fileNumber)
	if err == nil {
		return proposal, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.tel.ReportBroken(report_db_query, err, "GetProposalByFileNumber", fileNumber)
		return db.Proposal{}, err
	}

	r.DetailFetches++
	detailFetchCounter.Add(ctx, 1)
	detail, err := fetch(ctx, fileNumber)
	if err != nil {
		return db.Proposal{}, fmt.Errorf("fetch detail of file %d: %w", fileNumber, err)
	}
	if detail.FileNumber != fileNumber {
		err = fmt.Errorf(
			"%w: detail page of file %d shows file %d",
			legistar.ErrMalformedField, fileNumber, detail.FileNumber,
		)
		r.tel.ReportBroken(report_resolver_fetch_detail, err)
		return db.Proposal{}, err
	}

	proposal, err = r.tx.CreateProposal(ctx, db.CreateProposalParams{
		FileNumber:       fileNumber,
		Title:            detail.Title,
		Status:           detail.Status,
		ProposalType:     detail.ProposalType,
		IntroductionDate: legistar.FormatDate(detail.Introduced),
	})
	if err != nil {
		r.tel.ReportBroken(report_db_query, err, "CreateProposal", fileNumber)
		return db.Proposal{}, err
	}
	r.ProposalsCreated++
	return proposal, nil
}
