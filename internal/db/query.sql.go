package db

import (
	"context"
)

const getLegislatorByName = `-- name: GetLegislatorByName :one
select id, name from legislators
where name = ?
`

func (q *Queries) GetLegislatorByName(ctx context.Context, name string) (Legislator, error) {
	row := q.db.QueryRowContext(ctx, getLegislatorByName, name)
	var i Legislator
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const createLegislator = `-- name: CreateLegislator :one
insert into legislators(name) values (?)
returning id, name
`

func (q *Queries) CreateLegislator(ctx context.Context, name string) (Legislator, error) {
	row := q.db.QueryRowContext(ctx, createLegislator, name)
	var i Legislator
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const getProposalByFileNumber = `-- name: GetProposalByFileNumber :one
select id, file_number, title, status, proposal_type, introduction_date from proposals
where file_number = ?
`

func (q *Queries) GetProposalByFileNumber(ctx context.Context, fileNumber int64) (Proposal, error) {
	row := q.db.QueryRowContext(ctx, getProposalByFileNumber, fileNumber)
	var i Proposal
	err := row.Scan(
		&i.ID,
		&i.FileNumber,
		&i.Title,
		&i.Status,
		&i.ProposalType,
		&i.IntroductionDate,
	)
	return i, err
}

const createProposal = `-- name: CreateProposal :one
insert into proposals(file_number, title, status, proposal_type, introduction_date)
values (?, ?, ?, ?, ?)
returning id, file_number, title, status, proposal_type, introduction_date
`

type CreateProposalParams struct {
	FileNumber       int64
	Title            string
	Status           string
	ProposalType     string
	IntroductionDate string
}

func (q *Queries) CreateProposal(ctx context.Context, arg CreateProposalParams) (Proposal, error) {
	row := q.db.QueryRowContext(ctx, createProposal,
		arg.FileNumber,
		arg.Title,
		arg.Status,
		arg.ProposalType,
		arg.IntroductionDate,
	)
	var i Proposal
	err := row.Scan(
		&i.ID,
		&i.FileNumber,
		&i.Title,
		&i.Status,
		&i.ProposalType,
		&i.IntroductionDate,
	)
	return i, err
}

const createVoteEvent = `-- name: CreateVoteEvent :one
insert into vote_events(proposal_id, vote_date) values (?, ?)
returning id, proposal_id, vote_date
`

type CreateVoteEventParams struct {
	ProposalID int64
	VoteDate   string
}

func (q *Queries) CreateVoteEvent(ctx context.Context, arg CreateVoteEventParams) (VoteEvent, error) {
	row := q.db.QueryRowContext(ctx, createVoteEvent, arg.ProposalID, arg.VoteDate)
	var i VoteEvent
	err := row.Scan(&i.ID, &i.ProposalID, &i.VoteDate)
	return i, err
}

const createVote = `-- name: CreateVote :exec
insert into votes(legislator_id, vote_event_id, aye_vote) values (?, ?, ?)
`

type CreateVoteParams struct {
	LegislatorID int64
	VoteEventID  int64
	AyeVote      bool
}

func (q *Queries) CreateVote(ctx context.Context, arg CreateVoteParams) error {
	_, err := q.db.ExecContext(ctx, createVote, arg.LegislatorID, arg.VoteEventID, arg.AyeVote)
	return err
}

const listVoteEventsByFileNumber = `-- name: ListVoteEventsByFileNumber :many
select vote_events.id, vote_events.proposal_id, vote_events.vote_date from vote_events
inner join proposals on proposals.id = vote_events.proposal_id
where proposals.file_number = ?
order by vote_events.id
`

func (q *Queries) ListVoteEventsByFileNumber(ctx context.Context, fileNumber int64) ([]VoteEvent, error) {
	rows, err := q.db.QueryContext(ctx, listVoteEventsByFileNumber, fileNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []VoteEvent
	for rows.Next() {
		var i VoteEvent
		if err := rows.Scan(&i.ID, &i.ProposalID, &i.VoteDate); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listVotesByVoteEvent = `-- name: ListVotesByVoteEvent :many
select legislators.name, votes.aye_vote from votes
inner join legislators on legislators.id = votes.legislator_id
where votes.vote_event_id = ?
order by legislators.name
`

type ListVotesByVoteEventRow struct {
	Name    string
	AyeVote bool
}

func (q *Queries) ListVotesByVoteEvent(ctx context.Context, voteEventID int64) ([]ListVotesByVoteEventRow, error) {
	rows, err := q.db.QueryContext(ctx, listVotesByVoteEvent, voteEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListVotesByVoteEventRow
	for rows.Next() {
		var i ListVotesByVoteEventRow
		if err := rows.Scan(&i.Name, &i.AyeVote); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTotals = `-- name: GetTotals :one
select
    (select count(*) from legislators) as legislators,
    (select count(*) from proposals) as proposals,
    (select count(*) from vote_events) as vote_events,
    (select count(*) from votes) as votes
`

type GetTotalsRow struct {
	Legislators int64
	Proposals   int64
	VoteEvents  int64
	Votes       int64
}

func (q *Queries) GetTotals(ctx context.Context) (GetTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, getTotals)
	var i GetTotalsRow
	err := row.Scan(
		&i.Legislators,
		&i.Proposals,
		&i.VoteEvents,
		&i.Votes,
	)
	return i, err
}

const listLegislatorTallies = `-- name: ListLegislatorTallies :many
select
    legislators.name,
    coalesce(sum(case when votes.aye_vote then 1 else 0 end), 0) as ayes,
    coalesce(sum(case when votes.aye_vote then 0 else 1 end), 0) as noes
from legislators
inner join votes on votes.legislator_id = legislators.id
inner join vote_events on vote_events.id = votes.vote_event_id
where vote_events.vote_date >= ? and vote_events.vote_date <= ?
group by legislators.id
order by legislators.name
`

type ListLegislatorTalliesParams struct {
	After  string
	Before string
}

type ListLegislatorTalliesRow struct {
	Name string
	Ayes int64
	Noes int64
}

func (q *Queries) ListLegislatorTallies(ctx context.Context, arg ListLegislatorTalliesParams) ([]ListLegislatorTalliesRow, error) {
	rows, err := q.db.QueryContext(ctx, listLegislatorTallies, arg.After, arg.Before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListLegislatorTalliesRow
	for rows.Next() {
		var i ListLegislatorTalliesRow
		if err := rows.Scan(&i.Name, &i.Ayes, &i.Noes); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
