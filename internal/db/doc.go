/*
Package db holds the relational schema for scraped voting records and the queries run
against it.

# Relationships

	proposals   1──* vote_events
	vote_events 1──* votes
	legislators 1──* votes

proposals.file_number and legislators.name are unique, votes are keyed by
(legislator_id, vote_event_id). Dates are stored as YYYY-MM-DD text.
*/
package db
