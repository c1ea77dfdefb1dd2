// Package legistar drives the Legistar web UI through a [page.Session]: reading the
// voting grid, paging through it, picking a time period and scraping legislation
// detail pages.
//
// The voting grid is a Telerik RadGrid, the interesting parts of its markup are:
//
//	<table id="..._gridVoting_ctl00">
//	  <colgroup/>
//	  <thead>
//	    <tr class="rgPager"> ... <td><a>1</a><a>2</a> ... <a>...</a></td> ... </tr>
//	    <tr><th>File #</th><th>Action Date</th> ... <th>{legislator}</th> ... </tr>
//	  </thead>
//	  <tfoot/>
//	  <tbody>
//	    <tr><td><a href="LegislationDetail.aspx?...">{file #}</a></td> ... </tr>
//	  </tbody>
//	</table>
package legistar

import (
	"errors"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("sfvotes.internal.legistar")

var (
	// ErrStructuralMismatch is returned when the grid's columns are not shaped as expected.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrMalformedField is returned when a scraped value is missing or cannot be parsed.
	ErrMalformedField = errors.New("malformed field")
	// ErrPagerExpansionLimit is returned when the pager keeps offering more pages past
	// the configured number of expansions.
	ErrPagerExpansionLimit = errors.New("pager expansion limit reached")
)

const (
	// VotingGridID is the element id of the table holding the votes.
	VotingGridID = "ctl00_ContentPlaceHolder1_gridVoting_ctl00"
	// TimePeriodInputID is the text box of the combobox that picks the year shown by
	// the voting grid.
	TimePeriodInputID = "ctl00_ContentPlaceHolder1_lstTimePeriodVoting_Input"

	// MainPagePath is the landing page, VotesLinkText the tab that leads to the grid.
	MainPagePath  = "/MainBody.aspx"
	VotesLinkText = "Votes"
)

const (
	headerSelector   = "thead:nth-child(2) > tr:not(.rgPager) > th"
	rowSelector      = "tbody:nth-child(4) > tr"
	cellSelector     = "td"
	pagerSelector    = "thead > tr.rgPager > td > table > tbody > tr > td a"
	optionSelector   = "div:nth-child(1) > ul:nth-child(1) > li"
	noRecordsClass   = "rgNoRecords"
	currentPageClass = "rgCurrentPage"
	ellipsisLabel    = "..."
)

const (
	ColumnFileNumber     = "File #"
	ColumnActionDate     = "Action Date"
	ColumnTitle          = "Title"
	ColumnActionDetails  = "Action Details"
	ColumnMeetingDetails = "Meeting Details"
	ColumnTally          = "Tally"
)

// VotingColumns is the fixed prefix of the voting grid's header row, every column
// after it belongs to a legislator.
var VotingColumns = []string{
	ColumnFileNumber,
	ColumnActionDate,
	ColumnTitle,
	ColumnActionDetails,
	ColumnMeetingDetails,
	ColumnTally,
}
