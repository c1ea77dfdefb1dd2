// Package legistartest serves an in-process imitation of the Legistar pages the
// scraper walks: the landing page, the voting grid with its year combobox and
// block-wise numeric pager, and legislation detail pages.
//
// Grid state lives in __VIEWSTATE like it does on the real site, so any client that
// replays the page's form on postback can drive it.
package legistartest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"text/template"
)

const (
	yearTarget  = "ctl00$ContentPlaceHolder1$lstTimePeriodVoting"
	pagerTarget = "ctl00$ContentPlaceHolder1$gridVoting"
)

var fixedColumns = []string{
	"File #",
	"Action Date",
	"Title",
	"Action Details",
	"Meeting Details",
	"Tally",
}

// VoteRow is one row of the voting grid.
type VoteRow struct {
	FileNumber int64
	// Date is shown as is, normally mm/dd/yyyy.
	Date  string
	Title string
	// Votes maps a legislator to the text of their cell, legislators without an
	// entry get a blank cell.
	Votes map[string]string
	// Unlinked renders the file number as plain text without a detail link.
	Unlinked bool
}

// Proposal is what the detail page of a file number shows.
type Proposal struct {
	// FileNumber overrides the file number shown on the page when non-zero.
	FileNumber   int64
	Title        string
	Status       string
	ProposalType string
	Introduced   string
	// Malformed omits the introduction date label.
	Malformed bool
}

// Site is the content of the fake site, it must not be modified after Serve.
type Site struct {
	Legislators []string
	Years       map[int][]VoteRow
	// Proposals that are not listed get a generated detail page.
	Proposals map[int64]Proposal
	// Columns replaces the fixed leading columns of the grid when non-nil.
	Columns []string

	// PageSize is the number of rows per page, 10 when zero.
	PageSize int
	// BlockSize is the number of page links the pager shows at once, 10 when zero.
	BlockSize int
	// HidePager leaves out the pager row of a year that fits on a single page.
	HidePager bool

	mu          sync.Mutex
	detailHits  map[int64]int
	postBacks   int
	rejected    []string
	initialized bool
}

type gridState struct {
	Year  int
	Page  int
	Block int
}

func (s gridState) encode() string {
	return fmt.Sprintf("%d:%d:%d", s.Year, s.Page, s.Block)
}

func decodeGridState(value string) (gridState, error) {
	var state gridState
	_, err := fmt.Sscanf(value, "%d:%d:%d", &state.Year, &state.Page, &state.Block)
	return state, err
}

// Serve starts the site on a test server that is closed when the test ends.
func Serve(t testing.TB, site *Site) *httptest.Server {
	server := httptest.NewServer(site.Handler())
	t.Cleanup(server.Close)
	return server
}

func (s *Site) init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	s.initialized = true
	s.detailHits = map[int64]int{}
	if s.PageSize <= 0 {
		s.PageSize = 10
	}
	if s.BlockSize <= 0 {
		s.BlockSize = 10
	}
	if s.Columns == nil {
		s.Columns = fixedColumns
	}
}

func (s *Site) Handler() http.Handler {
	s.init()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /MainBody.aspx", s.serveMainBody)
	mux.HandleFunc("GET /Votes.aspx", s.serveVotes)
	mux.HandleFunc("POST /Votes.aspx", s.postVotes)
	mux.HandleFunc("GET /LegislationDetail.aspx", s.serveDetail)
	return mux
}

// DetailHits returns how many times the detail page of a file number was loaded.
func (s *Site) DetailHits(fileNumber int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailHits[fileNumber]
}

// TotalDetailHits returns how many detail pages were loaded in total.
func (s *Site) TotalDetailHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, hits := range s.detailHits {
		total += hits
	}
	return total
}

// PostBacks returns how many postbacks the grid page has accepted.
func (s *Site) PostBacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postBacks
}

// Rejected returns the reasons of every request the site refused.
func (s *Site) Rejected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rejected)
}

func (s *Site) reject(w http.ResponseWriter, status int, format string, args ...any) {
	reason := fmt.Sprintf(format, args...)
	s.mu.Lock()
	s.rejected = append(s.rejected, reason)
	s.mu.Unlock()
	http.Error(w, reason, status)
}

func (s *Site) serveMainBody(w http.ResponseWriter, r *http.Request) {
	render(w, mainBodyTemplate, nil)
}

func (s *Site) serveVotes(w http.ResponseWriter, r *http.Request) {
	s.renderVotes(w, gridState{Page: 1})
}

func (s *Site) postVotes(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		s.reject(w, http.StatusBadRequest, "parse form: %v", err)
		return
	}
	state, err := decodeGridState(r.PostForm.Get("__VIEWSTATE"))
	if err != nil {
		s.reject(w, http.StatusBadRequest, "invalid viewstate '%s'", r.PostForm.Get("__VIEWSTATE"))
		return
	}

	target := r.PostForm.Get("__EVENTTARGET")
	argument := r.PostForm.Get("__EVENTARGUMENT")
	switch target {
	case yearTarget:
		var command struct {
			Command string
			Index   int
		}
		err = json.Unmarshal([]byte(argument), &command)
		if err != nil || command.Command != "Select" {
			s.reject(w, http.StatusBadRequest, "invalid combobox command '%s'", argument)
			return
		}
		options := s.yearOptions()
		text := r.PostForm.Get(yearTarget)
		if command.Index < 0 || command.Index >= len(options) || options[command.Index].Text != text {
			s.reject(w, http.StatusBadRequest, "combobox item %d is not '%s'", command.Index, text)
			return
		}
		state = gridState{Year: options[command.Index].Year, Page: 1}
	case pagerTarget:
		pages := s.pageCount(state.Year)
		var n int
		if _, err := fmt.Sscanf(argument, "Page$%d", &n); err == nil && n >= 1 && n <= pages {
			state.Page = n
			state.Block = (n - 1) / s.BlockSize
			break
		}
		var block int
		if _, err := fmt.Sscanf(argument, "Block$%d", &block); err == nil && block >= 0 && block*s.BlockSize < pages {
			// moving to another block shows its first page
			state.Block = block
			state.Page = block*s.BlockSize + 1
			break
		}
		s.reject(w, http.StatusBadRequest, "invalid pager argument '%s'", argument)
		return
	default:
		s.reject(w, http.StatusBadRequest, "unknown event target '%s'", target)
		return
	}

	s.mu.Lock()
	s.postBacks++
	s.mu.Unlock()

	s.renderVotes(w, state)
}

type yearOption struct {
	Text string
	Year int
}

func (s *Site) yearOptions() []yearOption {
	years := make([]int, 0, len(s.Years))
	for year := range s.Years {
		years = append(years, year)
	}
	slices.Sort(years)
	slices.Reverse(years)

	options := []yearOption{{Text: "This Year"}, {Text: "Last Year"}}
	for _, year := range years {
		options = append(options, yearOption{Text: strconv.Itoa(year), Year: year})
	}
	return append(options, yearOption{Text: "All Years"})
}

func (s *Site) pageCount(year int) int {
	rows := len(s.Years[year])
	if rows == 0 {
		return 1
	}
	return (rows + s.PageSize - 1) / s.PageSize
}

type pagerLink struct {
	Label   string
	Href    string
	Current bool
}

func postBackHref(target, argument string) string {
	return fmt.Sprintf("javascript:__doPostBack('%s','%s')", target, argument)
}

type gridCell struct {
	Text string
	Href string
}

type votesView struct {
	ViewState string
	YearText  string
	Years     []yearOption
	Columns   []string
	ShowPager bool
	Pager     []pagerLink
	PageInfo  string
	Rows      [][]gridCell
}

func (s *Site) renderVotes(w http.ResponseWriter, state gridState) {
	view := votesView{
		ViewState: state.encode(),
		YearText:  "This Year",
		Years:     s.yearOptions(),
		Columns:   append(slices.Clone(s.Columns), s.Legislators...),
	}
	if state.Year != 0 {
		view.YearText = strconv.Itoa(state.Year)
	}

	pages := s.pageCount(state.Year)
	view.ShowPager = !s.HidePager || pages > 1
	first := state.Block*s.BlockSize + 1
	last := min(first+s.BlockSize-1, pages)
	if state.Block > 0 {
		view.Pager = append(view.Pager, pagerLink{
			Label: "...",
			Href:  postBackHref(pagerTarget, fmt.Sprintf("Block$%d", state.Block-1)),
		})
	}
	for n := first; n <= last; n++ {
		view.Pager = append(view.Pager, pagerLink{
			Label:   strconv.Itoa(n),
			Href:    postBackHref(pagerTarget, fmt.Sprintf("Page$%d", n)),
			Current: n == state.Page,
		})
	}
	if last < pages {
		view.Pager = append(view.Pager, pagerLink{
			Label: "...",
			Href:  postBackHref(pagerTarget, fmt.Sprintf("Block$%d", state.Block+1)),
		})
	}

	rows := s.Years[state.Year]
	start := min((state.Page-1)*s.PageSize, len(rows))
	end := min(start+s.PageSize, len(rows))
	view.PageInfo = fmt.Sprintf("Page %d of %d, items %d to %d of %d.", state.Page, pages, start+1, end, len(rows))

	for _, row := range rows[start:end] {
		cells := []gridCell{
			{
				Text: strconv.FormatInt(row.FileNumber, 10),
				Href: fmt.Sprintf("LegislationDetail.aspx?ID=%d&GUID=%08X", row.FileNumber, row.FileNumber),
			},
			{Text: row.Date},
			{Text: row.Title},
			{Text: "Action details", Href: "HistoryDetail.aspx"},
			{Text: "Meeting details", Href: "MeetingDetail.aspx"},
			{Text: tally(row)},
		}
		if row.Unlinked {
			cells[0].Href = ""
		}
		// cells are laid out for the standard columns even when the headers are replaced
		for _, legislator := range s.Legislators {
			cells = append(cells, gridCell{Text: row.Votes[legislator]})
		}
		view.Rows = append(view.Rows, cells)
	}

	render(w, votesTemplate, view)
}

func tally(row VoteRow) string {
	ayes, noes := 0, 0
	for _, vote := range row.Votes {
		switch vote {
		case "Aye":
			ayes++
		case "No":
			noes++
		}
	}
	return fmt.Sprintf("%d:%d", ayes, noes)
}

type detailView struct {
	FileNumber int64
	Proposal   Proposal
}

func (s *Site) serveDetail(w http.ResponseWriter, r *http.Request) {
	fileNumber, err := strconv.ParseInt(r.URL.Query().Get("ID"), 10, 64)
	if err != nil {
		s.reject(w, http.StatusNotFound, "unknown legislation '%s'", r.URL.Query().Get("ID"))
		return
	}

	s.mu.Lock()
	s.detailHits[fileNumber]++
	s.mu.Unlock()

	proposal, ok := s.Proposals[fileNumber]
	if !ok {
		proposal = Proposal{
			Title:        fmt.Sprintf("Ordinance %d", fileNumber),
			Status:       "Passed",
			ProposalType: "Ordinance",
			Introduced:   "01/07/2020",
		}
	}
	view := detailView{FileNumber: fileNumber, Proposal: proposal}
	if proposal.FileNumber != 0 {
		view.FileNumber = proposal.FileNumber
	}
	render(w, detailTemplate, view)
}

func render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	err := tmpl.Execute(w, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
