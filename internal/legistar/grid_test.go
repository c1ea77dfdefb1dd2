package legistar

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"sfvotes/internal/components/telemetry"
	"sfvotes/internal/legistar/legistartest"
	"sfvotes/internal/page"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *page.HTTPSession {
	session, err := page.NewHTTPSession(telemetry.NewRecorder(), page.SessionOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

// openVotes serves the site and opens its voting grid, optionally switched to a year.
func openVotes(t *testing.T, site *legistartest.Site, year string) (*page.HTTPSession, *httptest.Server) {
	server := legistartest.Serve(t, site)
	session := newSession(t)
	ctx := context.Background()

	require.NoError(t, session.Open(ctx, server.URL+"/Votes.aspx"))
	if year != "" {
		found, err := SelectOption(ctx, session, 0, TimePeriodInputID, year)
		require.NoError(t, err)
		require.True(t, found, "year %s", year)
	}
	return session, server
}

func aliceAndBob() *legistartest.Site {
	return &legistartest.Site{
		Legislators: []string{"Alice", "Bob"},
		Years: map[int][]legistartest.VoteRow{
			2020: {
				{
					FileNumber: 100,
					Date:       "01/15/2020",
					Title:      "Ordinance amending the Planning Code",
					Votes:      map[string]string{"Alice": "Aye"},
				},
			},
		},
	}
}

func TestExtractGrid(t *testing.T) {
	session, _ := openVotes(t, aliceAndBob(), "2020")

	grid, err := ExtractGrid(context.Background(), session, VotingGridID)
	require.NoError(t, err)

	expectedHeaders := []string{
		"File #", "Action Date", "Title", "Action Details", "Meeting Details", "Tally",
		"Alice", "Bob",
	}
	if diff := cmp.Diff(expectedHeaders, grid.Headers); diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, grid.Rows, 1)

	row := grid.Rows[0]
	fileNumber, err := row.Text(ColumnFileNumber)
	require.NoError(t, err)
	require.Equal(t, "100", fileNumber)

	date, err := row.Text(ColumnActionDate)
	require.NoError(t, err)
	require.Equal(t, "01/15/2020", date)

	href, err := row.Link(ColumnFileNumber)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(href, "LegislationDetail.aspx?ID=100"), href)

	alice, err := row.Text("Alice")
	require.NoError(t, err)
	require.Equal(t, "Aye", alice)

	// blank cells hold a lone non-breaking space
	bob, err := row.Text("Bob")
	require.NoError(t, err)
	require.Equal(t, "", bob)

	_, err = row.Cell("Carol")
	require.True(t, errors.Is(err, ErrStructuralMismatch))

	_, err = row.Link(ColumnTally)
	require.True(t, errors.Is(err, ErrMalformedField))

	legislators, err := CheckVotingHeaders(grid.Headers)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Bob"}, legislators)
}

func TestExtractGridWithoutPager(t *testing.T) {
	site := aliceAndBob()
	site.HidePager = true
	session, _ := openVotes(t, site, "2020")
	ctx := context.Background()

	controls, err := session.FindAll(ctx, page.ByCSS("tr.rgPager"))
	require.NoError(t, err)
	require.Empty(t, controls)

	found, err := NewPager(session, telemetry.NewRecorder(), 0, 0).GoToPage(ctx, VotingGridID, 1)
	require.NoError(t, err)
	require.True(t, found)

	grid, err := ExtractGrid(ctx, session, VotingGridID)
	require.NoError(t, err)
	require.Len(t, grid.Rows, 1)

	legislators, err := CheckVotingHeaders(grid.Headers)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Bob"}, legislators)
}

func TestExtractGridEmpty(t *testing.T) {
	session, _ := openVotes(t, aliceAndBob(), "")

	grid, err := ExtractGrid(context.Background(), session, VotingGridID)
	require.NoError(t, err)
	require.Len(t, grid.Headers, 8)
	require.Empty(t, grid.Rows)
}

func TestExtractGridCellMismatch(t *testing.T) {
	site := aliceAndBob()
	site.Columns = append(append([]string{}, VotingColumns...), "Sponsors")
	session, _ := openVotes(t, site, "2020")

	_, err := ExtractGrid(context.Background(), session, VotingGridID)
	require.True(t, errors.Is(err, ErrStructuralMismatch), err)
}

func TestExtractGridMissing(t *testing.T) {
	session, _ := openVotes(t, aliceAndBob(), "")

	_, err := ExtractGrid(context.Background(), session, "ctl00_ContentPlaceHolder1_gridLegislation_ctl00")
	require.True(t, errors.Is(err, page.ErrNotFound), err)
}

func TestCheckVotingHeaders(t *testing.T) {
	cases := []struct {
		name        string
		headers     []string
		legislators []string
		ok          bool
	}{
		{
			name:        "legislators follow the fixed columns",
			headers:     append(append([]string{}, VotingColumns...), "Alice", "Bob"),
			legislators: []string{"Alice", "Bob"},
			ok:          true,
		},
		{
			name:        "no legislators",
			headers:     append([]string{}, VotingColumns...),
			legislators: []string{},
			ok:          true,
		},
		{
			name:    "too short",
			headers: []string{"File #", "Action Date"},
		},
		{
			name:    "renamed column",
			headers: []string{"File #", "Date", "Title", "Action Details", "Meeting Details", "Tally", "Alice"},
		},
		{
			name:    "reordered columns",
			headers: []string{"Action Date", "File #", "Title", "Action Details", "Meeting Details", "Tally"},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			legislators, err := CheckVotingHeaders(test.headers)
			if !test.ok {
				require.True(t, errors.Is(err, ErrStructuralMismatch))
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(test.legislators, legislators); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
