package legistar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"sfvotes/internal/components/telemetry"
	"sfvotes/internal/legistar/legistartest"
	"sfvotes/internal/page"

	"github.com/stretchr/testify/require"
)

func numberedSite(rows, pageSize, blockSize int) *legistartest.Site {
	votes := make([]legistartest.VoteRow, rows)
	for i := range votes {
		votes[i] = legistartest.VoteRow{
			FileNumber: int64(1000 + i),
			Date:       "03/02/2021",
			Title:      fmt.Sprintf("Resolution %d", i),
			Votes:      map[string]string{"Alice": "Aye"},
		}
	}
	return &legistartest.Site{
		Legislators: []string{"Alice"},
		Years:       map[int][]legistartest.VoteRow{2021: votes},
		PageSize:    pageSize,
		BlockSize:   blockSize,
	}
}

func requireFirstRow(t *testing.T, site *legistartest.Site, grid Grid, fileNumber int64) {
	t.Helper()
	require.NotEmpty(t, grid.Rows, "rejected: %v", site.Rejected())
	text, err := grid.Rows[0].Text(ColumnFileNumber)
	require.NoError(t, err)
	require.Equal(t, strconv.FormatInt(fileNumber, 10), text)
}

func TestGoToPage(t *testing.T) {
	site := numberedSite(25, 10, 10)
	session, _ := openVotes(t, site, "2021")
	ctx := context.Background()
	pager := NewPager(session, telemetry.NewRecorder(), 0, 0)

	postBacks := site.PostBacks()
	found, err := pager.GoToPage(ctx, VotingGridID, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, postBacks, site.PostBacks(), "going to the current page must not post back")

	found, err = pager.GoToPage(ctx, VotingGridID, 2)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, postBacks+1, site.PostBacks())

	grid, err := ExtractGrid(ctx, session, VotingGridID)
	require.NoError(t, err)
	requireFirstRow(t, site, grid, 1010)

	found, err = pager.GoToPage(ctx, VotingGridID, 2)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, postBacks+1, site.PostBacks())

	found, err = pager.GoToPage(ctx, VotingGridID, 3)
	require.NoError(t, err)
	require.True(t, found)
	grid, err = ExtractGrid(ctx, session, VotingGridID)
	require.NoError(t, err)
	require.Len(t, grid.Rows, 5)
	requireFirstRow(t, site, grid, 1020)

	found, err = pager.GoToPage(ctx, VotingGridID, 4)
	require.NoError(t, err)
	require.False(t, found)
}

func TestGoToPageExpandsPager(t *testing.T) {
	// 10 pages shown 3 at a time: [1 2 3 ...] [... 4 5 6 ...] [... 7 8 9 ...] [... 10]
	site := numberedSite(10, 1, 3)
	session, _ := openVotes(t, site, "2021")
	ctx := context.Background()
	pager := NewPager(session, telemetry.NewRecorder(), 0, 0)

	for n := 1; n <= 10; n++ {
		found, err := pager.GoToPage(ctx, VotingGridID, n)
		require.NoError(t, err)
		require.True(t, found, "page %d", n)

		grid, err := ExtractGrid(ctx, session, VotingGridID)
		require.NoError(t, err)
		requireFirstRow(t, site, grid, int64(1000+n-1))
	}

	found, err := pager.GoToPage(ctx, VotingGridID, 11)
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, site.Rejected())
}

func TestGoToPageJumpsAcrossBlocks(t *testing.T) {
	site := numberedSite(10, 1, 3)
	session, _ := openVotes(t, site, "2021")
	ctx := context.Background()
	pager := NewPager(session, telemetry.NewRecorder(), 0, 0)

	found, err := pager.GoToPage(ctx, VotingGridID, 8)
	require.NoError(t, err)
	require.True(t, found)
	grid, err := ExtractGrid(ctx, session, VotingGridID)
	require.NoError(t, err)
	requireFirstRow(t, site, grid, 1007)

	// past the end, the pager has to be expanded until the ellipsis disappears
	session, _ = openVotes(t, numberedSite(10, 1, 3), "2021")
	pager = NewPager(session, telemetry.NewRecorder(), 0, 0)
	found, err = pager.GoToPage(ctx, VotingGridID, 42)
	require.NoError(t, err)
	require.False(t, found)
}

func TestGoToPageExpansionLimit(t *testing.T) {
	site := numberedSite(10, 1, 3)
	session, _ := openVotes(t, site, "2021")
	tel := telemetry.NewRecorder()
	pager := NewPager(session, tel, 0, 1)

	found, err := pager.GoToPage(context.Background(), VotingGridID, 8)
	require.False(t, found)
	require.True(t, errors.Is(err, ErrPagerExpansionLimit), err)
	require.NotEmpty(t, tel.Find("broken", report_pager_go_to_page))
}

const pagerlessGridHtml = `<html><body>
<table id="grid">
	<colgroup><col /></colgroup>
	<thead>
		<tr><th>File #</th></tr>
	</thead>
	<tfoot></tfoot>
	<tbody><tr><td>1</td></tr></tbody>
</table>
</body></html>`

func TestGoToPageWithoutPager(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pagerlessGridHtml))
	}))
	t.Cleanup(server.Close)

	session := newSession(t)
	ctx := context.Background()
	require.NoError(t, session.Open(ctx, server.URL))
	pager := NewPager(session, telemetry.NewRecorder(), 0, 0)

	found, err := pager.GoToPage(ctx, "grid", 1)
	require.NoError(t, err)
	require.True(t, found)

	grid, err := ExtractGrid(ctx, session, "grid")
	require.NoError(t, err)
	require.Equal(t, []string{"File #"}, grid.Headers)
	require.Len(t, grid.Rows, 1)

	found, err = pager.GoToPage(ctx, "grid", 2)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSelectOption(t *testing.T) {
	site := aliceAndBob()
	session, _ := openVotes(t, site, "")
	ctx := context.Background()

	found, err := SelectOption(ctx, session, 0, TimePeriodInputID, "1999")
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, 0, site.PostBacks())

	found, err = SelectOption(ctx, session, 0, TimePeriodInputID, "2020")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, site.PostBacks())
	require.Empty(t, site.Rejected())

	input, err := session.Find(ctx, page.ByID(TimePeriodInputID))
	require.NoError(t, err)
	value, _ := input.Attr("value")
	require.Equal(t, "2020", value)
}
