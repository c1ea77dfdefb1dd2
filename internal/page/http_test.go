package page

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"sfvotes/internal/components/telemetry"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const mainBodyHtml = `<html><body>
<div id="tabs">
	<a href="/Legislation.aspx">Legislation</a>
	<a href="Votes.aspx"><span>Votes</span></a>
</div>
<p id="greeting">Hello&nbsp;world</p>
</body></html>`

const votesHtml = `<html><body>
<form name="aspnetForm" method="post" action="./Votes.aspx" id="aspnetForm">
<input type="hidden" name="__EVENTTARGET" id="__EVENTTARGET" value="" />
<input type="hidden" name="__EVENTARGUMENT" id="__EVENTARGUMENT" value="" />
<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="state-1" />
<input type="checkbox" name="chkOff" />
<input type="checkbox" name="chkOn" checked="checked" value="yes" />
<input type="submit" name="btnSearch" value="Search" />
<input type="text" name="txtDisabled" value="x" disabled />
<select name="ddl"><option value="a">A</option><option value="b" selected>B</option></select>
<a id="page2" href="javascript:__doPostBack('ctl00$grid$page','2')"><span>2</span></a>
<a id="script" href="javascript:void(0)">noop</a>
<input name="ctl00$lstYear" type="text" id="ctl00_lstYear_Input" value="This Year" />
<input type="hidden" name="ctl00_lstYear_ClientState" id="ctl00_lstYear_ClientState" />
<div id="ctl00_lstYear_DropDown"><div><ul><li>2019</li><li>2020</li></ul></div></div>
</form>
</body></html>`

const afterPostBackHtml = `<html><body><p id="result">posted</p></body></html>`

func newTestSession(t *testing.T) (*HTTPSession, *httpmock.MockTransport) {
	session, err := NewHTTPSession(telemetry.NewRecorder(), SessionOptions{})
	if err != nil {
		t.Fatal(err)
	}
	mock := httpmock.NewMockTransport()
	session.http.SetTransport(mock)
	t.Cleanup(func() { session.Close() })
	return session, mock
}

func TestOpenAndFind(t *testing.T) {
	session, mock := newTestSession(t)
	mock.RegisterResponder(
		http.MethodGet, "https://sfgov.legistar.com/MainBody.aspx",
		httpmock.NewStringResponder(http.StatusOK, mainBodyHtml),
	)
	ctx := context.Background()

	require.NoError(t, session.Open(ctx, "https://sfgov.legistar.com/MainBody.aspx"))

	greeting, err := session.Find(ctx, ByID("greeting"))
	require.NoError(t, err)
	require.Equal(t, "Hello\u00a0world", greeting.Text())

	_, err = session.Find(ctx, ByCSS("#missing"))
	require.True(t, errors.Is(err, ErrNotFound))

	links, err := session.FindAll(ctx, ByCSS("#tabs a"))
	require.NoError(t, err)
	require.Len(t, links, 2)

	votes, err := session.Find(ctx, ByPartialLinkText("Vote"))
	require.NoError(t, err)
	href, ok := votes.Attr("href")
	require.True(t, ok)
	require.Equal(t, "Votes.aspx", href)
}

func TestClickFollowsLinks(t *testing.T) {
	session, mock := newTestSession(t)
	mock.RegisterResponder(
		http.MethodGet, "https://sfgov.legistar.com/MainBody.aspx",
		httpmock.NewStringResponder(http.StatusOK, mainBodyHtml),
	)
	mock.RegisterResponder(
		http.MethodGet, "https://sfgov.legistar.com/Votes.aspx",
		httpmock.NewStringResponder(http.StatusOK, votesHtml),
	)
	ctx := context.Background()

	require.NoError(t, session.Open(ctx, "https://sfgov.legistar.com/MainBody.aspx"))
	votes, err := session.Find(ctx, ByPartialLinkText("Votes"))
	require.NoError(t, err)

	// clicking the span inside the anchor activates the anchor
	spans := votes.FindAll("span")
	require.Len(t, spans, 1)
	require.NoError(t, session.Click(ctx, spans[0]))
	require.Equal(t, "/Votes.aspx", session.Location().Path)
	require.Equal(t, 1, mock.GetCallCountInfo()["GET https://sfgov.legistar.com/Votes.aspx"])

	// handles from the previous page are stale
	err = session.Click(ctx, votes)
	require.True(t, errors.Is(err, ErrStaleElement))
}

func TestClickPostBack(t *testing.T) {
	session, mock := newTestSession(t)
	mock.RegisterResponder(
		http.MethodGet, "https://sfgov.legistar.com/Votes.aspx",
		httpmock.NewStringResponder(http.StatusOK, votesHtml),
	)

	var posted url.Values
	mock.RegisterResponder(
		http.MethodPost, "https://sfgov.legistar.com/Votes.aspx",
		func(req *http.Request) (*http.Response, error) {
			err := req.ParseForm()
			if err != nil {
				return nil, err
			}
			posted = req.PostForm
			return httpmock.NewStringResponse(http.StatusOK, afterPostBackHtml), nil
		},
	)
	ctx := context.Background()

	require.NoError(t, session.Open(ctx, "https://sfgov.legistar.com/Votes.aspx"))
	pageLink, err := session.Find(ctx, ByCSS("#page2 > span"))
	require.NoError(t, err)
	require.NoError(t, session.Click(ctx, pageLink))

	require.Equal(t, "ctl00$grid$page", posted.Get("__EVENTTARGET"))
	require.Equal(t, "2", posted.Get("__EVENTARGUMENT"))
	require.Equal(t, "state-1", posted.Get("__VIEWSTATE"))
	require.Equal(t, "yes", posted.Get("chkOn"))
	require.Equal(t, "b", posted.Get("ddl"))
	require.Equal(t, "This Year", posted.Get("ctl00$lstYear"))
	require.False(t, posted.Has("chkOff"))
	require.False(t, posted.Has("btnSearch"))
	require.False(t, posted.Has("txtDisabled"))

	result, err := session.Find(ctx, ByID("result"))
	require.NoError(t, err)
	require.Equal(t, "posted", result.Text())
}

func TestClickComboBoxItem(t *testing.T) {
	session, mock := newTestSession(t)
	mock.RegisterResponder(
		http.MethodGet, "https://sfgov.legistar.com/Votes.aspx",
		httpmock.NewStringResponder(http.StatusOK, votesHtml),
	)

	var posted url.Values
	mock.RegisterResponder(
		http.MethodPost, "https://sfgov.legistar.com/Votes.aspx",
		func(req *http.Request) (*http.Response, error) {
			err := req.ParseForm()
			if err != nil {
				return nil, err
			}
			posted = req.PostForm
			return httpmock.NewStringResponse(http.StatusOK, afterPostBackHtml), nil
		},
	)
	ctx := context.Background()

	require.NoError(t, session.Open(ctx, "https://sfgov.legistar.com/Votes.aspx"))

	// the combobox input only expands client-side
	input, err := session.Find(ctx, ByID("ctl00_lstYear_Input"))
	require.NoError(t, err)
	require.NoError(t, session.Click(ctx, input))
	require.Equal(t, 1, mock.GetTotalCallCount())

	items, err := session.FindAll(ctx, ByCSS("#ctl00_lstYear_DropDown li"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NoError(t, session.Click(ctx, items[1]))

	require.Equal(t, "ctl00$lstYear", posted.Get("__EVENTTARGET"))
	require.JSONEq(t, `{"Command":"Select","Index":1}`, posted.Get("__EVENTARGUMENT"))
	require.Equal(t, "2020", posted.Get("ctl00$lstYear"))
	require.Contains(t, posted.Get("ctl00_lstYear_ClientState"), `"text":"2020"`)
}

func TestClickUnsupported(t *testing.T) {
	session, mock := newTestSession(t)
	mock.RegisterResponder(
		http.MethodGet, "https://sfgov.legistar.com/Votes.aspx",
		httpmock.NewStringResponder(http.StatusOK, votesHtml),
	)
	ctx := context.Background()
	require.NoError(t, session.Open(ctx, "https://sfgov.legistar.com/Votes.aspx"))

	script, err := session.Find(ctx, ByID("script"))
	require.NoError(t, err)
	err = session.Click(ctx, script)
	require.True(t, errors.Is(err, ErrUnsupportedAction))

	other, _ := newTestSession(t)
	err = other.Click(ctx, script)
	require.True(t, errors.Is(err, ErrUnsupportedAction))
}

func TestOpenErrorStatus(t *testing.T) {
	session, mock := newTestSession(t)
	mock.RegisterResponder(
		http.MethodGet, "https://sfgov.legistar.com/LegislationDetail.aspx",
		httpmock.NewStringResponder(http.StatusInternalServerError, "oops"),
	)

	err := session.Open(context.Background(), "https://sfgov.legistar.com/LegislationDetail.aspx")
	require.Error(t, err)

	_, err = session.Find(context.Background(), ByCSS("p"))
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestOpenRelativeWithoutPage(t *testing.T) {
	session, _ := newTestSession(t)
	err := session.Open(context.Background(), "/Votes.aspx")
	require.Error(t, err)
}

func TestWait(t *testing.T) {
	session, _ := newTestSession(t)

	require.NoError(t, session.Wait(context.Background(), 0))
	require.NoError(t, session.Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := session.Wait(ctx, time.Hour)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestParsePostBack(t *testing.T) {
	cases := []struct {
		href     string
		target   string
		argument string
		ok       bool
	}{
		{
			href:   "javascript:__doPostBack('ctl00$ContentPlaceHolder1$gridVoting','')",
			target: "ctl00$ContentPlaceHolder1$gridVoting",
			ok:     true,
		},
		{
			href:     "javascript:__doPostBack( 'a$b' , 'Page$3' )",
			target:   "a$b",
			argument: "Page$3",
			ok:       true,
		},
		{href: "LegislationDetail.aspx?ID=1", ok: false},
		{href: "", ok: false},
	}
	for _, test := range cases {
		target, argument, ok := parsePostBack(test.href)
		require.Equal(t, test.ok, ok, test.href)
		require.Equal(t, test.target, target, test.href)
		require.Equal(t, test.argument, argument, test.href)
	}
}
