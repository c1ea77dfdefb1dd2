package page

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"sfvotes/internal/components/assert"
	"sfvotes/internal/components/telemetry"
	"sfvotes/internal/htmlutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_session_open     = "session.open"
	report_session_click    = "session.click"
	report_session_postback = "session.postback"
)

var tracer = otel.Tracer("sfvotes.internal.page")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type SessionOptions struct {
	// RequestsPerSecond paces every request made by the session, 0 disables pacing.
	RequestsPerSecond float64
	Timeout           time.Duration
	UserAgent         string
	CloudflareBypass  bool
	// DumpDir receives a copy of every page the session loads when set, its previous
	// contents are removed.
	DumpDir string
}

// HTTPSession is a Session that renders nothing client-side, instead it replays what the
// browser would send: plain links are followed and ASP.NET WebForms postbacks are
// submitted with the page's form state. Each response is the fully rendered next page.
type HTTPSession struct {
	http *resty.Client
	tel  telemetry.API

	doc        *goquery.Document
	location   *url.URL
	generation uint64
}

func NewHTTPSession(tel telemetry.API, options SessionOptions) (*HTTPSession, error) {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("page", tel)

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if options.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient.SetHeader("user-agent", userAgent)

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	httpClient.SetTimeout(timeout)

	if options.RequestsPerSecond > 0 {
		// burst >= rps just means that no requests will be dropped
		burst := int(math.Ceil(options.RequestsPerSecond))
		rateLimiter := rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	if options.DumpDir != "" {
		output, err := telemetry.NewFilesystemOutput(options.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		telemetry.DumpResponses(httpClient, output)
	}

	return &HTTPSession{
		http: httpClient,
		tel:  tel,
	}, nil
}

// Location returns the url of the current page, nil before anything was opened.
func (s *HTTPSession) Location() *url.URL {
	return s.location
}

func (s *HTTPSession) resolve(rawUrl string) (string, error) {
	link, err := url.Parse(rawUrl)
	if err != nil {
		return "", err
	}
	if s.location == nil {
		if !link.IsAbs() {
			return "", fmt.Errorf("cannot resolve relative url '%s' without an open page", rawUrl)
		}
		return link.String(), nil
	}
	return s.location.ResolveReference(link).String(), nil
}

func (s *HTTPSession) load(res *resty.Response) error {
	if res.IsError() {
		return fmt.Errorf("%s %s: unexpected status %s", res.Request.Method, res.Request.URL, res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	location := res.Request.RawRequest.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		location = res.RawResponse.Request.URL
	}

	s.doc = doc
	s.location = location
	s.generation++
	return nil
}

func (s *HTTPSession) Open(ctx context.Context, rawUrl string) error {
	ctx, span := tracer.Start(ctx, "Open")
	defer span.End()

	target, err := s.resolve(rawUrl)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("url", target))

	res, err := s.http.R().
		SetContext(ctx).
		Get(target)
	if err == nil {
		err = s.load(res)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open page")
		s.tel.ReportBroken(report_session_open, err, target)
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

func (s *HTTPSession) selection(locator Locator) (*goquery.Selection, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("%w: no page is open", ErrNotFound)
	}
	switch locator.kind {
	case locateByID:
		return s.doc.Find(fmt.Sprintf(`[id="%s"]`, locator.value)), nil
	case locateByPartialLinkText:
		return s.doc.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return strings.Contains(htmlutil.CollapseWhitespace(a.Text()), locator.value)
		}), nil
	default:
		return s.doc.Find(locator.value), nil
	}
}

func (s *HTTPSession) Find(ctx context.Context, locator Locator) (Element, error) {
	sel, err := s.selection(locator)
	if err != nil {
		return nil, err
	}
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	return element{sel: sel.First(), owner: s, generation: s.generation}, nil
}

func (s *HTTPSession) FindAll(ctx context.Context, locator Locator) ([]Element, error) {
	sel, err := s.selection(locator)
	if err != nil {
		return nil, err
	}
	return wrapSelection(sel, s, s.generation), nil
}

func (s *HTTPSession) Click(ctx context.Context, el Element) error {
	e, ok := el.(element)
	if !ok || e.owner != s {
		return fmt.Errorf("%w: element was not located by this session", ErrUnsupportedAction)
	}
	if e.generation != s.generation {
		return ErrStaleElement
	}

	ctx, span := tracer.Start(ctx, "Click")
	defer span.End()

	err := s.activate(ctx, e.sel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to click element")
		s.tel.ReportBroken(report_session_click, err, goquery.NodeName(e.sel))
		return err
	}
	return nil
}

func (s *HTTPSession) activate(ctx context.Context, sel *goquery.Selection) error {
	anchor := sel.Closest("a")
	if anchor.Length() > 0 {
		href := anchor.AttrOr("href", "")
		target, argument, isPostBack := parsePostBack(href)
		if isPostBack {
			return s.postBack(ctx, target, argument, nil)
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:") {
			return fmt.Errorf("%w: script link '%s'", ErrUnsupportedAction, href)
		}
		if href != "" {
			return s.Open(ctx, href)
		}
	}

	item := sel.Closest("li")
	if item.Length() > 0 {
		dropdown := item.Closest(`div[id$="_DropDown"]`)
		if dropdown.Length() > 0 {
			return s.selectComboBoxItem(ctx, dropdown, item)
		}
	}

	// things like the combobox input only change client-side state
	s.tel.ReportDebug("click without server side effect", goquery.NodeName(sel), sel.AttrOr("id", ""))
	return nil
}

func (s *HTTPSession) Wait(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *HTTPSession) Close() error {
	s.doc = nil
	s.location = nil
	s.generation++
	s.http.GetClient().CloseIdleConnections()
	return nil
}

type element struct {
	sel        *goquery.Selection
	owner      *HTTPSession
	generation uint64
}

func wrapSelection(sel *goquery.Selection, owner *HTTPSession, generation uint64) []Element {
	out := make([]Element, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		out[i] = element{sel: s, owner: owner, generation: generation}
	})
	return out
}

func (e element) Text() string {
	var text strings.Builder
	for _, n := range e.sel.Nodes {
		text.WriteString(htmlutil.GetText(n))
	}
	return text.String()
}

func (e element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e element) FindAll(selector string) []Element {
	return wrapSelection(e.sel.Find(selector), e.owner, e.generation)
}
