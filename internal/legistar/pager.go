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
	report_pager_go_to_page = "go-to-page"
)

const DefaultMaxExpansions = 100

// Pager moves a grid to a given page through its numeric pager. The pager only shows a
// block of page links at a time followed by an ellipsis that reveals the next block.
type Pager struct {
	session       page.Session
	tel           telemetry.API
	settle        time.Duration
	maxExpansions int
}

func NewPager(session page.Session, tel telemetry.API, settle time.Duration, maxExpansions int) Pager {
	assert.NotNil(session, "pager session")
	assert.NotNil(tel, "telemetry")
	if maxExpansions <= 0 {
		maxExpansions = DefaultMaxExpansions
	}
	return Pager{
		session:       session,
		tel:           telemetry.NewScopedAPI("pager", tel),
		settle:        settle,
		maxExpansions: maxExpansions,
	}
}

// GoToPage shows the given page of the grid, it returns false when the grid has no
// such page. Asking for the page that is already shown does nothing.
func (p Pager) GoToPage(ctx context.Context, gridID string, n int) (bool, error) {
	ctx, span := tracer.Start(ctx, "GoToPage", trace.WithAttributes(
		attribute.String("grid", gridID),
		attribute.Int("page", n),
	))
	defer span.End()

	found, err := p.goToPage(ctx, gridID, n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to go to page")
		p.tel.ReportBroken(report_pager_go_to_page, err, gridID, n)
		return false, err
	}
	span.SetAttributes(attribute.Bool("found", found))
	return found, nil
}

func (p Pager) goToPage(ctx context.Context, gridID string, n int) (bool, error) {
	label := strconv.Itoa(n)

	for expansions := 0; ; expansions++ {
		grid, err := p.session.Find(ctx, page.ByID(gridID))
		if err != nil {
			return false, fmt.Errorf("locate grid: %w", err)
		}
		controls := grid.FindAll(pagerSelector)

		// a grid that fits on a single page may not render a pager at all
		if len(controls) == 0 {
			return n == 1, nil
		}

		for _, control := range controls {
			if htmlutil.NormalizeText(control.Text()) != label {
				continue
			}
			if hasClass(control, currentPageClass) {
				p.tel.ReportDebug("already on page", n)
				return true, nil
			}
			err = p.session.Click(ctx, control)
			if err != nil {
				return false, fmt.Errorf("click page %d: %w", n, err)
			}
			err = p.session.Wait(ctx, p.settle)
			if err != nil {
				return false, err
			}
			return true, nil
		}

		last := controls[len(controls)-1]
		if htmlutil.NormalizeText(last.Text()) != ellipsisLabel {
			return false, nil
		}
		if expansions >= p.maxExpansions {
			return false, fmt.Errorf("%w: page %d not reached after %d expansions", ErrPagerExpansionLimit, n, expansions)
		}

		p.tel.ReportDebug("expanding pager", n, expansions)
		err = p.session.Click(ctx, last)
		if err != nil {
			return false, fmt.Errorf("expand pager: %w", err)
		}
		err = p.session.Wait(ctx, p.settle)
		if err != nil {
			return false, err
		}
	}
}
