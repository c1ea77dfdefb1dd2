// Package page is the browser-like capability the scrapers drive: open a page, locate
// elements, read them, click them and wait for the page to settle.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a locator matches nothing on the current page.
	ErrNotFound = errors.New("element not found")
	// ErrStaleElement is returned when clicking a handle that belongs to a page that
	// has since been replaced by navigation.
	ErrStaleElement = errors.New("stale element")
	// ErrUnsupportedAction is returned when an element cannot be activated.
	ErrUnsupportedAction = errors.New("unsupported action")
)

type locatorKind int

const (
	locateByCSS locatorKind = iota
	locateByID
	locateByPartialLinkText
)

// Locator describes how to find elements on the current page.
type Locator struct {
	kind  locatorKind
	value string
}

func ByCSS(selector string) Locator {
	return Locator{kind: locateByCSS, value: selector}
}

func ByID(id string) Locator {
	return Locator{kind: locateByID, value: id}
}

// ByPartialLinkText matches anchors whose visible text contains the given text.
func ByPartialLinkText(text string) Locator {
	return Locator{kind: locateByPartialLinkText, value: text}
}

func (l Locator) String() string {
	switch l.kind {
	case locateByID:
		return fmt.Sprintf("id=%s", l.value)
	case locateByPartialLinkText:
		return fmt.Sprintf("partial-link-text=%s", l.value)
	default:
		return fmt.Sprintf("css=%s", l.value)
	}
}

// Element is a handle to an element of the page that was current when it was located.
type Element interface {
	// Text returns the raw textContent of the element.
	Text() string
	Attr(name string) (string, bool)
	// FindAll runs a css selector scoped to the element's descendants.
	FindAll(selector string) []Element
}

// Session is a single browsing context, two sessions never share navigation state.
type Session interface {
	Open(ctx context.Context, url string) error
	Find(ctx context.Context, locator Locator) (Element, error)
	FindAll(ctx context.Context, locator Locator) ([]Element, error)
	Click(ctx context.Context, element Element) error
	// Wait blocks for the given settling delay or until ctx is done.
	Wait(ctx context.Context, duration time.Duration) error
	Close() error
}
