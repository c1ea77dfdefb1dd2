package legistar

import (
	"fmt"
	"time"

	"sfvotes/internal/components/chrono"
	"sfvotes/internal/htmlutil"
)

const (
	siteDateLayout   = "1/2/2006"
	storedDateLayout = time.DateOnly
)

// ParseDate parses the mm/dd/yyyy dates shown by the site, leading zeros are optional.
func ParseDate(text string) (time.Time, error) {
	text = htmlutil.NormalizeText(text)
	date, err := time.ParseInLocation(siteDateLayout, text, chrono.LA())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date '%s': %w", ErrMalformedField, text, err)
	}
	return date, nil
}

// FormatDate renders a date the way it is stored, YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(storedDateLayout)
}
