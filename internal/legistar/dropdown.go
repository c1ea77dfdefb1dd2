package legistar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sfvotes/internal/htmlutil"
	"sfvotes/internal/page"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SelectOption opens the combobox whose text box has the given id and picks the option
// with the given text, it returns false when there is no such option.
func SelectOption(ctx context.Context, session page.Session, settle time.Duration, inputID, option string) (bool, error) {
	ctx, span := tracer.Start(ctx, "SelectOption", trace.WithAttributes(
		attribute.String("input", inputID),
		attribute.String("option", option),
	))
	defer span.End()

	input, err := session.Find(ctx, page.ByID(inputID))
	if err != nil {
		return false, fmt.Errorf("locate combobox: %w", err)
	}
	err = session.Click(ctx, input)
	if err != nil {
		return false, fmt.Errorf("open combobox: %w", err)
	}
	err = session.Wait(ctx, settle)
	if err != nil {
		return false, err
	}

	dropdownID := strings.Replace(inputID, "_Input", "_DropDown", 1)
	dropdown, err := session.Find(ctx, page.ByID(dropdownID))
	if err != nil {
		return false, fmt.Errorf("locate combobox options: %w", err)
	}

	for _, item := range dropdown.FindAll(optionSelector) {
		if htmlutil.NormalizeText(item.Text()) != option {
			continue
		}
		err = session.Click(ctx, item)
		if err != nil {
			return false, fmt.Errorf("select '%s': %w", option, err)
		}
		err = session.Wait(ctx, settle)
		if err != nil {
			return false, err
		}
		return true, nil
	}

	span.SetAttributes(attribute.Bool("found", false))
	return false, nil
}
