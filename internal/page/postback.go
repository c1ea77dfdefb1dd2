package page

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"sfvotes/internal/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	eventTargetField   = "__EVENTTARGET"
	eventArgumentField = "__EVENTARGUMENT"
)

var postBackRegex = regexp.MustCompile(`__doPostBack\(\s*'([^']*)'\s*,\s*'([^']*)'\s*\)`)

func parsePostBack(href string) (target, argument string, ok bool) {
	groups := postBackRegex.FindStringSubmatch(href)
	if len(groups) < 3 {
		return "", "", false
	}
	return groups[1], groups[2], true
}

// collectFormFields returns the controls a browser would submit with the form.
func collectFormFields(form *goquery.Selection) map[string]string {
	fields := map[string]string{}

	form.Find("input[name]").Each(func(_ int, input *goquery.Selection) {
		if _, disabled := input.Attr("disabled"); disabled {
			return
		}
		name := input.AttrOr("name", "")
		switch strings.ToLower(input.AttrOr("type", "text")) {
		case "submit", "button", "image", "reset", "file":
			return
		case "checkbox", "radio":
			if _, checked := input.Attr("checked"); !checked {
				return
			}
			fields[name] = input.AttrOr("value", "on")
		default:
			fields[name] = input.AttrOr("value", "")
		}
	})

	form.Find("select[name]").Each(func(_ int, sel *goquery.Selection) {
		if _, disabled := sel.Attr("disabled"); disabled {
			return
		}
		option := sel.Find("option[selected]").First()
		if option.Length() == 0 {
			option = sel.Find("option").First()
		}
		if option.Length() == 0 {
			return
		}
		value, ok := option.Attr("value")
		if !ok {
			value = htmlutil.NormalizeText(option.Text())
		}
		fields[sel.AttrOr("name", "")] = value
	})

	form.Find("textarea[name]").Each(func(_ int, area *goquery.Selection) {
		fields[area.AttrOr("name", "")] = area.Text()
	})

	return fields
}

func (s *HTTPSession) postBack(ctx context.Context, target, argument string, overrides map[string]string) error {
	ctx, span := tracer.Start(ctx, "PostBack", trace.WithAttributes(
		attribute.String("target", target),
		attribute.String("argument", argument),
	))
	defer span.End()

	form := s.doc.Find("form").First()
	if form.Length() == 0 {
		return fmt.Errorf("%w: no form to post back to", ErrUnsupportedAction)
	}
	action, err := s.resolve(form.AttrOr("action", ""))
	if err != nil {
		return err
	}

	fields := collectFormFields(form)
	fields[eventTargetField] = target
	fields[eventArgumentField] = argument
	for k, v := range overrides {
		fields[k] = v
	}

	s.tel.ReportDebug("postback", target, argument, action)

	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(fields).
		Post(action)
	if err == nil {
		err = s.load(res)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "postback failed")
		s.tel.ReportBroken(report_session_postback, err, target)
		return fmt.Errorf("postback %s: %w", target, err)
	}
	return nil
}

type comboBoxClientState struct {
	LogEntries     []any  `json:"logEntries"`
	Value          string `json:"value"`
	Text           string `json:"text"`
	Enabled        bool   `json:"enabled"`
	CheckedIndices []int  `json:"checkedIndices"`
}

type comboBoxCommand struct {
	Command string `json:"Command"`
	Index   int    `json:"Index"`
}

// selectComboBoxItem posts back a Telerik RadComboBox selection, the drop-down is
// rendered as `<prefix>_DropDown` next to the `<prefix>_Input` text box whose name is
// the control's unique id.
func (s *HTTPSession) selectComboBoxItem(ctx context.Context, dropdown, item *goquery.Selection) error {
	prefix := strings.TrimSuffix(dropdown.AttrOr("id", ""), "_DropDown")
	input := s.doc.Find(fmt.Sprintf(`[id="%s_Input"]`, prefix))
	name, ok := input.Attr("name")
	if !ok {
		return fmt.Errorf("%w: combobox '%s' has no named input", ErrUnsupportedAction, prefix)
	}

	text := htmlutil.NormalizeText(item.Text())
	value := item.AttrOr("data-value", "")
	clientState, err := json.Marshal(comboBoxClientState{
		LogEntries:     []any{},
		Value:          value,
		Text:           text,
		Enabled:        true,
		CheckedIndices: []int{},
	})
	if err != nil {
		return err
	}
	argument, err := json.Marshal(comboBoxCommand{
		Command: "Select",
		Index:   item.Index(),
	})
	if err != nil {
		return err
	}

	overrides := map[string]string{}
	overrides[name] = text
	overrides[prefix+"_ClientState"] = string(clientState)
	return s.postBack(ctx, name, string(argument), overrides)
}
