package legistar

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"sfvotes/internal/components/assert"
	"sfvotes/internal/htmlutil"
	"sfvotes/internal/page"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Grid is a snapshot of the rows currently rendered by a grid.
type Grid struct {
	Headers []string
	Rows    []Row
}

// Row is a single body row of a grid, its cells are addressed by column name.
type Row struct {
	columns map[string]int
	cells   []page.Element
}

// Cell returns the cell under the given column.
func (r Row) Cell(column string) (page.Element, error) {
	idx, ok := r.columns[column]
	if !ok {
		return nil, fmt.Errorf("%w: unknown column '%s'", ErrStructuralMismatch, column)
	}
	return r.cells[idx], nil
}

// Text returns the normalized text of the cell under the given column.
func (r Row) Text(column string) (string, error) {
	cell, err := r.Cell(column)
	if err != nil {
		return "", err
	}
	return htmlutil.NormalizeText(cell.Text()), nil
}

// Link returns the href of the first link inside the cell under the given column.
func (r Row) Link(column string) (string, error) {
	cell, err := r.Cell(column)
	if err != nil {
		return "", err
	}
	for _, a := range cell.FindAll("a") {
		href, ok := a.Attr("href")
		if ok && href != "" {
			return href, nil
		}
	}
	return "", fmt.Errorf("%w: no link under column '%s'", ErrMalformedField, column)
}

func hasClass(el page.Element, class string) bool {
	classes, _ := el.Attr("class")
	return slices.Contains(strings.Fields(classes), class)
}

// ExtractGrid reads the headers and rows of the grid with the given element id. Every
// row must have exactly one cell per header, anything else is a structural mismatch.
func ExtractGrid(ctx context.Context, session page.Session, gridID string) (Grid, error) {
	assert.NotEmptyStr(gridID, "grid id")
	ctx, span := tracer.Start(ctx, "ExtractGrid", trace.WithAttributes(
		attribute.String("grid", gridID),
	))
	defer span.End()

	grid, err := extractGrid(ctx, session, gridID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract grid")
		return Grid{}, err
	}
	span.SetAttributes(attribute.Int("rows", len(grid.Rows)))
	return grid, nil
}

func extractGrid(ctx context.Context, session page.Session, gridID string) (Grid, error) {
	table, err := session.Find(ctx, page.ByID(gridID))
	if err != nil {
		return Grid{}, fmt.Errorf("locate grid: %w", err)
	}

	headerCells := table.FindAll(headerSelector)
	headers := make([]string, len(headerCells))
	columns := make(map[string]int, len(headerCells))
	for i, th := range headerCells {
		name := htmlutil.NormalizeText(th.Text())
		if _, exists := columns[name]; exists {
			return Grid{}, fmt.Errorf("%w: duplicate column '%s'", ErrStructuralMismatch, name)
		}
		headers[i] = name
		columns[name] = i
	}

	var rows []Row
	for i, tr := range table.FindAll(rowSelector) {
		if hasClass(tr, noRecordsClass) {
			continue
		}
		cells := tr.FindAll(cellSelector)
		if len(cells) != len(headers) {
			return Grid{}, fmt.Errorf(
				"%w: row %d has %d cells, expected %d",
				ErrStructuralMismatch, i, len(cells), len(headers),
			)
		}
		rows = append(rows, Row{columns: columns, cells: cells})
	}

	return Grid{Headers: headers, Rows: rows}, nil
}

// CheckVotingHeaders verifies the fixed leading columns of the voting grid and returns
// the names of the legislator columns that follow them.
func CheckVotingHeaders(headers []string) ([]string, error) {
	if len(headers) < len(VotingColumns) ||
		!slices.Equal(headers[:len(VotingColumns)], VotingColumns) {
		return nil, fmt.Errorf(
			"%w: expected headers to start with %v, got %v",
			ErrStructuralMismatch, VotingColumns, headers,
		)
	}
	return headers[len(VotingColumns):], nil
}
