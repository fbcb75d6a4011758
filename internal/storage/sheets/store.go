// Package sheets implements the SheetStore boundary on top of the
// Google Sheets API. The append endpoint is the allocation primitive:
// Google serializes concurrent appends to one sheet and reports the
// assigned range back, which is what ticket numbers are derived from.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
}

func NewStore(svc *gsheets.Service, spreadsheetID string) *Store {
	return &Store{svc: svc, spreadsheetID: spreadsheetID}
}

// EnsureSheet creates the titled tab with the header row when missing.
// When two first-submissions race on creation, the add-sheet call of
// the loser fails; the tab is then re-checked and, if the winner's tab
// is there, the loser proceeds against it. Only an add-sheet failure
// with no tab to show for it becomes ErrSheetCreationConflict.
func (s *Store) EnsureSheet(ctx context.Context, title string, header []string) (bool, error) {
	exists, err := s.sheetExists(ctx, title)
	if err != nil {
		return false, fmt.Errorf("sheet metadata: %w", err)
	}
	if exists {
		return false, s.ensureHeader(ctx, title, header)
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
			exists, checkErr := s.sheetExists(ctx, title)
			if checkErr == nil && exists {
				return false, s.ensureHeader(ctx, title, header)
			}
			return false, fmt.Errorf("%w: add sheet %q: %v", domain.ErrSheetCreationConflict, title, err)
		}
		return false, fmt.Errorf("add sheet %q: %w", title, err)
	}

	if err := s.writeHeader(ctx, title, header); err != nil {
		return true, fmt.Errorf("write header on %q: %w", title, err)
	}
	return true, nil
}

func (s *Store) AppendRow(ctx context.Context, title string, values []string) (string, error) {
	vr := &gsheets.ValueRange{Values: [][]any{toAnyRow(values)}}
	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rangeRef(title, "A1"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", classifyAppendError(err)
	}
	if resp == nil || resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return "", fmt.Errorf("%w: append response has no updated range", domain.ErrConfirmationLost)
	}
	return resp.Updates.UpdatedRange, nil
}

func (s *Store) UpdateCell(ctx context.Context, title, cell, value string) error {
	vr := &gsheets.ValueRange{Values: [][]any{{value}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rangeRef(title, cell), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s on %q: %w", cell, title, err)
	}
	return nil
}

func (s *Store) ReadRange(ctx context.Context, rangeA1 string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeA1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", rangeA1, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			switch v := cell.(type) {
			case string:
				row[i] = v
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// classifyAppendError sorts transport failures into the allocator's
// taxonomy. A reply from the store means the append was rejected, so
// 4xx statuses retry safely; no reply (timeout, cancellation) or a 5xx
// leaves the store-side outcome unknown and must not be blindly
// retried.
func classifyAppendError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrConfirmationLost, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code >= 500 {
			return fmt.Errorf("%w: %v", domain.ErrConfirmationLost, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrAppendFailed, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrConfirmationLost, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrAppendFailed, err)
}

func (s *Store) sheetExists(ctx context.Context, title string) (bool, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return false, err
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// ensureHeader writes the header only when row 1 is empty, so an
// existing sheet with a diverging header is left alone.
func (s *Store) ensureHeader(ctx context.Context, title string, header []string) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeRef(title, "1:1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %q: %w", title, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	if err := s.writeHeader(ctx, title, header); err != nil {
		return fmt.Errorf("write header on %q: %w", title, err)
	}
	return nil
}

func (s *Store) writeHeader(ctx context.Context, title string, header []string) error {
	ref := fmt.Sprintf("A1:%s1", columnLetter(len(header)-1))
	vr := &gsheets.ValueRange{Values: [][]any{toAnyRow(header)}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rangeRef(title, ref), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// rangeRef builds an A1 reference, quoting titles that need it.
func rangeRef(title, ref string) string {
	if strings.ContainsAny(title, " !'") {
		title = "'" + strings.ReplaceAll(title, "'", "''") + "'"
	}
	return title + "!" + ref
}

// columnLetter converts a zero-based column index to its letter ("A",
// "F", "AA").
func columnLetter(idx int) string {
	idx++
	var letters []byte
	for idx > 0 {
		idx--
		letters = append([]byte{byte('A' + idx%26)}, letters...)
		idx /= 26
	}
	return string(letters)
}

func toAnyRow(values []string) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
