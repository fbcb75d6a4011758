// Package testutil provides an in-memory SheetStore whose appends are
// serialized the way the real spreadsheet backend serializes them, plus
// fault hooks for the allocator's failure taxonomy.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// FakeStore implements app.SheetStore over in-memory sheets. All
// methods are safe for concurrent use; appends take a single lock so
// each row gets a distinct position, mirroring the store-side
// serialization the allocator relies on.
type FakeStore struct {
	mu     sync.Mutex
	sheets map[string][][]string

	// AppendErr, when set, is returned by AppendRow before anything is
	// written (the "request never reached the store" case).
	AppendErr error
	// ConfirmErr, when set, is returned by AppendRow after the row has
	// been written (the "append landed, confirmation lost" case).
	ConfirmErr error
	// MangleRange rewrites the confirmed range before returning it, for
	// unparsable-confirmation scenarios.
	MangleRange func(updatedRange string) string
	// EnsureErr, when set, is returned by EnsureSheet.
	EnsureErr error
	// UpdateErr, when set, is returned by UpdateCell.
	UpdateErr error
	// ReadErr, when set, is returned by ReadRange.
	ReadErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{sheets: make(map[string][][]string)}
}

// Seed replaces the titled sheet's rows (header included).
func (s *FakeStore) Seed(title string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[title] = rows
}

// Rows returns a copy of the titled sheet's rows, nil when absent.
func (s *FakeStore) Rows(title string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[title]
	if !ok {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// RowCount reports the number of rows in the titled sheet, header
// included; 0 when the sheet does not exist.
func (s *FakeStore) RowCount(title string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sheets[title])
}

func (s *FakeStore) EnsureSheet(_ context.Context, title string, header []string) (bool, error) {
	if s.EnsureErr != nil {
		return false, s.EnsureErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[title]; ok {
		return false, nil
	}
	s.sheets[title] = [][]string{append([]string(nil), header...)}
	return true, nil
}

func (s *FakeStore) AppendRow(_ context.Context, title string, values []string) (string, error) {
	if s.AppendErr != nil {
		return "", s.AppendErr
	}
	s.mu.Lock()
	rows, ok := s.sheets[title]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("sheet %q does not exist", title)
	}
	rows = append(rows, append([]string(nil), values...))
	s.sheets[title] = rows
	rowIndex := len(rows)
	s.mu.Unlock()

	if s.ConfirmErr != nil {
		return "", s.ConfirmErr
	}
	updatedRange := fmt.Sprintf("%s!A%d:F%d", title, rowIndex, rowIndex)
	if s.MangleRange != nil {
		updatedRange = s.MangleRange(updatedRange)
	}
	return updatedRange, nil
}

func (s *FakeStore) UpdateCell(_ context.Context, title, cell, value string) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	col, row, err := parseCell(cell)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[title]
	if !ok || row > len(rows) {
		return fmt.Errorf("cell %s out of range in %q", cell, title)
	}
	for len(rows[row-1]) <= col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col] = value
	return nil
}

func (s *FakeStore) ReadRange(_ context.Context, rangeA1 string) ([][]string, error) {
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	title, _, _ := strings.Cut(rangeA1, "!")
	rows := s.Rows(title)
	if rows == nil {
		return nil, fmt.Errorf("sheet %q does not exist", title)
	}
	return rows, nil
}

func parseCell(cell string) (col, row int, err error) {
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		col = col*26 + int(cell[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(cell) {
		return 0, 0, fmt.Errorf("malformed cell ref %q", cell)
	}
	row, err = strconv.Atoi(cell[i:])
	if err != nil || row <= 0 {
		return 0, 0, fmt.Errorf("malformed cell ref %q", cell)
	}
	return col - 1, row, nil
}
