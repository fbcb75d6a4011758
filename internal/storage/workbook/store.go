// Package workbook implements the SheetStore boundary against a local
// .xlsx file via excelize. It serves development and offline use, and
// gives integration tests a real spreadsheet substrate. Append
// serialization, which Google Sheets provides server-side, is provided
// here by a process-local mutex; the file must not be shared between
// processes.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

type Store struct {
	mu   sync.Mutex
	path string
	file *excelize.File
}

// NewStore opens the workbook at path, creating it when absent.
func NewStore(path string) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %q: %w", path, err)
		}
		return &Store{path: path, file: f}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat workbook %q: %w", path, err)
	}

	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("create workbook %q: %w", path, err)
	}
	return &Store{path: path, file: f}, nil
}

// Close releases the underlying file handles.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *Store) EnsureSheet(_ context.Context, title string, header []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.file.GetSheetIndex(title)
	if err != nil {
		return false, fmt.Errorf("lookup sheet %q: %w", title, err)
	}
	if idx >= 0 {
		// Backfill the header when row 1 is empty, leave it alone otherwise.
		first, err := s.file.GetCellValue(title, "A1")
		if err != nil {
			return false, fmt.Errorf("read header of %q: %w", title, err)
		}
		if first != "" {
			return false, nil
		}
		if err := s.writeRowLocked(title, 1, header); err != nil {
			return false, err
		}
		return false, s.saveLocked()
	}

	if _, err := s.file.NewSheet(title); err != nil {
		return false, fmt.Errorf("create sheet %q: %w", title, err)
	}
	if err := s.writeRowLocked(title, 1, header); err != nil {
		return false, err
	}
	if err := s.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) AppendRow(_ context.Context, title string, values []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(title)
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", title, err)
	}
	rowIndex := len(rows) + 1
	if err := s.writeRowLocked(title, rowIndex, values); err != nil {
		return "", err
	}
	if err := s.saveLocked(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s!A%d:%s%d", title, rowIndex, colName(len(values)), rowIndex), nil
}

func (s *Store) UpdateCell(_ context.Context, title, cell, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.SetCellStr(title, cell, value); err != nil {
		return fmt.Errorf("set %s on %q: %w", cell, title, err)
	}
	return s.saveLocked()
}

func (s *Store) ReadRange(_ context.Context, rangeA1 string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, _, _ := strings.Cut(rangeA1, "!")
	title = strings.Trim(title, "'")
	rows, err := s.file.GetRows(title)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", rangeA1, err)
	}
	return rows, nil
}

func (s *Store) writeRowLocked(title string, rowIndex int, values []string) error {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	cell := fmt.Sprintf("A%d", rowIndex)
	if err := s.file.SetSheetRow(title, cell, &row); err != nil {
		return fmt.Errorf("write row %d on %q: %w", rowIndex, title, err)
	}
	return nil
}

func (s *Store) saveLocked() error {
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func colName(n int) string {
	var letters []byte
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}
