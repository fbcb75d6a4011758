package app

import "context"

// SheetStore is the append-serializing spreadsheet the service writes
// to. Implementations must let the store itself assign row positions:
// AppendRow returns the A1 range the store confirmed for the new row,
// and that confirmed position is the only source of ticket numbers.
//
// Error contract for AppendRow: an error wrapping
// domain.ErrConfirmationLost means the outcome at the store is unknown
// (timeout, unreadable response) and the row may have landed. Any other
// error means the row definitely did not persist.
type SheetStore interface {
	// EnsureSheet creates the titled sheet with the given header row if
	// it does not exist. Concurrent creators must converge on a single
	// sheet; an unresolvable race wraps domain.ErrSheetCreationConflict.
	EnsureSheet(ctx context.Context, title string, header []string) (created bool, err error)

	// AppendRow appends values as a new row after the last occupied row
	// of the titled sheet and returns the confirmed A1 range assigned by
	// the store (e.g. "Alimentação!A5:F5").
	AppendRow(ctx context.Context, title string, values []string) (updatedRange string, err error)

	// UpdateCell patches a single cell ("A5") of the titled sheet.
	UpdateCell(ctx context.Context, title, cell, value string) error

	// ReadRange reads a rectangular range ("Nomes!A:Z") as rows of
	// strings. Trailing empty cells may be omitted per row.
	ReadRange(ctx context.Context, rangeA1 string) ([][]string, error)
}
