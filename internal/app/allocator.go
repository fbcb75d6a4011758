package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

// Allocator issues sequential, gap-free ticket numbers per sheet.
//
// It never reads a row count to compute the next number: that
// read-then-write sequence races under concurrent submissions (two
// writers both read N and both claim N+1). Instead the row is appended
// first and the number derived from the row position the store itself
// confirmed. The store's serialization of appends to one sheet is the
// only mutual-exclusion mechanism, which also keeps multiple service
// replicas correct without shared memory.
type Allocator struct {
	store  SheetStore
	logger *zap.Logger
}

func NewAllocator(store SheetStore, logger *zap.Logger) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{store: store, logger: logger}
}

// AllocateAndAppend appends row to the named sheet (creating it with
// the canonical header when missing) and returns the ticket number the
// confirmed row position assigned. The Senha cell is backfilled with
// the number once known.
//
// Failures are classified, never retried here:
//   - domain.ErrAppendFailed: nothing persisted, the submission can be
//     retried whole.
//   - domain.ErrConfirmationLost: the row may exist without a learned
//     number; the caller must not blindly retry.
//   - domain.ErrSheetCreationConflict: a creation race the store could
//     not disambiguate; retry sheet resolution only.
func (a *Allocator) AllocateAndAppend(ctx context.Context, sheetName string, row []string) (int, error) {
	if _, err := a.store.EnsureSheet(ctx, sheetName, domain.Header); err != nil {
		if errors.Is(err, domain.ErrSheetCreationConflict) {
			return 0, err
		}
		// Nothing was appended yet, so resolution failures retry safely.
		return 0, fmt.Errorf("%w: resolve sheet %q: %v", domain.ErrAppendFailed, sheetName, err)
	}

	updatedRange, err := a.store.AppendRow(ctx, sheetName, row)
	if err != nil {
		if errors.Is(err, domain.ErrConfirmationLost) {
			return 0, err
		}
		if errors.Is(err, domain.ErrAppendFailed) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: append to %q: %v", domain.ErrAppendFailed, sheetName, err)
	}

	rowIndex, ok := rowIndexFromRange(updatedRange)
	if !ok || rowIndex < 2 {
		// The append landed but we cannot tell where: an orphan row may
		// now exist in the sheet.
		return 0, fmt.Errorf("%w: cannot locate appended row in range %q", domain.ErrConfirmationLost, updatedRange)
	}
	number := rowIndex - 1

	// The Senha column has no formula; patch the confirmed number into
	// the cell so the sheet matches what the registrant was told. The
	// number is already confirmed, so a failed patch is not a failed
	// allocation.
	cell := "A" + strconv.Itoa(rowIndex)
	if err := a.store.UpdateCell(ctx, sheetName, cell, strconv.Itoa(number)); err != nil {
		a.logger.Warn("ticket number backfill failed",
			zap.String("sheet", sheetName),
			zap.String("cell", cell),
			zap.Int("number", number),
			zap.Error(err))
	}

	a.logger.Info("ticket allocated",
		zap.String("sheet", sheetName),
		zap.Int("number", number),
		zap.Int("row", rowIndex))
	return number, nil
}

// rowIndexFromRange extracts the 1-based row index from a confirmed A1
// range such as "Alimentação!A5:F5", "'Praça 14'!A12:F12" or "Bazar!B7".
func rowIndexFromRange(updatedRange string) (int, bool) {
	bang := strings.LastIndex(updatedRange, "!")
	ref := updatedRange[bang+1:]
	if first, _, found := strings.Cut(ref, ":"); found {
		ref = first
	}

	start := len(ref)
	for start > 0 && ref[start-1] >= '0' && ref[start-1] <= '9' {
		start--
	}
	if start == len(ref) {
		return 0, false
	}
	idx, err := strconv.Atoi(ref[start:])
	if err != nil || idx <= 0 {
		return 0, false
	}
	return idx, true
}
