package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

const (
	defaultDirectorySheet     = "Nomes"
	defaultNeighborhoodsSheet = "Bairro"
)

// Column aliases accepted in the directory header, accent/case-insensitive.
var (
	areaColumns   = []string{"Área", "Area", "Setor", "Mesa", "Área/Setor"}
	sheetColumns  = []string{"Aba", "Sheet", "AbaDestino", "Aba Destino", "Destino", "Guia", "Tab"}
	activeColumns = []string{"Ativa", "Ativo", "Status", "Habilitada", "Disponível"}
	limitColumns  = []string{"Quantidade máxima de senhas", "Qtd máxima", "Qtd Senhas", "Limite"}
)

// Registry loads the set of service areas from the directory sheet.
// It never mutates the directory; each load is a fresh read.
type Registry struct {
	store              SheetStore
	logger             *zap.Logger
	directorySheet     string
	neighborhoodsSheet string
}

type RegistryOption func(*Registry)

// WithDirectorySheet overrides the sheet listing the areas.
func WithDirectorySheet(title string) RegistryOption {
	return func(r *Registry) {
		if title != "" {
			r.directorySheet = title
		}
	}
}

// WithNeighborhoodsSheet overrides the sheet listing the neighborhoods.
func WithNeighborhoodsSheet(title string) RegistryOption {
	return func(r *Registry) {
		if title != "" {
			r.neighborhoodsSheet = title
		}
	}
}

func NewRegistry(store SheetStore, logger *zap.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		store:              store,
		logger:             logger,
		directorySheet:     defaultDirectorySheet,
		neighborhoodsSheet: defaultNeighborhoodsSheet,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadActiveAreas reads the directory sheet and returns the active
// areas in source order. A missing Área column or a duplicated target
// sheet is a configuration error (domain.ErrMalformedDirectory); a
// failed read is domain.ErrSourceUnavailable.
func (r *Registry) LoadActiveAreas(ctx context.Context) ([]domain.Area, error) {
	rows, err := r.store.ReadRange(ctx, r.directorySheet+"!A:Z")
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", domain.ErrSourceUnavailable, r.directorySheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	areaIdx, ok := findColumn(header, areaColumns)
	if !ok {
		return nil, fmt.Errorf("%w: column 'Área' not found in %q", domain.ErrMalformedDirectory, r.directorySheet)
	}
	sheetIdx, hasSheetCol := findColumn(header, sheetColumns)
	activeIdx, hasActiveCol := findColumn(header, activeColumns)
	limitIdx, hasLimitCol := findColumn(header, limitColumns)

	var areas []domain.Area
	seen := make(map[string]struct{})
	for _, row := range rows[1:] {
		display := cellAt(row, areaIdx)
		if display == "" {
			continue
		}

		sheet := display
		if hasSheetCol {
			if v := cellAt(row, sheetIdx); v != "" {
				sheet = v
			}
		}

		// Rows without an Ativa column count as active.
		active := true
		if hasActiveCol {
			active = parseTruthy(cellAt(row, activeIdx))
		}
		if !active {
			continue
		}

		if _, dup := seen[sheet]; dup {
			return nil, fmt.Errorf("%w: sheet %q assigned to more than one area", domain.ErrMalformedDirectory, sheet)
		}
		seen[sheet] = struct{}{}

		area := domain.Area{DisplayName: display, SheetName: sheet, Active: true}
		if hasLimitCol {
			area.MaxTickets = parsePositiveInt(cellAt(row, limitIdx))
		}
		areas = append(areas, area)
	}

	r.logger.Debug("areas loaded", zap.Int("active", len(areas)))
	return areas, nil
}

// LoadNeighborhoods reads the single-column neighborhoods sheet,
// skipping a header row when present.
func (r *Registry) LoadNeighborhoods(ctx context.Context) ([]string, error) {
	rows, err := r.store.ReadRange(ctx, r.neighborhoodsSheet+"!A:A")
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", domain.ErrSourceUnavailable, r.neighborhoodsSheet, err)
	}

	var names []string
	for i, row := range rows {
		name := cellAt(row, 0)
		if name == "" {
			continue
		}
		if i == 0 {
			if k := foldKey(name); k == "bairro" || k == "nome do bairro" {
				continue
			}
		}
		names = append(names, name)
	}
	return names, nil
}

func findColumn(header []string, candidates []string) (int, bool) {
	for _, want := range candidates {
		wantKey := foldKey(want)
		for i, col := range header {
			if foldKey(col) == wantKey {
				return i, true
			}
		}
	}
	return 0, false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
