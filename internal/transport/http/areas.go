package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

// AreaDirectory is the read side of the area registry the form needs.
type AreaDirectory interface {
	LoadActiveAreas(ctx context.Context) ([]domain.Area, error)
	LoadNeighborhoods(ctx context.Context) ([]string, error)
}

type areaResponse struct {
	DisplayName string `json:"display_name"`
	SheetName   string `json:"sheet_name"`
	MaxTickets  int    `json:"max_tickets,omitempty"`
}

// HandleListAreas returns the active areas in directory order.
func HandleListAreas(dir AreaDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		areas, err := dir.LoadActiveAreas(r.Context())
		if err != nil {
			writeDirectoryError(w, err)
			return
		}

		out := make([]areaResponse, 0, len(areas))
		for _, a := range areas {
			out = append(out, areaResponse{
				DisplayName: a.DisplayName,
				SheetName:   a.SheetName,
				MaxTickets:  a.MaxTickets,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// HandleListNeighborhoods returns the neighborhood options for the form.
func HandleListNeighborhoods(dir AreaDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		names, err := dir.LoadNeighborhoods(r.Context())
		if err != nil {
			writeDirectoryError(w, err)
			return
		}
		if names == nil {
			names = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(names)
	}
}

func writeDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSourceUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeSourceUnavailable, "area directory unavailable")
	case errors.Is(err, domain.ErrMalformedDirectory):
		writeError(w, http.StatusInternalServerError, codeMalformedDirectory, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
