package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ArielAmzalak/SenhasGF4/internal/app"
	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

// Submitter is the minimal interface needed to register tickets.
type Submitter interface {
	Submit(ctx context.Context, in app.SubmitInput) (app.SubmitResult, error)
}

// TicketRenderer turns confirmed tickets into a printable PDF.
type TicketRenderer interface {
	Render(tickets []domain.ConfirmedTicket) ([]byte, error)
}

// TicketPrinter forwards a rendered PDF to the on-site printer.
type TicketPrinter interface {
	Enabled() bool
	Send(ctx context.Context, pdf []byte) error
}

type createRegistrationRequest struct {
	Areas        []string `json:"areas"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Neighborhood string   `json:"neighborhood"`
}

type ticketResponse struct {
	Area         string `json:"area"`
	Sheet        string `json:"sheet"`
	Number       int    `json:"number"`
	RegisteredAt string `json:"registered_at"`
}

type limitResponse struct {
	Area   string `json:"area"`
	Limit  int    `json:"limit"`
	Number int    `json:"number"`
}

type createRegistrationResponse struct {
	Tickets    []ticketResponse `json:"tickets"`
	Exceeded   []limitResponse  `json:"exceeded,omitempty"`
	PDFBase64  string           `json:"pdf_base64,omitempty"`
	PDFError   string           `json:"pdf_error,omitempty"`
	Printed    bool             `json:"printed"`
	PrintError string           `json:"print_error,omitempty"`
}

// HandleCreateRegistration registers one ticket per selected area and,
// when every area stayed within its cap, attaches the rendered PDF and
// forwards it to the print server.
func HandleCreateRegistration(svc Submitter, renderer TicketRenderer, printer TicketPrinter, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createRegistrationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		result, err := svc.Submit(r.Context(), app.SubmitInput{
			Areas:        req.Areas,
			Name:         req.Name,
			Phone:        req.Phone,
			Neighborhood: req.Neighborhood,
		})
		if err != nil {
			writeSubmitError(w, err, result, logger)
			return
		}

		resp := createRegistrationResponse{
			Tickets:  toTicketResponses(result.Tickets),
			Exceeded: toLimitResponses(result.Exceeded),
		}

		if len(result.Exceeded) == 0 && renderer != nil {
			pdf, err := renderer.Render(result.Tickets)
			if err != nil {
				logger.Error("ticket render failed", zap.Error(err))
				resp.PDFError = "tickets registered, but the PDF could not be generated"
			} else {
				resp.PDFBase64 = base64.StdEncoding.EncodeToString(pdf)
				if printer != nil && printer.Enabled() {
					if err := printer.Send(r.Context(), pdf); err != nil {
						logger.Warn("print forwarding failed", zap.Error(err))
						resp.PrintError = err.Error()
					} else {
						resp.Printed = true
					}
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// writeSubmitError maps the failure taxonomy onto HTTP statuses. The
// retry guidance matters more than the status itself: append_failed is
// safe to resubmit, confirmation_lost is not.
func writeSubmitError(w http.ResponseWriter, err error, partial app.SubmitResult, logger *zap.Logger) {
	switch {
	case errors.Is(err, domain.ErrNoAreaSelected):
		writeError(w, http.StatusBadRequest, codeNoAreaSelected, err.Error())
	case errors.Is(err, domain.ErrNameRequired):
		writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidPhone):
		writeError(w, http.StatusBadRequest, codeInvalidPhone, err.Error())
	case errors.Is(err, domain.ErrAreaNotFound):
		writeError(w, http.StatusNotFound, codeAreaNotFound, err.Error())
	case errors.Is(err, domain.ErrSourceUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeSourceUnavailable, "area directory unavailable")
	case errors.Is(err, domain.ErrMalformedDirectory):
		writeError(w, http.StatusInternalServerError, codeMalformedDirectory, err.Error())
	case errors.Is(err, domain.ErrAppendFailed):
		writeError(w, http.StatusServiceUnavailable, codeAppendFailed,
			"nothing was saved; it is safe to retry the submission")
	case errors.Is(err, domain.ErrConfirmationLost):
		if n := len(partial.Tickets); n > 0 {
			logger.Error("submission failed after partial issuance",
				zap.Int("issued", n), zap.Error(err))
		}
		writeError(w, http.StatusBadGateway, codeConfirmationLost,
			"the outcome is uncertain: a row may have been saved without a ticket number; verify the sheet manually before resubmitting")
	case errors.Is(err, domain.ErrSheetCreationConflict):
		writeError(w, http.StatusConflict, codeSheetCreationConflict,
			"the area sheet is being created; retry in a moment")
	default:
		logger.Error("registration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func toTicketResponses(tickets []domain.ConfirmedTicket) []ticketResponse {
	out := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ticketResponse{
			Area:         t.Area.DisplayName,
			Sheet:        t.Area.SheetName,
			Number:       t.Number,
			RegisteredAt: t.RegisteredAt,
		})
	}
	return out
}

func toLimitResponses(notices []app.LimitNotice) []limitResponse {
	if len(notices) == 0 {
		return nil
	}
	out := make([]limitResponse, 0, len(notices))
	for _, n := range notices {
		out = append(out, limitResponse{Area: n.Area, Limit: n.Limit, Number: n.Number})
	}
	return out
}
