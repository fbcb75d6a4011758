package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeNameRequired          = "name_required"
	codeInvalidPhone          = "invalid_phone"
	codeNoAreaSelected        = "no_area_selected"
	codeAreaNotFound          = "area_not_found"
	codeSourceUnavailable     = "source_unavailable"
	codeMalformedDirectory    = "malformed_directory"
	codeAppendFailed          = "append_failed"
	codeConfirmationLost      = "confirmation_lost"
	codeSheetCreationConflict = "sheet_creation_conflict"
	codeForbidden             = "forbidden"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
