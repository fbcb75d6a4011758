package domain

import "errors"

var (
	// Registry failures.
	ErrSourceUnavailable  = errors.New("area directory unavailable")
	ErrMalformedDirectory = errors.New("malformed area directory")

	// Allocator failures. ErrAppendFailed means the row never reached
	// the store and the whole submission can be retried. ErrConfirmationLost
	// means the row may exist without a known ticket number; retrying
	// blindly would create a duplicate, numberless row.
	ErrAppendFailed          = errors.New("append failed before reaching the store")
	ErrConfirmationLost      = errors.New("append confirmation lost")
	ErrSheetCreationConflict = errors.New("sheet creation conflict")

	// Submission validation.
	ErrAreaNotFound   = errors.New("area not found or inactive")
	ErrNoAreaSelected = errors.New("at least one area must be selected")
	ErrNameRequired   = errors.New("name is required")
	ErrInvalidPhone   = errors.New("phone must have 11 digits including the area code")
)
