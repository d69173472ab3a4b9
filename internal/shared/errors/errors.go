package errors

import "errors"

// Domain errors
var (
	// Page errors
	ErrPageFetchFailed     = errors.New("root page could not be fetched")
	ErrPageStatus          = errors.New("root page returned an error status")
	ErrNavigationExhausted = errors.New("page failed to load after all attempts")
	ErrBrowserUnavailable  = errors.New("browser session could not be started")
	ErrSessionClosed       = errors.New("browser session is closed")
	ErrNotSubscribed       = errors.New("handlers must be subscribed before navigation")

	// Discovery errors
	ErrParseFailed = errors.New("markup could not be parsed")

	// Probe errors
	ErrProbeFailed = errors.New("cors probe could not be completed")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)
