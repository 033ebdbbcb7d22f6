package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Generic messages used when a failed response carries no detail.
const (
	MsgRequestFailed = "Request failed"
	MsgRenderFailed  = "Failed to generate audiobook"
	MsgPreviewFailed = "Preview request failed"
	MsgDownload      = "Download failed"
)

var (
	ErrMissingOutline  = errors.New("outline is required")
	ErrMissingChapters = errors.New("at least one chapter is required")
	ErrInvalidSpeed    = errors.New("speed must be positive")
	ErrMissingPrompt   = errors.New("prompt is required")
	ErrMissingFeedback = errors.New("feedback is required")
	ErrMissingText     = errors.New("preview text is required")
	ErrMissingJobID    = errors.New("job id is required")
)

// ValidationError reports client-side precondition failures. No request is
// sent when one is returned.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

func validation(problems ...error) error {
	var out []error
	for _, p := range problems {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &ValidationError{Problems: out}
}

// APIError is a failed call to the service: either a transport failure
// (StatusCode 0, Err set) or a non-success response.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string // human-readable; the response detail when present
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth retrying: network failures,
// throttling and server-side errors. Cancellation never is.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch {
	case ae.StatusCode == 0:
		return ae.Err != nil
	case ae.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return ae.StatusCode >= 500
	}
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}
