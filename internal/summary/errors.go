package summary

import (
	"errors"
	"fmt"
	"net/http"
)

// Errors reported by the endpoint client. None of them escape
// [Provider.Summarize]; they only decide retry and fallback.
var (
	ErrMalformedResponse = errors.New("malformed summary response")
	ErrEmptySummary      = errors.New("empty summary in response")
	ErrCodeLike          = errors.New("summary looks like source code")
)

// StatusError is returned for non-2xx endpoint responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("summary endpoint returned %d %s", e.Code, http.StatusText(e.Code))
	}

	return fmt.Sprintf("summary endpoint returned %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}
