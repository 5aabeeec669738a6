package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any FetchError carrying a 401.
var ErrUnauthorized = errors.New("unauthorized")

// FetchError is returned for every response outside the 2xx range. 4xx and
// 5xx are deliberately not told apart beyond the status code.
type FetchError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

func (e *FetchError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Detail returns the upstream "detail" or "msg" message when the body carries one.
func (e *FetchError) Detail() string {
	return detailFromBody([]byte(e.Body))
}

// ParseError is returned when a 2xx body does not match the endpoint's schema.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the upstream status from err, or 0.
func StatusCode(err error) int {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}
