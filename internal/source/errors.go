package source

import (
	"errors"
	"fmt"
)

var (
	errNilClient    = errors.New("nil http client")
	errInvalidKind  = errors.New("invalid source kind")
	errInvalidPrice = errors.New("invalid price")
)

// NetworkError signals that the request failed or returned an error status.
type NetworkError struct {
	Source     string
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GET %s: http status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: GET %s: %v", e.Source, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError signals that a response did not have the expected structure
// or yielded no prices.
type ParseError struct {
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %s", e.Source, e.Reason)
}

func parseErrorf(source, format string, args ...any) error {
	return &ParseError{Source: source, Reason: fmt.Sprintf(format, args...)}
}
