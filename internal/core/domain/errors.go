package domain

import (
	"errors"
	"fmt"
)

// Remote source errors
var (
	ErrNetwork = errors.New("network error")
	ErrHTTP    = errors.New("http error")
	ErrParse   = errors.New("parse error")
)

// Directory errors
var (
	ErrFetchFailed      = errors.New("fetch failed")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrStorage          = errors.New("storage error")
)

// HTTPError is returned when the remote source answers with anything but 200.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: status %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrHTTP) match any status code.
func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

// InvalidParameter builds an ErrInvalidParameter naming the offending field.
func InvalidParameter(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, field, reason)
}

// StorageError wraps a store failure as ErrStorage, keeping the cause.
func StorageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// FetchFailed normalizes a remote source failure.
func FetchFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrFetchFailed, err)
}
