package genome

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy. All errors are terminal: they describe bad caller input or
// missing records, never transient failures.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRange   = errors.New("invalid range")
	ErrOutOfBounds    = errors.New("out of bounds")
	ErrLengthMismatch = errors.New("length mismatch")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")

	// ErrSequenceUnavailable is returned when an operation needs a sequence
	// that was never stored. It matches ErrNotFound as well.
	ErrSequenceUnavailable = fmt.Errorf("sequence unavailable: %w", ErrNotFound)
)

// StatusCode maps an error to the HTTP-equivalent status a request layer
// should report for it.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrOutOfBounds),
		errors.Is(err, ErrLengthMismatch),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
