package relay

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ncecere/gemini_relay/internal/services/staging"
)

var (
	// ErrMissingInput marks an absent or blank prompt/message.
	ErrMissingInput = errors.New("missing input")
	// ErrMissingFile marks a file route called without its file field.
	ErrMissingFile = errors.New("missing file")
	// ErrFileTooLarge marks an upload over staging.max_size_mb.
	ErrFileTooLarge = staging.ErrFileTooLarge
)

// ProviderError wraps any failure returned by the upstream provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

// FileSystemError wraps staging store failures.
type FileSystemError struct {
	Op  string
	Err error
}

func (e *FileSystemError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *FileSystemError) Unwrap() error { return e.Err }

// apiError ties a client-facing message and status to an underlying sentinel.
type apiError struct {
	status int
	msg    string
	err    error
}

func (e apiError) Error() string { return e.msg }

func (e apiError) Unwrap() error { return e.err }

// AsAPIError extracts the HTTP status information when available.
func AsAPIError(err error) (int, string, bool) {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status, apiErr.msg, true
	}
	return 0, "", false
}

// MissingInput reports a blank prompt with the route-specific message.
func MissingInput(msg string) error {
	return apiError{status: http.StatusBadRequest, msg: msg, err: ErrMissingInput}
}

// MissingFile reports an absent upload for the given kind.
func MissingFile(kind Kind) error {
	return apiError{status: http.StatusBadRequest, msg: kind.MissingFileMessage(), err: ErrMissingFile}
}

// Describe maps err onto the status and message written in the failure envelope.
func Describe(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	if status, msg, ok := AsAPIError(err); ok {
		return status, msg
	}
	switch {
	case errors.Is(err, ErrMissingInput), errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
