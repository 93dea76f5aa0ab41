package model

import (
	"errors"
	"fmt"
	"strings"
)

// ResolutionNotFoundError is returned when no registry entity cleared the
// similarity floor for a free-text fragment. It carries the attempted text
// and kind so callers can surface a "did you mean" or a fallback listing.
type ResolutionNotFoundError struct {
	Kind EntityKind
	Text string
}

func (e *ResolutionNotFoundError) Error() string {
	return fmt.Sprintf("no %s matching %q", e.Kind, e.Text)
}

// PartialFetchError records that one or more planned steps failed while
// others succeeded. It annotates a degraded DataContext; it does not abort
// the request.
type PartialFetchError struct {
	Failed []string // step IDs
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("partial fetch failure: %s", strings.Join(e.Failed, ", "))
}

// InsufficientContextError means the assembled context cannot answer the
// question. It surfaces verbatim as an honest "cannot determine" answer —
// it must never be converted into a fabricated one.
type InsufficientContextError struct {
	Reason string
}

func (e *InsufficientContextError) Error() string {
	return "insufficient context: " + e.Reason
}

// BackendUnavailableError means a data service or the reasoning backend is
// unreachable or timed out. Fatal for the current turn only; the session
// and its history survive.
type BackendUnavailableError struct {
	Service string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// IsResolutionNotFound reports whether err wraps a ResolutionNotFoundError.
func IsResolutionNotFound(err error) bool {
	var e *ResolutionNotFoundError
	return errors.As(err, &e)
}

// IsInsufficientContext reports whether err wraps an InsufficientContextError.
func IsInsufficientContext(err error) bool {
	var e *InsufficientContextError
	return errors.As(err, &e)
}

// IsBackendUnavailable reports whether err wraps a BackendUnavailableError.
func IsBackendUnavailable(err error) bool {
	var e *BackendUnavailableError
	return errors.As(err, &e)
}
