package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Failure taxonomy for backend resolution and generation.
var (
	// ErrUnknownBackend is returned when the caller names a provider that does not exist.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrBackendUnavailable is returned when a provider exists but is not currently usable,
	// usually because its credential is missing.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrNotInitialized is returned when an adapter's client was never constructed.
	ErrNotInitialized = errors.New("backend not initialized")

	// ErrRemoteCall is returned for network, protocol and status failures during generation.
	ErrRemoteCall = errors.New("remote call failed")

	// ErrTimeout is the remote call sub-kind for calls that hit their deadline.
	ErrTimeout = fmt.Errorf("%w: timed out", ErrRemoteCall)

	// ErrCanceled is the remote call sub-kind for calls abandoned by the caller.
	ErrCanceled = fmt.Errorf("%w: canceled", ErrRemoteCall)

	// ErrInvalidResponse is the remote call sub-kind for empty or malformed responses.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrRemoteCall)

	// ErrContentBlocked is the remote call sub-kind for responses withheld by provider safety filters.
	ErrContentBlocked = fmt.Errorf("%w: content blocked", ErrRemoteCall)

	// ErrEmptyPrompt is returned when a request carries no prompt text.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)

// Kind names a failure class. Its string form is stable and exposed to API clients.
type Kind string

// Failure kinds, in the order they are checked by KindOf.
const (
	KindNone               Kind = ""
	KindUnknownBackend     Kind = "UnknownBackend"
	KindBackendUnavailable Kind = "BackendUnavailable"
	KindNotInitialized     Kind = "NotInitialized"
	KindRemoteCall         Kind = "RemoteCallError"
)

// KindOf classifies err into one of the failure kinds. It returns KindNone for
// nil and for errors that did not originate in this package.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnknownBackend):
		return KindUnknownBackend
	case errors.Is(err, ErrBackendUnavailable):
		return KindBackendUnavailable
	case errors.Is(err, ErrNotInitialized):
		return KindNotInitialized
	case errors.Is(err, ErrRemoteCall):
		return KindRemoteCall
	default:
		return KindNone
	}
}

// IsTimeout reports whether err is a remote call that hit its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// BackendError attaches the backend and model that served a failed call.
type BackendError struct {
	Backend string
	Model   string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s (model %s): %v", e.Backend, e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// RemoteError classifies a transport-level failure from an adapter's outbound
// call. Deadline failures map to ErrTimeout, caller cancellation to ErrCanceled
// and everything else to ErrRemoteCall. Errors that are already classified are
// returned unchanged.
func RemoteError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindNone {
		return err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	default:
		return fmt.Errorf("%w: %v", ErrRemoteCall, err)
	}
}
