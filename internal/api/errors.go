package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/diary-api/internal/api/shared"
	"github.com/phrazzld/diary-api/internal/domain"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/redact"
	"github.com/phrazzld/diary-api/internal/service/auth"
)

// KindValidation is the failure kind reported for malformed or invalid requests.
const KindValidation = "ValidationError"

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Request errors
	case errors.Is(err, shared.ErrInvalidJSON),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, generation.ErrEmptyPrompt):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized
	}

	switch generation.KindOf(err) {
	case generation.KindUnknownBackend:
		return http.StatusBadRequest
	case generation.KindBackendUnavailable, generation.KindNotInitialized:
		return http.StatusServiceUnavailable
	case generation.KindRemoteCall:
		if generation.IsTimeout(err) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKind returns the failure kind reported to clients alongside the message.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, shared.ErrInvalidJSON),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, generation.ErrEmptyPrompt):
		return KindValidation
	}
	return string(generation.KindOf(err))
}

// GetSafeErrorMessage returns a user-friendly error message that does not
// expose provider responses or credentials.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	switch {
	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"
	case errors.Is(err, generation.ErrEmptyPrompt):
		return "Prompt cannot be empty"
	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization header required"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	}

	provider := "AI provider"
	var backendErr *generation.BackendError
	if errors.As(err, &backendErr) {
		provider = backendErr.Backend
	}

	switch generation.KindOf(err) {
	case generation.KindUnknownBackend, generation.KindBackendUnavailable:
		// Resolution errors name the provider and the configuration problem only.
		return redact.String(resolutionMessage(err))
	case generation.KindNotInitialized:
		return fmt.Sprintf("%s client is not initialized", provider)
	case generation.KindRemoteCall:
		switch {
		case generation.IsTimeout(err):
			return fmt.Sprintf("%s request timed out", provider)
		case errors.Is(err, generation.ErrContentBlocked):
			return fmt.Sprintf("%s declined to generate this entry", provider)
		case errors.Is(err, generation.ErrInvalidResponse):
			return fmt.Sprintf("%s returned an invalid response", provider)
		case errors.Is(err, generation.ErrCanceled):
			return "Request was canceled"
		default:
			return fmt.Sprintf("%s request failed", provider)
		}
	}

	return "An unexpected error occurred"
}

// resolutionMessage returns the innermost registry error text, dropping any
// service-level prefixes.
func resolutionMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil || generation.KindOf(next) == generation.KindNone {
			return err.Error()
		}
		if next == generation.ErrUnknownBackend || next == generation.ErrBackendUnavailable {
			return err.Error()
		}
		err = next
	}
}
