package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/diary-api/internal/api/shared"
	"github.com/phrazzld/diary-api/internal/service/auth"
)

// AuthMiddleware provides JWT bearer authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates the bearer token from the Authorization header and
// adds its subject to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Authorization header required", auth.ErrMissingToken,
				shared.WithKind("Unauthorized"))
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Invalid authorization format",
				fmt.Errorf("%w: malformed authorization header", auth.ErrInvalidToken),
				shared.WithKind("Unauthorized"))
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err,
					shared.WithKind("Unauthorized"))
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithKind("Unauthorized"), shared.WithElevatedLogLevel())
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Authentication error", err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.SetSubject(r.Context(), claims.Subject)))
	})
}

// GetSubject extracts the authenticated subject from the request context.
func GetSubject(r *http.Request) (string, bool) {
	return shared.GetSubject(r.Context())
}
