package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/diary-api/internal/platform/logger"
)

// ContextKey is the type for request context keys owned by the API layer.
type ContextKey string

const (
	// SubjectContextKey is the context key for the authenticated token subject.
	SubjectContextKey ContextKey = "subject"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID stores traceID in the context, generating one when it is empty.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	if strings.TrimSpace(traceID) == "" {
		traceID = generateTraceID()
	}
	return logger.WithTraceID(ctx, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	return logger.TraceID(ctx)
}

// SetSubject stores the authenticated subject in the context.
func SetSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectContextKey, subject)
}

// GetSubject returns the authenticated subject and whether one was set.
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectContextKey).(string)
	return subject, ok && subject != ""
}

// generateTraceID returns a random 32 character hex string. If crypto/rand
// fails it falls back to a random UUID with the dashes removed.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"fallback", "uuid")
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(b)
}
