package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is a generated diary entry. It is returned to the caller and not
// stored by the service.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"generated_text"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Style     string    `json:"style"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry creates an Entry with a fresh ID and the current UTC time.
// Returns an error if validation fails.
func NewEntry(text, provider, model, style, mood string) (*Entry, error) {
	entry := &Entry{
		ID:        uuid.New(),
		Text:      text,
		Provider:  provider,
		Model:     model,
		Style:     style,
		Mood:      mood,
		CreatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the Entry has valid data.
func (e *Entry) Validate() error {
	if e.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(e.Text) == "" {
		return NewValidationError("generated_text", "cannot be empty", ErrEmptyContent)
	}
	if e.Provider == "" {
		return NewValidationError("provider", "cannot be empty", ErrValidation)
	}
	return nil
}
