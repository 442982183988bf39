package diary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/diary-api/internal/domain"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/platform/logger"
	"github.com/phrazzld/diary-api/internal/prompt"
)

// Input limits, in characters.
const (
	MaxContentLength  = 4000
	MaxPreviousLength = 20000
)

// Generator dispatches a prompt to a named backend.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// PromptBuilder renders prompts for a style and mood.
type PromptBuilder interface {
	Diary(in prompt.DiaryInput) (string, error)
	Regenerate(in prompt.RegenerateInput) (string, error)
	ResolveStyle(name string) prompt.Style
	ResolveMood(name string) (prompt.Mood, bool)
}

// GenerateInput is a request for a new diary entry.
type GenerateInput struct {
	Content  string `json:"content"  validate:"required,max=4000"`
	Style    string `json:"style"    validate:"max=32"`
	Mood     string `json:"mood"     validate:"max=32"`
	Provider string `json:"provider" validate:"max=32"`
}

// RegenerateInput is a request for a different take on a previous entry.
type RegenerateInput struct {
	OriginalContent string `json:"original_content"    validate:"required,max=4000"`
	PreviousContent string `json:"previous_ai_content" validate:"max=20000"`
	Style           string `json:"style"               validate:"max=32"`
	Mood            string `json:"mood"                validate:"max=32"`
	Provider        string `json:"provider"            validate:"max=32"`
}

// Service provides diary generation operations.
type Service interface {
	// Generate creates a diary entry from a short note.
	Generate(ctx context.Context, in GenerateInput) (*domain.Entry, error)

	// Regenerate creates a different entry for a note that was already expanded once.
	Regenerate(ctx context.Context, in RegenerateInput) (*domain.Entry, error)
}

// ServiceError wraps generation failures with the operation that produced them.
type ServiceError struct {
	// Operation is the operation that failed ("generate" or "regenerate")
	Operation string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("diary %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

type serviceImpl struct {
	generator Generator
	prompts   PromptBuilder
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService creates a diary Service.
func NewService(generator Generator, prompts PromptBuilder, logger *slog.Logger) (Service, error) {
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if prompts == nil {
		return nil, errors.New("prompt builder cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &serviceImpl{
		generator: generator,
		prompts:   prompts,
		validate:  newValidator(),
		logger:    logger.With("component", "diary_service"),
	}, nil
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Generate implements Service.
func (s *serviceImpl) Generate(ctx context.Context, in GenerateInput) (*domain.Entry, error) {
	in.Content = strings.TrimSpace(in.Content)
	in.Style = strings.TrimSpace(in.Style)
	in.Mood = strings.TrimSpace(in.Mood)
	in.Provider = strings.TrimSpace(in.Provider)

	if err := s.check(in); err != nil {
		return nil, err
	}

	text, err := s.prompts.Diary(prompt.DiaryInput{
		Content: in.Content,
		Style:   in.Style,
		Mood:    in.Mood,
	})
	if err != nil {
		return nil, &ServiceError{Operation: "generate", Err: err}
	}

	return s.dispatch(ctx, "generate", in.Provider, text, in.Style, in.Mood)
}

// Regenerate implements Service.
func (s *serviceImpl) Regenerate(ctx context.Context, in RegenerateInput) (*domain.Entry, error) {
	in.OriginalContent = strings.TrimSpace(in.OriginalContent)
	in.PreviousContent = strings.TrimSpace(in.PreviousContent)
	in.Style = strings.TrimSpace(in.Style)
	in.Mood = strings.TrimSpace(in.Mood)
	in.Provider = strings.TrimSpace(in.Provider)

	if err := s.check(in); err != nil {
		return nil, err
	}

	text, err := s.prompts.Regenerate(prompt.RegenerateInput{
		OriginalContent: in.OriginalContent,
		PreviousContent: in.PreviousContent,
		Style:           in.Style,
		Mood:            in.Mood,
	})
	if err != nil {
		return nil, &ServiceError{Operation: "regenerate", Err: err}
	}

	return s.dispatch(ctx, "regenerate", in.Provider, text, in.Style, in.Mood)
}

func (s *serviceImpl) dispatch(ctx context.Context, op, provider, text, style, mood string) (*domain.Entry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.generator.Generate(ctx, generation.Request{Backend: provider, Prompt: text})
	if err != nil {
		log.WarnContext(ctx, "diary generation failed",
			"operation", op,
			"provider", provider,
			"kind", string(generation.KindOf(err)))
		return nil, &ServiceError{Operation: op, Err: err}
	}

	resolvedMood := ""
	if m, ok := s.prompts.ResolveMood(mood); ok {
		resolvedMood = m.Name
	}

	entry, err := domain.NewEntry(result.Text, result.Backend, result.Model,
		s.prompts.ResolveStyle(style).Name, resolvedMood)
	if err != nil {
		return nil, &ServiceError{Operation: op, Err: err}
	}

	log.InfoContext(ctx, "diary entry generated",
		"operation", op,
		"entry_id", entry.ID.String(),
		"provider", entry.Provider,
		"model", entry.Model,
		"style", entry.Style)

	return entry, nil
}

// check validates input and converts the first failure into a
// *domain.ValidationError.
func (s *serviceImpl) check(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", err.Error(), domain.ErrValidation)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "is required", domain.ErrEmptyContent)
	case "max":
		return domain.NewValidationError(fe.Field(),
			fmt.Sprintf("must be at most %s characters", fe.Param()), domain.ErrContentTooLong)
	default:
		return domain.NewValidationError(fe.Field(), "is invalid", domain.ErrValidation)
	}
}
