package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/diary-api/internal/api/shared"
	"github.com/phrazzld/diary-api/internal/domain"
	"github.com/phrazzld/diary-api/internal/platform/logger"
	"github.com/phrazzld/diary-api/internal/service/diary"
)

// DiaryHandler handles diary generation requests.
type DiaryHandler struct {
	service diary.Service
	logger  *slog.Logger
}

// NewDiaryHandler creates a new DiaryHandler.
func NewDiaryHandler(service diary.Service, logger *slog.Logger) *DiaryHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("diary service cannot be nil for DiaryHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DiaryHandler")
	}

	return &DiaryHandler{
		service: service,
		logger:  logger.With(slog.String("component", "diary_handler")),
	}
}

// GenerateDiary handles POST /api/generate-diary requests.
func (h *DiaryHandler) GenerateDiary(w http.ResponseWriter, r *http.Request) {
	var req diary.GenerateInput
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("generating diary entry",
		slog.String("provider", req.Provider),
		slog.String("style", req.Style),
		slog.Int("content_length", len(req.Content)))

	entry, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, entryToResponse(entry))
}

// RegenerateDiary handles POST /api/regenerate-diary requests.
func (h *DiaryHandler) RegenerateDiary(w http.ResponseWriter, r *http.Request) {
	var req diary.RegenerateInput
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("regenerating diary entry",
		slog.String("provider", req.Provider),
		slog.String("style", req.Style),
		slog.Bool("has_previous", req.PreviousContent != ""))

	entry, err := h.service.Regenerate(r.Context(), req)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, entryToResponse(entry))
}

func (h *DiaryHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r,
		MapErrorToStatusCode(err),
		GetSafeErrorMessage(err),
		err,
		shared.WithKind(ErrorKind(err)))
}

// EntryResponse is the JSON form of a generated entry.
type EntryResponse struct {
	ID            string `json:"id"`
	GeneratedText string `json:"generated_text"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	Style         string `json:"style"`
	Mood          string `json:"mood,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func entryToResponse(e *domain.Entry) EntryResponse {
	return EntryResponse{
		ID:            e.ID.String(),
		GeneratedText: e.Text,
		Provider:      e.Provider,
		Model:         e.Model,
		Style:         e.Style,
		Mood:          e.Mood,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}
