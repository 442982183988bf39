package api

import (
	"net/http"

	"github.com/phrazzld/diary-api/internal/api/shared"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/prompt"
)

// ProviderRegistry reports the live state of the configured backends.
type ProviderRegistry interface {
	Statuses() []generation.Status
	ListAvailable() []string
	DefaultName() string
}

// StyleCatalog lists the writing styles and moods a request may name.
type StyleCatalog interface {
	Styles() []prompt.Style
	Moods() []prompt.Mood
	DefaultStyle() string
}

// ProvidersResponse is the body of GET /api/providers.
type ProvidersResponse struct {
	Success         bool                `json:"success"`
	DefaultProvider string              `json:"default_provider"`
	Providers       []generation.Status `json:"providers"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Providers map[string]bool `json:"providers"`
	Available []string        `json:"available"`
}

// StylesResponse is the data of GET /api/styles.
type StylesResponse struct {
	DefaultStyle string         `json:"default_style"`
	Styles       []prompt.Style `json:"styles"`
	Moods        []prompt.Mood  `json:"moods"`
}

// ProviderHandler serves provider, health and catalog information.
type ProviderHandler struct {
	registry ProviderRegistry
	catalog  StyleCatalog
	version  string
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(registry ProviderRegistry, catalog StyleCatalog, version string) *ProviderHandler {
	if registry == nil || catalog == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry and catalog cannot be nil for ProviderHandler")
	}
	return &ProviderHandler{registry: registry, catalog: catalog, version: version}
}

// ListProviders handles GET /api/providers requests.
func (h *ProviderHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, ProvidersResponse{
		Success:         true,
		DefaultProvider: h.registry.DefaultName(),
		Providers:       h.registry.Statuses(),
	})
}

// Health handles GET /api/health requests. The service reports healthy even
// when no provider is available; the provider map tells operators which are.
func (h *ProviderHandler) Health(w http.ResponseWriter, r *http.Request) {
	statuses := h.registry.Statuses()
	providers := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		providers[s.Name] = s.Available
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Providers: providers,
		Available: h.registry.ListAvailable(),
	})
}

// ListStyles handles GET /api/styles requests.
func (h *ProviderHandler) ListStyles(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithSuccess(w, r, StylesResponse{
		DefaultStyle: h.catalog.DefaultStyle(),
		Styles:       h.catalog.Styles(),
		Moods:        h.catalog.Moods(),
	})
}

// NotFound responds to unknown routes with a JSON error.
func NotFound(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, "Endpoint not found")
}

// MethodNotAllowed responds to known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
