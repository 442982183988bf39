package config

// Known provider names. The set is open-ended: adding a provider means adding
// its config block here and its factory in internal/platform/providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderOllama = "ollama"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"       validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// ShutdownTimeoutSeconds bounds graceful shutdown of in-flight requests.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// DefaultProvider is used when a request does not name a provider.
	DefaultProvider string `mapstructure:"default_provider" validate:"required,oneof=gemini openai claude ollama"`

	// TimeoutSeconds bounds a single remote generation call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gt=0,lte=600"`

	Gemini GeminiConfig `mapstructure:"gemini"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Claude ClaudeConfig `mapstructure:"claude"`
	Ollama OllamaConfig `mapstructure:"ollama"`
}

// GeminiConfig configures the Google Gemini backend.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"    validate:"required"`
	BaseURL string `mapstructure:"base_url"`
}

// OpenAIConfig configures the OpenAI chat completions backend.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"       validate:"required"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens"  validate:"gt=0"`
}

// ClaudeConfig configures the Anthropic messages backend.
type ClaudeConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"      validate:"required"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens" validate:"gt=0"`
}

// OllamaConfig configures a self-hosted Ollama backend. An empty Host leaves
// the backend unconfigured.
type OllamaConfig struct {
	Host  string `mapstructure:"host"`
	Model string `mapstructure:"model" validate:"required"`
}

// AuthConfig contains optional bearer-token authentication settings.
// Authentication is disabled when JWTSecret is empty.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=525600"`
}

// Enabled reports whether bearer-token authentication is turned on.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// Tracing exporters.
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
	TracingOTLP   = "otlp"
)

// TelemetryConfig controls Prometheus metrics and OpenTelemetry tracing.
type TelemetryConfig struct {
	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `mapstructure:"metrics_enabled"`

	TracingExporter string  `mapstructure:"tracing_exporter" validate:"oneof=none stdout otlp"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"    validate:"required_if=TracingExporter otlp"`
	OTLPInsecure    bool    `mapstructure:"otlp_insecure"`
	SampleRatio     float64 `mapstructure:"sample_ratio"     validate:"gte=0,lte=1"`
}
