package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load, e.g.
// DIARY_LLM_GEMINI_API_KEY for llm.gemini.api_key.
const EnvPrefix = "DIARY"

// legacyEnv maps configuration keys to the unprefixed variable names used by
// earlier deployments. The prefixed name always takes precedence.
var legacyEnv = map[string]string{
	"server.port":          "PORT",
	"server.log_level":     "LOG_LEVEL",
	"llm.default_provider": "DEFAULT_AI_PROVIDER",
	"llm.gemini.api_key":   "GEMINI_API_KEY",
	"llm.openai.api_key":   "OPENAI_API_KEY",
	"llm.claude.api_key":   "CLAUDE_API_KEY",
	"llm.ollama.host":      "OLLAMA_HOST",
	"auth.jwt_secret":      "JWT_SECRET",
}

// setDefaults registers a default for every key so that AutomaticEnv can
// resolve the matching environment variable.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("llm.default_provider", ProviderGemini)
	v.SetDefault("llm.timeout_seconds", 60)

	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.base_url", "")

	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "gpt-4")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.openai.temperature", 0.7)
	v.SetDefault("llm.openai.max_tokens", 800)

	v.SetDefault("llm.claude.api_key", "")
	v.SetDefault("llm.claude.model", "claude-3-5-sonnet-latest")
	v.SetDefault("llm.claude.base_url", "")
	v.SetDefault("llm.claude.max_tokens", 1024)

	v.SetDefault("llm.ollama.host", "")
	v.SetDefault("llm.ollama.model", "llama3.2")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("telemetry.metrics_enabled", true)
	v.SetDefault("telemetry.tracing_exporter", TracingNone)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence, and validates the result.
//
// When path is empty, Load looks for config.yaml in the working directory and
// silently continues without it. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.LLM.DefaultProvider = strings.ToLower(strings.TrimSpace(cfg.LLM.DefaultProvider))
	cfg.Telemetry.TracingExporter = strings.ToLower(strings.TrimSpace(cfg.Telemetry.TracingExporter))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
