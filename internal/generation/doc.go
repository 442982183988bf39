// Package generation provides the provider abstraction for AI text generation.
//
// A Backend wraps one remote text-generation service (Gemini, OpenAI, Claude,
// Ollama) behind a uniform capability contract. The Registry owns one shared
// Backend per logical provider name, resolves names case-insensitively and
// gates every use on availability. The Dispatcher runs a single request
// through validation, resolution and generation, returning either a complete
// Result or an error classified into one of the failure kinds in errors.go.
//
// Adapters live under internal/platform and are wired into a Registry through
// Factory values, so new providers can be added without touching callers.
package generation
