// Package config handles configuration loading, parsing, and validation
// from various sources (defaults, an optional YAML file, environment
// variables). It provides type-safe access to the settings needed by the
// HTTP server, the generation backends and authentication, and is the only
// place that reads the process environment: provider credentials are handed
// to adapters explicitly through these structs.
package config
