// Package config handles configuration loading, parsing, and validation
// from environment variables (FLASHGEN_ prefix) and an optional config.yaml.
// It provides type-safe access to the server, session and LLM settings needed
// by different components while keeping configuration details separate from
// business logic.
package config
