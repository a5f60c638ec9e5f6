package config

import "time"

// Supported LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default model per provider, used when llm.model_name is not set.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Session SessionConfig `mapstructure:"session" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// SessionConfig controls the browser session cookie and the lifetime of
// per-session study state.
type SessionConfig struct {
	// Secret signs the session cookie. When empty the server generates a
	// random key at startup, so sessions end with the process.
	Secret        string        `mapstructure:"secret"         validate:"omitempty,min=32"`
	CookieName    string        `mapstructure:"cookie_name"    validate:"required"`
	MaxAge        int           `mapstructure:"max_age"        validate:"gte=0"`
	Secure        bool          `mapstructure:"secure"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"   validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider      string `mapstructure:"provider"        validate:"required,oneof=gemini openai"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"  validate:"required_if=Provider gemini"`
	GeminiBaseURL string `mapstructure:"gemini_base_url" validate:"omitempty,url"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"  validate:"required_if=Provider openai"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"omitempty,url"`
	ModelName     string `mapstructure:"model_name"      validate:"required"`

	// Temperature and MaxOutputTokens are passed to the provider when set.
	Temperature     float32 `mapstructure:"temperature"       validate:"gte=0,lte=2"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens" validate:"gte=0"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`

	// PromptTemplatePath overrides the built-in prompt template when set.
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
}
