package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FLASHGEN"

// configDirEnv names an extra directory searched for config.yaml.
const configDirEnv = EnvPrefix + "_CONFIG_DIR"

// keys lists every configuration key so each can be bound to its
// environment variable, e.g. llm.gemini_api_key -> FLASHGEN_LLM_GEMINI_API_KEY.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout",
	"session.secret",
	"session.cookie_name",
	"session.max_age",
	"session.secure",
	"session.idle_timeout",
	"session.sweep_interval",
	"llm.provider",
	"llm.gemini_api_key",
	"llm.gemini_base_url",
	"llm.openai_api_key",
	"llm.openai_base_url",
	"llm.model_name",
	"llm.temperature",
	"llm.max_output_tokens",
	"llm.request_timeout",
	"llm.prompt_template_path",
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory or in $FLASHGEN_CONFIG_DIR.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return load("")
}

// LoadFile is Load with an explicit config file instead of the search paths.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path cannot be empty")
	}
	return load(path)
}

func load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if dir := os.Getenv(configDirEnv); dir != "" {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if cfg.LLM.ModelName == "" {
		cfg.LLM.ModelName = defaultModel(cfg.LLM.Provider)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("session.cookie_name", "flashgen_session")
	v.SetDefault("session.max_age", 86400)
	v.SetDefault("session.secure", false)
	v.SetDefault("session.idle_timeout", 2*time.Hour)
	v.SetDefault("session.sweep_interval", 5*time.Minute)

	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_output_tokens", 0)
	v.SetDefault("llm.request_timeout", 60*time.Second)
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return ""
	}
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
