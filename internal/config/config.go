// Package config loads service configuration from environment variables and
// an optional .env file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/skillsenselab/tina-api/internal/llm/azureopenai"
	"github.com/skillsenselab/tina-api/internal/observability"
	"github.com/skillsenselab/tina-api/internal/server"
	"github.com/skillsenselab/tina-api/internal/transcribe/azurespeech"
	"github.com/skillsenselab/tina-api/pkg/logger"
	"github.com/skillsenselab/tina-api/pkg/validation"
)

// AuthConfig holds the shared-secret API key settings.
type AuthConfig struct {
	// Key is the expected secret value.
	Key string `mapstructure:"key" validate:"required"`
	// Header is the request header carrying the key.
	Header string `mapstructure:"header" validate:"required"`
}

// Config is the root service configuration.
type Config struct {
	Auth          AuthConfig           `mapstructure:"auth"`
	Server        server.Config        `mapstructure:"server"`
	Logger        logger.Config        `mapstructure:"logger"`
	Speech        azurespeech.Config   `mapstructure:"speech"`
	OpenAI        azureopenai.Config   `mapstructure:"openai"`
	Observability observability.Config `mapstructure:"observability"`
	// TempDir is where uploads are written. Defaults to the OS temp dir.
	TempDir string `mapstructure:"temp_dir"`
}

// envBindings maps viper keys to the environment variables the deployment
// scripts set. The names match the original deployment's .env layout.
var envBindings = map[string]string{
	"auth.key":               "API_KEY",
	"auth.header":            "API_KEY_NAME",
	"server.host":            "SERVER_HOST",
	"server.port":            "SERVER_PORT",
	"server.max_body_size":   "MAX_BODY_SIZE",
	"logger.level":           "LOG_LEVEL",
	"logger.format":          "LOG_FORMAT",
	"speech.key":             "AZURE_SPEECH_KEY",
	"speech.region":          "AZURE_SPEECH_REGION",
	"speech.language":        "SPEECH_LANGUAGE",
	"speech.session_timeout": "SPEECH_SESSION_TIMEOUT",
	"speech.http_timeout":    "SPEECH_HTTP_TIMEOUT",
	"openai.endpoint":        "AZURE_OPENAI_ENDPOINT",
	"openai.api_key":         "AZURE_OPENAI_KEY",
	"openai.deployment":      "AZURE_OPENAI_DEPLOYMENT",
	"openai.api_version":     "AZURE_OPENAI_API_VERSION",
	"openai.timeout":         "AZURE_OPENAI_TIMEOUT",
	"observability.enabled":  "OTEL_ENABLED",
	"observability.endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
	"temp_dir":               "TEMP_DIR",
}

// Load reads configuration from the process environment, after loading the
// .env file at envFile when it exists. Pass an empty envFile to use "./.env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	applyDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Server.ApplyDefaults()
	cfg.Logger.ApplyDefaults()
	cfg.Observability.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults seeds viper with the same fallback values the original
// deployment used, placeholders included, so the service starts (degraded)
// without any environment at all.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("auth.key", "JOUW_VEILIGE_API_SLEUTEL")
	v.SetDefault("auth.header", "access_token")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("speech.language", "nl-NL")
	v.SetDefault("temp_dir", os.TempDir())
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(&c.Auth); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return nil
}
