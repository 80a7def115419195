package config

import (
	"time"

	"github.com/vietddude/scribe/internal/infra/latex"
	"github.com/vietddude/scribe/internal/infra/publish"
	redisclient "github.com/vietddude/scribe/internal/infra/redis"
	"github.com/vietddude/scribe/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	GenAI    GenAIConfig        `yaml:"genai"`
	Latex    latex.Config       `yaml:"latex"`
	Publish  publish.Config     `yaml:"publish"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// GenAIConfig holds settings for the generative-text backend.
type GenAIConfig struct {
	BaseURL string `yaml:"base_url" env:"GENAI_BASE_URL"`

	// DefaultAPIKey is the process-level fallback key, lowest precedence
	// behind the key list and legacy key in the configuration store.
	DefaultAPIKey string `yaml:"default_api_key" env:"GEMINI_API_KEY"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
}
