// Package config reads gateway settings from the environment, with an
// optional .env file loaded first.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Provider string `env:"MODEL_PROVIDER" envDefault:"gemini"`
	Model    string `env:"MODEL_NAME"` // empty lets the provider pick its own default

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OllamaHost      string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`

	Port           string `env:"PORT" envDefault:"3000"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads .env files (missing files are fine) and then the process environment.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// APIKey returns the credential for the configured provider, or "" for
// providers that take none.
func (c Config) APIKey() string {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "gemini", "google", "":
		return c.GeminiAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic", "claude":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Logger builds the process logger. Call Validate first.
func (c Config) Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
