package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every runtime knob. Values come from the environment with
// sensible defaults so the service starts with zero configuration against
// the mock provider set.
type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	SignalTimeout      time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// MaxImageDimension bounds the longer edge of the normalized surface
	MaxImageDimension int
	// Language selects translated labels, OCR hints and description text
	Language string

	// Provider selection: "mock", "ollama" or "rekognition" for the visual
	// signals; text recognition always goes through tesseract unless the
	// rekognition set is active
	Provider string

	TesseractLanguages string
	OllamaHost         string
	OllamaModel        string
	AWSRegion          string

	AzureAccountName string
	AzureAccountKey  string
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		SignalTimeout:      parseDurationOrDefault("SIGNAL_TIMEOUT", 20*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 32*1024*1024), // 32MB
		MaxImageDimension:  int(parseIntOrDefault("MAX_IMAGE_DIMENSION", 800)),
		Language:           getEnvOrDefault("LANGUAGE", "en"),
		Provider:           getEnvOrDefault("VISION_PROVIDER", "mock"),
		TesseractLanguages: getEnvOrDefault("TESSERACT_LANGUAGES", "eng"),
		OllamaHost:         getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:        getEnvOrDefault("OLLAMA_MODEL", "llava"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.MaxImageDimension < 64 {
		return nil, fmt.Errorf("MAX_IMAGE_DIMENSION must be >= 64 (got %d)", cfg.MaxImageDimension)
	}
	if cfg.RequestTimeout <= 0 || cfg.SignalTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, signal=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.SignalTimeout, cfg.ImageFetchTimeout)
	}
	switch cfg.Language {
	case "en", "pl":
	default:
		return nil, fmt.Errorf("unsupported LANGUAGE: %q", cfg.Language)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
