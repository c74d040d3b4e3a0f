package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default request timeout 30s, got %v", cfg.RequestTimeout)
	}
	if cfg.SignalTimeout != 20*time.Second {
		t.Errorf("Expected default signal timeout 20s, got %v", cfg.SignalTimeout)
	}
	if cfg.MaxImageDimension != 800 {
		t.Errorf("Expected default max dimension 800, got %d", cfg.MaxImageDimension)
	}
	if cfg.Language != "en" {
		t.Errorf("Expected default language en, got %s", cfg.Language)
	}
	if cfg.Provider != "mock" {
		t.Errorf("Expected default provider mock, got %s", cfg.Provider)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LANGUAGE", "pl")
	t.Setenv("VISION_PROVIDER", "ollama")
	t.Setenv("SIGNAL_TIMEOUT", "5s")
	t.Setenv("MAX_IMAGE_DIMENSION", "1024")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.Language != "pl" {
		t.Errorf("Expected language pl, got %s", cfg.Language)
	}
	if cfg.Provider != "ollama" {
		t.Errorf("Expected provider ollama, got %s", cfg.Provider)
	}
	if cfg.SignalTimeout != 5*time.Second {
		t.Errorf("Expected signal timeout 5s, got %v", cfg.SignalTimeout)
	}
	if cfg.MaxImageDimension != 1024 {
		t.Errorf("Expected max dimension 1024, got %d", cfg.MaxImageDimension)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Invalid port", "PORT", "not-a-port"},
		{"Port out of range", "PORT", "70000"},
		{"Dimension too small", "MAX_IMAGE_DIMENSION", "10"},
		{"Unsupported language", "LANGUAGE", "de"},
		{"Negative body size", "MAX_REQUEST_BODY_SIZE", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_MalformedDurationFallsBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected fallback to default, got error %v", err)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default request timeout, got %v", cfg.RequestTimeout)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: "9000"}
	if got := cfg.ServerAddress(); got != "127.0.0.1:9000" {
		t.Errorf("Expected 127.0.0.1:9000, got %s", got)
	}
}
