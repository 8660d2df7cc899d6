package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skillsenselab/tina-api/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "no-such.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.Header != "access_token" {
		t.Errorf("expected default auth header, got %q", cfg.Auth.Header)
	}
	if cfg.Auth.Key == "" {
		t.Error("expected a default (placeholder) API key")
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Speech.Language != "nl-NL" {
		t.Errorf("expected default language nl-NL, got %q", cfg.Speech.Language)
	}
	if cfg.TempDir == "" {
		t.Error("expected a default temp dir")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("API_KEY", "uit-de-omgeving")
	t.Setenv("API_KEY_NAME", "x-api-key")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("AZURE_SPEECH_KEY", "speech-key")
	t.Setenv("AZURE_SPEECH_REGION", "westeurope")
	t.Setenv("SPEECH_LANGUAGE", "en-US")
	t.Setenv("SPEECH_SESSION_TIMEOUT", "45s")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini")
	t.Setenv("AZURE_OPENAI_TIMEOUT", "90s")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "no-such.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.Key != "uit-de-omgeving" {
		t.Errorf("expected env API key, got %q", cfg.Auth.Key)
	}
	if cfg.Auth.Header != "x-api-key" {
		t.Errorf("expected env header name, got %q", cfg.Auth.Header)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Speech.Key != "speech-key" || cfg.Speech.Region != "westeurope" {
		t.Errorf("unexpected speech config: %+v", cfg.Speech)
	}
	if cfg.Speech.Language != "en-US" {
		t.Errorf("expected language override, got %q", cfg.Speech.Language)
	}
	if cfg.OpenAI.Deployment != "gpt-4o-mini" {
		t.Errorf("expected deployment override, got %q", cfg.OpenAI.Deployment)
	}
	if cfg.Speech.SessionTimeout != 45*time.Second {
		t.Errorf("expected session timeout 45s, got %v", cfg.Speech.SessionTimeout)
	}
	if cfg.OpenAI.Timeout != 90*time.Second {
		t.Errorf("expected completion timeout 90s, got %v", cfg.OpenAI.Timeout)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	// Make sure the process environment doesn't shadow the file.
	os.Unsetenv("API_KEY")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "API_KEY=uit-het-bestand\nAZURE_SPEECH_REGION=northeurope\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("API_KEY")
		os.Unsetenv("AZURE_SPEECH_REGION")
	})

	cfg, err := config.Load(envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.Key != "uit-het-bestand" {
		t.Errorf("expected key from .env file, got %q", cfg.Auth.Key)
	}
	if cfg.Speech.Region != "northeurope" {
		t.Errorf("expected region from .env file, got %q", cfg.Speech.Region)
	}
}
