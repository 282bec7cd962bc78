package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LLM_PROVIDER", "OLLAMA_BASE_URL", "OLLAMA_TIMEOUT", "COMPANION_TEMPERATURE",
		"COMPANION_SKIP_PING", "COMPANION_MODELS_FILE", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderOllama {
		t.Fatalf("unexpected provider: %s", cfg.AI.Provider)
	}
	if cfg.AI.BaseURL != defaultOllamaBaseURL {
		t.Fatalf("unexpected base url: %s", cfg.AI.BaseURL)
	}
	if cfg.AI.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", cfg.AI.Temperature)
	}
	if cfg.AI.Timeout != 0 {
		t.Fatalf("expected no timeout, got %s", cfg.AI.Timeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("OLLAMA_BASE_URL", "https://llm.example.com")
	t.Setenv("OLLAMA_TIMEOUT", "90s")
	t.Setenv("COMPANION_MODELS_FILE", "/etc/companion/models.toml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.AI.BaseURL != "https://llm.example.com" {
		t.Fatalf("unexpected base url: %s", cfg.AI.BaseURL)
	}
	if cfg.AI.Timeout != 90*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.AI.Timeout)
	}
	if cfg.Catalog.ModelsFile != "/etc/companion/models.toml" {
		t.Fatalf("unexpected models file: %s", cfg.Catalog.ModelsFile)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{key: "PORT", value: "80 80"},
		{key: "OLLAMA_BASE_URL", value: "ftp://nowhere"},
		{key: "OLLAMA_TIMEOUT", value: "soon"},
		{key: "COMPANION_TEMPERATURE", value: "hot"},
		{key: "COMPANION_TEMPERATURE", value: "3.5"},
		{key: "LLM_PROVIDER", value: "openai"},
	}

	for _, tc := range cases {
		clearEnv(t)
		t.Setenv(tc.key, tc.value)
		if _, err := Load(); err == nil {
			t.Errorf("%s=%q: expected error", tc.key, tc.value)
		}
	}
}

func TestArkRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "ark")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error without ark credentials")
	}
	if !strings.Contains(err.Error(), "ARK_API_KEY") {
		t.Fatalf("expected error to name the missing variable, got %q", err)
	}

	t.Setenv("ARK_API_KEY", "key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.Provider != ProviderArk {
		t.Fatalf("unexpected provider: %s", cfg.AI.Provider)
	}
}
