package config

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"
	"github.com/ollama/ollama/api"
)

// Provider names the completion backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderArk    Provider = "ark"
)

const (
	defaultOllamaBaseURL = "http://127.0.0.1:11434"
	defaultTemperature   = 0.3
)

// Config aggregates the service configuration.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Catalog CatalogConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Catalog: CatalogConfig{ModelsFile: strings.TrimSpace(os.Getenv("COMPANION_MODELS_FILE"))},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// CatalogConfig points at an optional TOML model catalog.
type CatalogConfig struct {
	ModelsFile string
}

// loadServerConfig resolves the listen address.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// accept ":8080" or "127.0.0.1:8080" as-is
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the completion backend.
type AIConfig struct {
	Provider    Provider
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
	SkipPing    bool

	// Ark credentials, only read when Provider is ark.
	APIKey    string
	AccessKey string
	SecretKey string
	Region    string
}

// Validate reports configuration that cannot produce a chat model.
func (c AIConfig) Validate() error {
	switch c.Provider {
	case ProviderOllama:
		if c.BaseURL == "" {
			return fmt.Errorf("ollama base url is required")
		}
	case ProviderArk:
		if c.APIKey == "" && (c.AccessKey == "" || c.SecretKey == "") {
			return fmt.Errorf("ark credentials missing: set ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	return nil
}

// NewChatModel builds a chat model for modelID.
func (c AIConfig) NewChatModel(ctx context.Context, modelID string) (model.BaseChatModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if modelID == "" {
		return nil, fmt.Errorf("model id is required")
	}

	temperature := c.Temperature

	if c.Provider == ProviderArk {
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     c.BaseURL,
			Region:      c.Region,
			APIKey:      c.APIKey,
			AccessKey:   c.AccessKey,
			SecretKey:   c.SecretKey,
			Model:       modelID,
			Temperature: &temperature,
		})
	}

	return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
		Model:   modelID,
		Options: &api.Options{Temperature: temperature},
	})
}

// NewOllamaClient returns a raw Ollama API client for health probes.
func (c AIConfig) NewOllamaClient() (*api.Client, error) {
	base, err := parseBaseURL(c.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: c.Timeout}
	return api.NewClient(base, httpClient), nil
}

func loadAIConfig() (AIConfig, error) {
	provider := Provider(strings.ToLower(getEnvOrDefault("LLM_PROVIDER", string(ProviderOllama))))

	timeout, err := parseOptionalDurationEnv("OLLAMA_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}

	temperature, err := parseOptionalFloatEnv("COMPANION_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	temp := float32(defaultTemperature)
	if temperature != nil {
		temp = float32(*temperature)
	}

	skipPing, err := parseBoolEnv("COMPANION_SKIP_PING", false)
	if err != nil {
		return AIConfig{}, err
	}

	cfg := AIConfig{
		Provider:    provider,
		Temperature: temp,
		SkipPing:    skipPing,
	}
	if timeout != nil {
		cfg.Timeout = *timeout
	}

	switch provider {
	case ProviderArk:
		cfg.BaseURL = getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3")
		cfg.Region = getEnvOrDefault("ARK_REGION", "cn-beijing")
		cfg.APIKey = strings.TrimSpace(os.Getenv("ARK_API_KEY"))
		cfg.AccessKey = strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY"))
		cfg.SecretKey = strings.TrimSpace(os.Getenv("ARK_SECRET_KEY"))
	default:
		cfg.BaseURL = getEnvOrDefault("OLLAMA_BASE_URL", defaultOllamaBaseURL)
		if _, err := parseBaseURL(cfg.BaseURL); err != nil {
			return AIConfig{}, err
		}
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if val < 0 {
		return nil, fmt.Errorf("invalid %s value %q: negative duration", key, value)
	}
	return &val, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing host", raw)
	}
	return base, nil
}
