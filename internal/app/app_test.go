package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/code-companion/backend/internal/config"
	"github.com/zhouzirui/code-companion/backend/internal/service/ai"
)

func TestLoadCatalogDefaultsToSeed(t *testing.T) {
	store, err := LoadCatalog(config.CatalogConfig{})
	require.NoError(t, err)
	assert.Equal(t, "deepseek-r1:1.5b", store.Default().ID)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[models]]\nid = \"qwen2.5-coder:7b\"\n"), 0o600))

	store, err := LoadCatalog(config.CatalogConfig{ModelsFile: path})
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5-coder:7b", store.Default().ID)
}

func TestNewManagerProbesOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"0.9.6"}`))
	}))
	defer srv.Close()

	cfg := &config.Config{AI: config.AIConfig{Provider: config.ProviderOllama, BaseURL: srv.URL, Temperature: 0.3}}
	mgr, err := NewManager(context.Background(), cfg)
	require.NoError(t, err)

	ctrl, err := mgr.Open(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, ctrl.View(context.Background()).Turns, 1)
}

func TestNewManagerUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := &config.Config{AI: config.AIConfig{Provider: config.ProviderOllama, BaseURL: url, Temperature: 0.3}}
	_, err := NewManager(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrConnection)

	cfg.AI.SkipPing = true
	_, err = NewManager(context.Background(), cfg)
	assert.NoError(t, err)
}
