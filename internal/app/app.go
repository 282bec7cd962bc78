package app

import (
	"context"
	"fmt"
	"log"

	"github.com/zhouzirui/code-companion/backend/internal/config"
	"github.com/zhouzirui/code-companion/backend/internal/model/catalog"
	"github.com/zhouzirui/code-companion/backend/internal/service/ai"
	"github.com/zhouzirui/code-companion/backend/internal/service/chat"
	"github.com/zhouzirui/code-companion/backend/internal/service/companion"
)

// LoadCatalog returns the configured model catalog, or the built-in one.
func LoadCatalog(cfg config.CatalogConfig) (*catalog.MemoryStore, error) {
	if cfg.ModelsFile == "" {
		return catalog.NewMemoryStore(catalog.Seed()), nil
	}
	models, err := catalog.LoadFile(cfg.ModelsFile)
	if err != nil {
		return nil, err
	}
	log.Printf("[app] loaded %d models from %s", len(models), cfg.ModelsFile)
	return catalog.NewMemoryStore(models), nil
}

// NewManager builds the session manager shared by both surfaces. The
// completion endpoint must answer a probe unless SkipPing is set.
func NewManager(ctx context.Context, cfg *config.Config) (*companion.Manager, error) {
	models, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load model catalog: %w", err)
	}

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	if cfg.AI.SkipPing {
		log.Println("[app] skipping completion endpoint probe")
	} else if err := aiService.Ping(ctx); err != nil {
		return nil, err
	}

	return companion.NewManager(chat.NewService(), aiService, models), nil
}
