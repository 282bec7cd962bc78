package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/code-companion/backend/internal/model/catalog"
	"github.com/zhouzirui/code-companion/backend/pkg/utils"
)

const (
	Title   = "🧠 DeepSeek Code Companion"
	Caption = "🚀 Your AI Pair Programmer with Debugging Superpowers"
)

// Handler serves the model catalog.
type Handler struct {
	models catalog.Store
}

// New creates a catalog handler.
func New(models catalog.Store) *Handler {
	return &Handler{
		models: models,
	}
}

// RegisterRoutes mounts the catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/models", h.handleListModels)
}

type listResponse struct {
	Title        string                `json:"title"`
	Caption      string                `json:"caption"`
	Default      string                `json:"default"`
	Models       []catalog.ModelOption `json:"models"`
	Capabilities []catalog.Capability  `json:"capabilities"`
}

// handleListModels lists selectable models and page labels.
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, listResponse{
		Title:        Title,
		Caption:      Caption,
		Default:      h.models.Default().ID,
		Models:       h.models.List(),
		Capabilities: catalog.Capabilities(),
	})
}
