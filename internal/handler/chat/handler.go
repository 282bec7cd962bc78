package chat

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/code-companion/backend/internal/render"
	"github.com/zhouzirui/code-companion/backend/internal/service/ai"
	chatService "github.com/zhouzirui/code-companion/backend/internal/service/chat"
	"github.com/zhouzirui/code-companion/backend/internal/service/companion"
	"github.com/zhouzirui/code-companion/backend/pkg/utils"
)

// Handler exposes sessions over REST.
type Handler struct {
	sessions *companion.Manager
}

// New creates a chat handler.
func New(sessions *companion.Manager) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleEndSession)
		r.Put("/model", h.handleSelectModel)
		r.Post("/messages", h.handleSubmit)
		r.Post("/reset", h.handleReset)
	})
}

// failureResponse carries the failure and the view, which still holds the user turn.
type failureResponse struct {
	Error string      `json:"error"`
	Kind  string      `json:"kind,omitempty"`
	View  render.View `json:"view"`
}

// handleCreateSession opens a session.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Model string `json:"model"`
	}

	// an empty body selects the default model
	if err := utils.DecodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl, err := h.sessions.Open(r.Context(), strings.TrimSpace(payload.Model))
	if err != nil {
		respondControllerError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, render.NewView(ctrl.View(r.Context())))
}

// handleGetSession returns the session view.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, render.NewView(ctrl.View(r.Context())))
}

// handleEndSession ends the session and drops its transcript.
func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.sessions.Close(r.Context(), sessionID); err != nil {
		respondControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSelectModel switches the session model.
func (h *Handler) handleSelectModel(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	var payload struct {
		Model string `json:"model"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := ctrl.SelectModel(r.Context(), strings.TrimSpace(payload.Model))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, render.NewView(view))
}

// handleSubmit runs one submission and waits for the full reply.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := ctrl.Submit(r.Context(), payload.Content)
	if err != nil {
		var aiErr *ai.Error
		if errors.As(err, &aiErr) {
			utils.RespondJSON(w, http.StatusBadGateway, failureResponse{
				Error: aiErr.UserMessage(),
				Kind:  aiErr.Kind.String(),
				View:  render.NewView(view),
			})
			return
		}
		respondControllerError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, render.NewView(view))
}

// handleReset clears the transcript back to the greeting.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	view, err := ctrl.Reset(r.Context())
	if err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, render.NewView(view))
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*companion.Controller, bool) {
	ctrl, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondControllerError(w, err)
		return nil, false
	}
	return ctrl, true
}

// respondControllerError maps controller errors to HTTP status codes.
func respondControllerError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, companion.ErrUnknownModel), errors.Is(err, companion.ErrEmptyInput), errors.Is(err, chatService.ErrModelRequired):
		status = http.StatusBadRequest
	case errors.Is(err, companion.ErrBusy):
		status = http.StatusConflict
	}
	utils.RespondError(w, status, err.Error())
}
