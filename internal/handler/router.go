package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/code-companion/backend/internal/handler/catalog"
	"github.com/zhouzirui/code-companion/backend/internal/handler/chat"
	"github.com/zhouzirui/code-companion/backend/internal/handler/live"
	"github.com/zhouzirui/code-companion/backend/internal/handler/web"
	middlewarePkg "github.com/zhouzirui/code-companion/backend/internal/middleware"
	"github.com/zhouzirui/code-companion/backend/internal/service/companion"
)

// NewRouter wires HTTP routes to the session manager.
func NewRouter(sessions *companion.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Create handlers
	webHandler := web.New()
	catalogHandler := catalog.New(sessions.Catalog())
	chatHandler := chat.New(sessions)
	liveHandler := live.NewWebSocketHandler(sessions)

	webHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		catalogHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)

		// the page receives every transition over the socket
		liveHandler.RegisterRoutes(api)
	})

	return r
}
