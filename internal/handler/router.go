package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lingochain/lingochain/internal/handler/chat"
	"github.com/lingochain/lingochain/internal/handler/stream"
	middlewarePkg "github.com/lingochain/lingochain/internal/middleware"
	aiService "github.com/lingochain/lingochain/internal/service/ai"
	"github.com/lingochain/lingochain/pkg/utils"
)

// NewRouter wires HTTP routes to the upstream relay. An empty staticDir
// disables file serving.
func NewRouter(upstream aiService.Upstream, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		chat.New(upstream).RegisterRoutes(api)
		stream.New(upstream).RegisterRoutes(api)
	})

	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	return r
}
