package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/handler/assistant"
	"github.com/zhouzirui/qabot/internal/handler/chat"
	"github.com/zhouzirui/qabot/internal/handler/page"
	"github.com/zhouzirui/qabot/internal/handler/stream"
	"github.com/zhouzirui/qabot/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/qabot/internal/middleware"
	chatService "github.com/zhouzirui/qabot/internal/service/chat"
	"github.com/zhouzirui/qabot/pkg/utils"
)

// NewRouter wires HTTP routes to the chat service.
func NewRouter(chatSvc *chatService.Service, sessionCfg config.SessionConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	page.New(chatSvc, sessionCfg).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.CORS)

		assistant.New(chatSvc.Profiles()).RegisterRoutes(api)
		chat.New(chatSvc).RegisterRoutes(api)
		stream.New(chatSvc).RegisterRoutes(api)
		ws.New(chatSvc).RegisterRoutes(api)
	})

	return r
}
