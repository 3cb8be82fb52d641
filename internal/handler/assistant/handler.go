package assistant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/qabot/internal/model/assistant"
	"github.com/zhouzirui/qabot/pkg/utils"
)

// Handler serves the assistant profile catalogue.
type Handler struct {
	profiles assistant.Store
}

func New(profiles assistant.Store) *Handler {
	return &Handler{profiles: profiles}
}

// RegisterRoutes mounts the profile routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/assistants", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.profiles.List())
}
