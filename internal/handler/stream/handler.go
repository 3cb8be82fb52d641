package stream

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	chatService "github.com/zhouzirui/qabot/internal/service/chat"
	"github.com/zhouzirui/qabot/pkg/utils"
)

// Handler streams a conversation turn as Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the stream route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// StreamResponse is one SSE data chunk.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleStream emits start, delta*, message and end. A failed downstream call
// still produces a message event carrying the error text.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")

	if strings.TrimSpace(userMessage) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "start", SessionID: sessionID})

	var onDelta func(string)
	if h.chatSvc.StreamingEnabled() {
		onDelta = func(delta string) {
			utils.SendSSEChunk(w, flusher, StreamResponse{
				Event:     "delta",
				SessionID: sessionID,
				Content:   delta,
			})
		}
	}

	result, err := h.chatSvc.Submit(r.Context(), sessionID, userMessage, onDelta)
	if err != nil {
		// The session may have been ended between the lookup and the submit.
		if !errors.Is(err, chatService.ErrSessionNotFound) {
			log.Error().Err(err).Str("session", sessionID).Msg("stream turn failed")
		}
		utils.SendSSEChunk(w, flusher, StreamResponse{Event: "error", SessionID: sessionID, Error: err.Error()})
		return
	}

	final := StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   result.Reply.Content,
	}
	if result.Failure != nil {
		final.Error = result.Failure.Description()
	}
	utils.SendSSEChunk(w, flusher, final)

	utils.SendSSEChunk(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Debug().Str("session", sessionID).Bool("failed", result.Failed()).Msg("stream completed")
}
