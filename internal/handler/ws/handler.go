package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	chatService "github.com/zhouzirui/qabot/internal/service/chat"
)

// Handler carries conversation turns over a websocket.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

// Inbound frame types.
const (
	TypeMessage = "message"
	TypeClear   = "clear"
)

// Outbound frame types.
const (
	TypeDelta   = "delta"
	TypeReply   = "message"
	TypeCleared = "cleared"
	TypeError   = "error"
)

type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// OutgoingMessage is a server frame.
type OutgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	Failed    bool   `json:"failed,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

const readLimit = 64 << 10

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(readLimit)

	log.Info().Str("session", sessionID).Msg("websocket connected")

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("session", sessionID).Msg("websocket read failed")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.send(conn, OutgoingMessage{Type: TypeError, SessionID: sessionID, Error: "invalid frame"})
			continue
		}

		switch msg.Type {
		case TypeMessage:
			if !h.handleTurn(ctx, conn, sessionID, msg.Content) {
				return
			}
		case TypeClear:
			if err := h.chatSvc.Clear(ctx, sessionID); err != nil {
				h.send(conn, OutgoingMessage{Type: TypeError, SessionID: sessionID, Error: err.Error()})
				return
			}
			h.send(conn, OutgoingMessage{Type: TypeCleared, SessionID: sessionID})
		default:
			h.send(conn, OutgoingMessage{Type: TypeError, SessionID: sessionID, Error: "unknown frame type " + msg.Type})
		}
	}
}

// handleTurn runs one submission and reports whether the connection should stay open.
func (h *Handler) handleTurn(ctx context.Context, conn *websocket.Conn, sessionID, content string) bool {
	var onDelta func(string)
	if h.chatSvc.StreamingEnabled() {
		onDelta = func(delta string) {
			h.send(conn, OutgoingMessage{Type: TypeDelta, SessionID: sessionID, Content: delta})
		}
	}

	result, err := h.chatSvc.Submit(ctx, sessionID, content, onDelta)
	switch {
	case errors.Is(err, chatService.ErrEmptyMessage):
		h.send(conn, OutgoingMessage{Type: TypeError, SessionID: sessionID, Error: err.Error()})
		return true
	case err != nil:
		h.send(conn, OutgoingMessage{Type: TypeError, SessionID: sessionID, Error: err.Error()})
		return false
	}

	reply := OutgoingMessage{
		Type:      TypeReply,
		SessionID: sessionID,
		Content:   result.Reply.Content,
		Failed:    result.Failed(),
	}
	if result.Failure != nil {
		reply.Error = result.Failure.Description()
	}
	h.send(conn, reply)
	return true
}

func (h *Handler) send(conn *websocket.Conn, msg OutgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Str("session", msg.SessionID).Msg("websocket write failed")
	}
}
