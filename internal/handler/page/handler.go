package page

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/model/assistant"
	"github.com/zhouzirui/qabot/internal/model/chat"
	"github.com/zhouzirui/qabot/internal/render"
	chatService "github.com/zhouzirui/qabot/internal/service/chat"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Handler renders the chat page. The browser's session lives in a cookie.
type Handler struct {
	chatSvc *chatService.Service
	cookie  config.SessionConfig
}

func New(chatSvc *chatService.Service, cookie config.SessionConfig) *Handler {
	if cookie.CookieName == "" {
		cookie.CookieName = config.DefaultCookieName
	}
	return &Handler{chatSvc: chatSvc, cookie: cookie}
}

// RegisterRoutes mounts the page routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/chat", h.handleChat)
	r.Post("/clear", h.handleClear)
	r.Post("/assistant", h.handleAssistant)
}

type messageView struct {
	Role   chat.Role
	HTML   template.HTML
	Failed bool
}

type pageView struct {
	Title       string
	Greeting    string
	AssistantID string
	Assistants  []assistant.Profile
	Messages    []messageView
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	session, err := h.resolveSession(w, r)
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	messages, err := h.chatSvc.Transcript(r.Context(), session.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	profiles := h.chatSvc.Profiles()
	profile, ok := profiles.FindByID(session.AssistantID)
	if !ok {
		profile = profiles.Default()
	}

	view := pageView{
		Title:       "AI Q&A Bot",
		Greeting:    profile.Greeting,
		AssistantID: profile.ID,
		Assistants:  profiles.List(),
		Messages:    make([]messageView, 0, len(messages)),
	}
	for _, msg := range messages {
		view.Messages = append(view.Messages, messageView{
			Role:   msg.Role,
			HTML:   render.Markdown(msg.Content),
			Failed: msg.Role == chat.RoleAssistant && strings.HasPrefix(msg.Content, "Error: "),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexTemplate.Execute(w, view); err != nil {
		log.Error().Err(err).Msg("failed to render page")
	}
}

// handleChat submits the prompt and redirects back to the page. Blank prompts are ignored.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	session, err := h.resolveSession(w, r)
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	prompt := r.PostFormValue("prompt")
	if strings.TrimSpace(prompt) != "" {
		if _, err := h.chatSvc.Submit(r.Context(), session.ID, prompt, nil); err != nil {
			log.Error().Err(err).Str("session", session.ID).Msg("page submit failed")
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	session, err := h.resolveSession(w, r)
	if err == nil {
		err = h.chatSvc.Clear(r.Context(), session.ID)
	}
	if err != nil {
		log.Error().Err(err).Msg("page clear failed")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAssistant starts a fresh session bound to the chosen profile.
func (h *Handler) handleAssistant(w http.ResponseWriter, r *http.Request) {
	assistantID := r.PostFormValue("assistantId")
	session, err := h.chatSvc.CreateSession(r.Context(), assistantID)
	if errors.Is(err, chatService.ErrAssistantNotFound) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	if old, ok := h.sessionID(r); ok {
		_ = h.chatSvc.EndSession(r.Context(), old)
	}
	h.setCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// resolveSession returns the cookie's session, creating one when the cookie
// is missing or points at a session that no longer exists.
func (h *Handler) resolveSession(w http.ResponseWriter, r *http.Request) (chat.Session, error) {
	if id, ok := h.sessionID(r); ok {
		if session, err := h.chatSvc.GetSession(r.Context(), id); err == nil {
			return session, nil
		}
	}

	session, err := h.chatSvc.CreateSession(r.Context(), "")
	if err != nil {
		return chat.Session{}, err
	}
	h.setCookie(w, session.ID)
	return session, nil
}

func (h *Handler) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(h.cookie.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (h *Handler) setCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
