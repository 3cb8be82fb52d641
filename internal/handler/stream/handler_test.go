package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/model/assistant"
	"github.com/zhouzirui/qabot/internal/model/chat"
	"github.com/zhouzirui/qabot/internal/service/ai/aitest"
	chatservice "github.com/zhouzirui/qabot/internal/service/chat"
)

func setup(t *testing.T, fake *aitest.Fake) (http.Handler, *chatservice.Service, string) {
	t.Helper()
	svc := chatservice.NewService(fake, assistant.NewMemoryStore(assistant.Seed()), config.Default().AI)
	session, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r, svc, session.ID
}

func readEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()
	var events []StreamResponse
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev StreamResponse
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func eventNames(events []StreamResponse) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	return names
}

func TestStreamDeltasAndTranscript(t *testing.T) {
	r, svc, id := setup(t, &aitest.Fake{Deltas: []string{"hi", " there"}})

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id+"?message="+url.QueryEscape("hello"), nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	events := readEvents(t, resp.Body.String())
	assert.Equal(t, []string{"start", "delta", "delta", "message", "end"}, eventNames(events))
	assert.Equal(t, "hi there", events[3].Content)

	transcript, err := svc.Transcript(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []chat.Message{chat.UserMessage("hello"), chat.AssistantMessage("hi there")}, transcript)
}

func TestStreamFailureBecomesMessage(t *testing.T) {
	r, _, id := setup(t, &aitest.Fake{Err: errors.New("network down")})

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id+"?message=hello", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	events := readEvents(t, resp.Body.String())
	require.Equal(t, []string{"start", "message", "end"}, eventNames(events))
	assert.Equal(t, "Error: network down", events[1].Content)
	assert.Equal(t, "network down", events[1].Error)
}

func TestStreamValidation(t *testing.T) {
	r, _, id := setup(t, &aitest.Fake{})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+id, nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/missing?message=hi", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
