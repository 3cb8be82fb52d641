package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/model/assistant"
	"github.com/zhouzirui/qabot/internal/service/ai/aitest"
	chatservice "github.com/zhouzirui/qabot/internal/service/chat"
)

func newTestRouter() http.Handler {
	svc := chatservice.NewService(&aitest.Fake{Reply: "ok"}, assistant.NewMemoryStore(assistant.Seed()), config.Default().AI)
	return NewRouter(svc, config.Default().Session)
}

func TestHealthz(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestListAssistants(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/assistants", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))

	var profiles []assistant.Profile
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profiles))
	require.NotEmpty(t, profiles)
	assert.Equal(t, assistant.DefaultID, profiles[0].ID)
}

func TestRoutesMounted(t *testing.T) {
	r := newTestRouter()
	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodPost, "/api/sessions", http.StatusCreated},
		{http.MethodGet, "/api/sessions/missing/messages", http.StatusNotFound},
		{http.MethodGet, "/api/stream/missing?message=hi", http.StatusNotFound},
		{http.MethodGet, "/api/ws/missing", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, resp.Code, "%s %s", tc.method, tc.path)
	}
}
