package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhouzirui/throne-room/backend/internal/model/persona"
	chatService "github.com/zhouzirui/throne-room/backend/internal/service/chat"
)

func newTestRouter() http.Handler {
	store := persona.NewMemoryStore(persona.Seed())
	return NewRouter(store, chatService.NewService(store, nil, chatService.Options{}), nil)
}

func TestHealthz(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestRouterMountsAPI(t *testing.T) {
	r := newTestRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/personas", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("GET /api/personas: expected 200, got %d", resp.Code)
	}

	body, _ := json.Marshal(map[string]string{"personaId": "cipher"})
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("POST /api/sessions: expected 201, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS headers on API responses")
	}
}

func TestRouterNilCompleterStillAnswers(t *testing.T) {
	r := newTestRouter()

	body, _ := json.Marshal(map[string]string{"personaId": "prism"})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(body)))

	var snap struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}

	body, _ = json.Marshal(map[string]string{"text": "Hello"})
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/sessions/"+snap.SessionID+"/messages", bytes.NewReader(body)))

	var got struct {
		Accepted bool `json:"accepted"`
		Session  struct {
			Transcript []struct {
				Content string `json:"content"`
			} `json:"transcript"`
		} `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Accepted || len(got.Session.Transcript) != 2 || got.Session.Transcript[1].Content != chatService.FallbackReply {
		t.Fatalf("unexpected response: %+v", got)
	}
}
