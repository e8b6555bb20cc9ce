package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/throne-room/backend/internal/model/chat"
	"github.com/zhouzirui/throne-room/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/throne-room/backend/internal/service/chat"
)

type stubCompleter struct {
	reply string
	err   error
	gate  chan struct{}
}

func (s *stubCompleter) Complete(ctx context.Context, _ []chat.Message, _ chat.Sampling) (string, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func setupRouter(completer chatservice.Completer) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService(persona.NewMemoryStore(persona.Seed()), completer, chatservice.Options{})
	handler := New(chatSvc, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler, personaID string) chat.Snapshot {
	t.Helper()
	resp := do(r, http.MethodPost, "/sessions", map[string]string{"personaId": personaID})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var snap chat.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestCreateSessionValidPersona(t *testing.T) {
	r, _ := setupRouter(nil)

	snap := createSession(t, r, "seraphiel")

	if snap.SessionID == "" || snap.PersonaID != "seraphiel" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.State != chat.StateIdle || len(snap.Transcript) != 0 {
		t.Fatalf("new session must be idle and empty: %+v", snap)
	}
}

func TestCreateSessionInvalidPersona(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := do(r, http.MethodPost, "/sessions", map[string]string{"personaId": "non-existent"})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionMissingPersonaID(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := do(r, http.MethodPost, "/sessions", map[string]string{})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	r, _ := setupRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{"personaId":`)))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := do(r, http.MethodGet, "/sessions/missing", nil)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSubmitMessageSync(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{reply: "Greetings, seeker."})
	snap := createSession(t, r, "seraphiel")

	resp := do(r, http.MethodPost, "/sessions/"+snap.SessionID+"/messages", map[string]any{"text": "Hello"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var got SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Accepted {
		t.Fatal("expected submission to be accepted")
	}
	want := []chat.Message{chat.UserMessage("Hello"), chat.AssistantMessage("Greetings, seeker.")}
	if len(got.Session.Transcript) != 2 || got.Session.Transcript[0] != want[0] || got.Session.Transcript[1] != want[1] {
		t.Fatalf("unexpected transcript: %+v", got.Session.Transcript)
	}
	if got.Session.Awaiting {
		t.Fatal("session must be idle after a synchronous round")
	}
}

func TestSubmitMessageFailureYieldsFallback(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{err: errors.New("boom")})
	snap := createSession(t, r, "uriel")

	resp := do(r, http.MethodPost, "/sessions/"+snap.SessionID+"/messages", map[string]any{"text": "Hello"})

	var got SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != http.StatusOK || !got.Accepted {
		t.Fatalf("failures are absorbed: status=%d accepted=%v", resp.Code, got.Accepted)
	}
	if got.Session.Transcript[1].Content != chatservice.FallbackReply {
		t.Fatalf("expected fallback reply, got %q", got.Session.Transcript[1].Content)
	}
}

func TestSubmitBlankMessageRejected(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{reply: "unused"})
	snap := createSession(t, r, "azrael")

	resp := do(r, http.MethodPost, "/sessions/"+snap.SessionID+"/messages", map[string]any{"text": "   "})

	var got SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != http.StatusOK || got.Accepted {
		t.Fatalf("expected 200 with accepted=false, got %d accepted=%v", resp.Code, got.Accepted)
	}
	if len(got.Session.Transcript) != 0 {
		t.Fatalf("rejected submission must not touch the transcript")
	}
}

func TestSubmitMessageAsync(t *testing.T) {
	completer := &stubCompleter{reply: "In due time.", gate: make(chan struct{})}
	r, chatSvc := setupRouter(completer)
	snap := createSession(t, r, "devil")

	resp := do(r, http.MethodPost, "/sessions/"+snap.SessionID+"/messages", map[string]any{"text": "A", "async": true})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
	var got SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Session.Awaiting || len(got.Session.Transcript) != 1 {
		t.Fatalf("expected echoed message while awaiting: %+v", got.Session)
	}

	// A second submission while awaiting is dropped.
	resp = do(r, http.MethodPost, "/sessions/"+snap.SessionID+"/messages", map[string]any{"text": "B", "async": true})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for dropped submission, got %d", resp.Code)
	}

	session, err := chatSvc.GetSession(context.Background(), snap.SessionID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	updates, cancel := session.Subscribe()
	defer cancel()
	close(completer.gate)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-updates:
			if !s.Awaiting && len(s.Transcript) == 2 {
				if s.Transcript[0].Content != "A" || s.Transcript[1].Content != "In due time." {
					t.Fatalf("unexpected transcript: %+v", s.Transcript)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for the reply")
		}
	}
}

func TestSetPendingInput(t *testing.T) {
	r, _ := setupRouter(nil)
	snap := createSession(t, r, "nexus")

	resp := do(r, http.MethodPut, "/sessions/"+snap.SessionID+"/input", map[string]string{"text": "draft"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got chat.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PendingInput != "draft" {
		t.Fatalf("expected pending input to be stored, got %q", got.PendingInput)
	}
}

func TestCloseSession(t *testing.T) {
	r, _ := setupRouter(nil)
	snap := createSession(t, r, "atlas")

	if resp := do(r, http.MethodDelete, "/sessions/"+snap.SessionID, nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp := do(r, http.MethodGet, "/sessions/"+snap.SessionID, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", resp.Code)
	}
	if resp := do(r, http.MethodDelete, "/sessions/"+snap.SessionID, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second close, got %d", resp.Code)
	}
}
