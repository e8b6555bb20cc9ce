package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/throne-room/backend/internal/model/chat"
	"github.com/zhouzirui/throne-room/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/throne-room/backend/internal/service/chat"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, messages []chat.Message, _ chat.Sampling) (string, error) {
	return "echo: " + messages[len(messages)-1].Content, nil
}

type sseEvent struct {
	name string
	data string
}

func setupServer(t *testing.T) (*httptest.Server, *chatservice.Service) {
	t.Helper()
	chatSvc := chatservice.NewService(persona.NewMemoryStore(persona.Seed()), echoCompleter{}, chatservice.Options{})
	r := chi.NewRouter()
	New(chatSvc, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, chatSvc
}

// readEvents parses SSE frames from body until it ends.
func readEvents(body *bufio.Scanner, out chan<- sseEvent) {
	defer close(out)
	var ev sseEvent
	for body.Scan() {
		line := body.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "" && ev.name != "":
			out <- ev
			ev = sseEvent{}
		}
	}
}

func nextEvent(t *testing.T, events <-chan sseEvent) sseEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("stream ended unexpectedly")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return sseEvent{}
}

func decodeSnapshot(t *testing.T, ev sseEvent) chat.Snapshot {
	t.Helper()
	if ev.name != "snapshot" {
		t.Fatalf("expected snapshot event, got %q", ev.name)
	}
	var snap chat.Snapshot
	if err := json.Unmarshal([]byte(ev.data), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestEventsStreamFollowsSession(t *testing.T) {
	srv, chatSvc := setupServer(t)
	ctx := context.Background()
	session, err := chatSvc.CreateSession(ctx, "seraphiel")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	resp, err := http.Get(srv.URL + "/sessions/" + session.ID() + "/events")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	events := make(chan sseEvent, 8)
	go readEvents(bufio.NewScanner(resp.Body), events)

	initial := decodeSnapshot(t, nextEvent(t, events))
	if initial.SessionID != session.ID() || initial.State != chat.StateIdle {
		t.Fatalf("unexpected initial snapshot: %+v", initial)
	}

	if !session.Submit(ctx, "Hello") {
		t.Fatal("submission rejected")
	}

	// Intermediate snapshots may be coalesced; the last one must be the settled round.
	var last chat.Snapshot
	for len(last.Transcript) != 2 || last.Awaiting {
		last = decodeSnapshot(t, nextEvent(t, events))
	}
	if last.Transcript[1].Content != "echo: Hello" {
		t.Fatalf("unexpected reply: %+v", last.Transcript)
	}

	if err := chatSvc.CloseSession(ctx, session.ID()); err != nil {
		t.Fatalf("CloseSession err: %v", err)
	}
	if ev := nextEvent(t, events); ev.name != "closed" {
		t.Fatalf("expected closed event, got %q", ev.name)
	}
}

func TestEventsUnknownSession(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/sessions/missing/events")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
