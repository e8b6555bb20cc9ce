package stream

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatService "github.com/zhouzirui/throne-room/backend/internal/service/chat"
	"github.com/zhouzirui/throne-room/backend/pkg/utils"
)

const defaultHeartbeat = 15 * time.Second

// Handler streams session snapshots via Server-Sent Events
type Handler struct {
	chatSvc   *chatService.Service
	log       *zap.Logger
	heartbeat time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{chatSvc: chatSvc, log: log, heartbeat: defaultHeartbeat}
}

// RegisterRoutes mounts the event stream endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/events", h.handleEvents)
}

// handleEvents sends a "snapshot" event on every state change of the
// session, starting with the current state, and a "closed" event once the
// session is discarded.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates, cancel := session.Subscribe()
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	log := h.log.With(zap.String("session", sessionID))
	log.Debug("event stream opened")
	defer log.Debug("event stream closed")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-updates:
			if !open {
				if err := utils.SendSSEEvent(w, flusher, "closed", map[string]string{"sessionId": sessionID}); err != nil {
					log.Debug("write closed event failed", zap.Error(err))
				}
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "snapshot", snap); err != nil {
				log.Debug("client went away", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
