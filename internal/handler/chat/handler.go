package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/model/chat"
	chatService "github.com/zhouzirui/throne-room/backend/internal/service/chat"
	"github.com/zhouzirui/throne-room/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	log     *zap.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		log:     log,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Delete("/sessions/{sessionID}", h.handleCloseSession)
	r.Put("/sessions/{sessionID}/input", h.handleSetInput)
	r.Post("/sessions/{sessionID}/messages", h.handleSubmit)
}

// SubmitResponse is returned by POST /sessions/{id}/messages.
type SubmitResponse struct {
	Accepted bool          `json:"accepted"`
	Session  chat.Snapshot `json:"session"`
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.PersonaID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.log.Info("session created", zap.String("session", session.ID()), zap.String("persona", payload.PersonaID))
	utils.RespondJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, session.Snapshot())
}

// handleCloseSession 对应页面卸载，会话及其订阅者一并丢弃
func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chatSvc.CloseSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	h.log.Info("session closed", zap.String("session", sessionID))
	w.WriteHeader(http.StatusNoContent)
}

// handleSetInput 更新未发送的输入缓冲
func (h *Handler) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	session.SetPendingInput(payload.Text)
	utils.RespondJSON(w, http.StatusOK, session.Snapshot())
}

// handleSubmit 提交一条用户消息。被拒绝的提交不是错误，返回 accepted=false
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text  string `json:"text"`
		Async bool   `json:"async"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if payload.Async {
		// The round outlives this request; observers pick up the reply.
		_, accepted := session.Dispatch(context.WithoutCancel(r.Context()), payload.Text)
		status := http.StatusOK
		if accepted {
			status = http.StatusAccepted
		}
		utils.RespondJSON(w, status, SubmitResponse{Accepted: accepted, Session: session.Snapshot()})
		return
	}

	accepted := session.Submit(r.Context(), payload.Text)
	utils.RespondJSON(w, http.StatusOK, SubmitResponse{Accepted: accepted, Session: session.Snapshot()})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*chatService.Session, bool) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return session, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrPersonaRequired), errors.Is(err, chatService.ErrPersonaNotFound):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
