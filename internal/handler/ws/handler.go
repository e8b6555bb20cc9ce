package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/model/chat"
	chatService "github.com/zhouzirui/throne-room/backend/internal/service/chat"
	"github.com/zhouzirui/throne-room/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Handler WebSocket会话处理器
type Handler struct {
	chatSvc  *chatService.Service
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(chatSvc *chatService.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/ws", h.handleWebSocket)
}

// Inbound message types.
const (
	TypeSubmit = "submit"
	TypeInput  = "input"
)

// Outbound message types.
const (
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// conn serialises writes; gorilla allows one concurrent writer only.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("session", sessionID), zap.Error(err))
		return
	}
	defer wsConn.Close()

	log := h.log.With(zap.String("session", sessionID))
	log.Info("websocket connected")
	defer log.Info("websocket disconnected")

	c := &conn{ws: wsConn}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.forwardSnapshots(ctx, cancel, c, updates, log)
	}()
	go func() {
		defer wg.Done()
		h.pingLoop(ctx, c)
	}()

	_ = wsConn.SetReadDeadline(time.Now().Add(readTimeout))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	h.readLoop(ctx, c, session, log)
	cancel()
	wg.Wait()
}

func (h *Handler) readLoop(ctx context.Context, c *conn, session *chatService.Session, log *zap.Logger) {
	for {
		var msg inboundMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case TypeSubmit:
			// Rejected submissions are silent; the snapshot stream shows the outcome.
			// The round runs detached so a disconnect never strands the in-flight flag.
			session.Dispatch(context.WithoutCancel(ctx), msg.Text)
		case TypeInput:
			session.SetPendingInput(msg.Text)
		default:
			h.sendError(c, log, "unsupported message type: "+msg.Type)
		}
	}
}

// forwardSnapshots pushes every published snapshot to the client. When the
// session is closed the socket is closed too.
func (h *Handler) forwardSnapshots(ctx context.Context, cancel context.CancelFunc, c *conn, updates <-chan chat.Snapshot, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-updates:
			if !open {
				c.mu.Lock()
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(writeTimeout))
				c.mu.Unlock()
				cancel()
				_ = c.ws.Close()
				return
			}
			if err := c.writeJSON(outgoingMessage{Type: TypeSnapshot, Data: snap}); err != nil {
				log.Debug("write snapshot failed", zap.Error(err))
				cancel()
				_ = c.ws.Close()
				return
			}
		}
	}
}

func (h *Handler) sendError(c *conn, log *zap.Logger, message string) {
	if err := c.writeJSON(outgoingMessage{Type: TypeError, Data: map[string]string{"message": message}}); err != nil {
		log.Debug("write error failed", zap.Error(err))
	}
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
