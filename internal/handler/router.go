package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/handler/chat"
	"github.com/zhouzirui/throne-room/backend/internal/handler/persona"
	"github.com/zhouzirui/throne-room/backend/internal/handler/stream"
	"github.com/zhouzirui/throne-room/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/throne-room/backend/internal/middleware"
	personaModel "github.com/zhouzirui/throne-room/backend/internal/model/persona"
	chatService "github.com/zhouzirui/throne-room/backend/internal/service/chat"
	"github.com/zhouzirui/throne-room/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, chatSvc *chatService.Service, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": chatSvc.Len(),
		})
	})

	// Create handlers
	personaHandler := persona.New(personas)
	chatHandler := chat.New(chatSvc, log.Named("chat"))
	streamHandler := stream.New(chatSvc, log.Named("sse"))
	wsHandler := ws.New(chatSvc, log.Named("ws"))

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
