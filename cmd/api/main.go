package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/config"
	"github.com/zhouzirui/throne-room/backend/internal/handler"
	"github.com/zhouzirui/throne-room/backend/internal/logger"
	"github.com/zhouzirui/throne-room/backend/internal/model/persona"
	"github.com/zhouzirui/throne-room/backend/internal/service/ai"
	"github.com/zhouzirui/throne-room/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	l, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		IsProduction: cfg.Log.Production,
		JSON:         cfg.Log.JSON,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zlog := l.Get()
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if envErr != nil {
		zlog.Info("no .env file loaded, continuing with system environment variables only", zap.Error(envErr))
	}

	// Initialize completion provider. Without one every round resolves to the fallback reply.
	var completer chat.Completer
	aiLog := zlog.Named("ai")
	if cfg.AI.Enabled() {
		c, err := ai.New(ctx, cfg.AI, aiLog)
		if err != nil {
			aiLog.Warn("failed to initialize completion provider, continuing without it", zap.Error(err))
		} else {
			completer = c
			aiLog.Info("completion provider ready",
				zap.String("provider", string(cfg.AI.Provider)),
				zap.String("model", cfg.AI.ModelName()),
			)
		}
	} else {
		aiLog.Warn("completion provider credentials missing, replies will fall back",
			zap.String("provider", string(cfg.AI.Provider)))
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	chatService := chat.NewService(personaStore, completer, chat.Options{
		Sampling:       cfg.Chat.Sampling(),
		RequestTimeout: cfg.Chat.RequestTimeout,
		Logger:         zlog.Named("session"),
	})

	router := handler.NewRouter(personaStore, chatService, zlog)

	startServer(ctx, cfg.Server, router, zlog)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, zlog *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zlog.Info("throne room backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
	zlog.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
