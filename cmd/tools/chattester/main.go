package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/throne-room/backend/internal/config"
	"github.com/zhouzirui/throne-room/backend/internal/logger"
	"github.com/zhouzirui/throne-room/backend/internal/model/persona"
	"github.com/zhouzirui/throne-room/backend/internal/service/ai"
	"github.com/zhouzirui/throne-room/backend/internal/service/chat"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] no .env loaded, using system environment: %v", err)
	}

	personaID := flag.String("persona", "seraphiel", "persona id to talk to")
	timeout := flag.Duration("timeout", 0, "per-request timeout, defaults to CHAT_REQUEST_TIMEOUT")
	logLevel := flag.String("log", "warn", "log level: debug, info, warn, error, none")
	list := flag.Bool("list", false, "list personas and exit")
	flag.Parse()

	store := persona.NewMemoryStore(persona.Seed())
	if *list {
		for _, p := range store.List() {
			fmt.Printf("%-10s %-20s %s\n", p.ID, p.Name, p.Title)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	l, err := logger.New(logger.Options{Level: *logLevel})
	if err != nil {
		log.Fatalf("invalid -log value: %v", err)
	}
	zlog := l.Get()
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	var completer chat.Completer
	if c, err := ai.New(ctx, cfg.AI, zlog.Named("ai")); err != nil {
		log.Printf("[WARN] completion provider unavailable, every reply will be the fallback: %v", err)
	} else {
		completer = c
	}

	requestTimeout := cfg.Chat.RequestTimeout
	if *timeout > 0 {
		requestTimeout = *timeout
	}

	svc := chat.NewService(store, completer, chat.Options{
		Sampling:       cfg.Chat.Sampling(),
		RequestTimeout: requestTimeout,
		Logger:         zlog.Named("session"),
	})
	session, err := svc.CreateSession(ctx, *personaID)
	if err != nil {
		log.Fatalf("failed to open session for %q: %v", *personaID, err)
	}
	defer func() { _ = svc.CloseSession(ctx, session.ID()) }()

	p := session.Persona()
	fmt.Printf("%s, %s\n%s\n\n", p.Name, p.Title, p.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := scanner.Text()
		if strings.TrimSpace(text) == "/quit" {
			break
		}

		started := time.Now()
		if !session.Submit(ctx, text) {
			continue
		}
		transcript := session.Transcript()
		fmt.Printf("%s: %s\n(%s)\n\n", p.Name, transcript[len(transcript)-1].Content, time.Since(started).Round(time.Millisecond))
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read stdin: %v", err)
	}
}
