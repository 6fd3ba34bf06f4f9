package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/000haoji/deep-student-sub016/mode"
	"github.com/000haoji/deep-student-sub016/observability"
	"github.com/000haoji/deep-student-sub016/session"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Path to session config JSON file (optional)")
		text         = flag.String("text", "Tell me about Go.", "User message to send")
		modeName     = flag.String("mode", mode.PlainName, "Interaction mode (plain or recognition)")
		observerName = flag.String("observer", "stderr", "Named event sink (stderr, slog, noop)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	observability.RegisterObserver("stderr", observability.NewSlogObserver(logger))
	observer, err := observability.GetObserver(*observerName)
	if err != nil {
		log.Fatalf("Failed to resolve observer: %v", err)
	}

	cfg := session.DefaultConfig()
	if *configFile != "" {
		loaded, err := session.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	registry := mode.NewDefaultRegistry(cannedRecognizer{})
	manager := session.NewManager(cfg,
		session.WithModeRegistry(registry),
		session.WithManagerObserver(observer),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := manager.GetOrCreate(ctx, "", session.GetOptions{ModeName: *modeName})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	_, assistantID, err := store.SendMessage(ctx, *text)
	if err != nil {
		log.Fatalf("Send failed: %v", err)
	}

	if err := replayScript(store, assistantID); err != nil {
		log.Fatalf("Stream replay failed: %v", err)
	}

	printTranscript(store)
}

func printTranscript(store *session.Store) {
	fmt.Printf("Session %s (%s)\n", store.ID(), store.Status())
	for _, msg := range store.Messages() {
		fmt.Printf("\n[%s] %s\n", msg.Role, msg.ID)
		for _, b := range store.BlocksFor(msg.ID) {
			switch {
			case b.Error != "":
				fmt.Printf("  %-10s %-8s error: %s\n", b.Type, b.Status, b.Error)
			case b.ToolOutput != nil:
				fmt.Printf("  %-10s %-8s %v\n", b.Type, b.Status, b.ToolOutput)
			default:
				fmt.Printf("  %-10s %-8s %s\n", b.Type, b.Status, b.Content)
			}
		}
	}
}
