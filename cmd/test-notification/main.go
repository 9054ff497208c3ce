package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/config"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/external/lark"
)

// Isolated check that the configured Lark app can post into the notification chat.
// Usage: ./bin/test-notification [-config path] [-text "message"]

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	text := flag.String("text", "", "send this text instead of a sample workflow event")
	flag.Parse()

	fmt.Println("=== Lark Notification Test ===")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Lark.AppID == "" || cfg.Lark.AppSecret == "" || cfg.Lark.ChatID == "" {
		log.Fatal("lark.app_id, lark.app_secret and lark.chat_id must be set")
	}

	fmt.Printf("App ID: %s\n", mask(cfg.Lark.AppID))
	fmt.Printf("Chat ID: %s\n", cfg.Lark.ChatID)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	sdk := lark.NewSDKClient(lark.Config{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
		ChatID:    cfg.Lark.ChatID,
	}, logger)
	messenger := lark.NewMessenger(sdk, logger)

	message := *text
	if message == "" {
		message = lark.FormatEvent(sampleEvent())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("\nSending: %s\n", message)
	if err := messenger.Notify(ctx, message); err != nil {
		log.Fatalf("✗ Failed to send message: %v", err)
	}
	fmt.Println("✓ Message sent")
}

func sampleEvent() *event.Event {
	return event.NewEvent(event.TypeRequisitionSubmitted, "test-requisition", "test-org", map[string]interface{}{
		"transaction_id": "PR-TEST-0001",
		"currency":       "ZAR",
		"total_amount":   "1250.00",
		"status":         "PENDING_HOD_APPROVAL",
	})
}

func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
