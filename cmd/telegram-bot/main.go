package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dgb173/Masivo/internal/app"
	"github.com/dgb173/Masivo/internal/telegram"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	if err := run(); err != nil {
		slog.Error("Telegram bot failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", defaultConfigPath, "Path to the YAML config")
	flag.Parse()

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required: set telegram.bot_token or TELEGRAM_BOT_TOKEN")
	}

	a := app.New(cfg, "telegram-bot")
	defer a.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false
	slog.Info("Authorized on Telegram", "account", api.Self.UserName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outbox := telegram.NewOutbox(api, cfg.Telegram.SendInterval, 100)
	defer outbox.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.Telegram.PollTimeout
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	telegram.NewBot(a.Study, outbox, cfg.Telegram.AllowedChatIDs).Run(ctx, updates)
	slog.Info("Telegram bot stopped")
	return nil
}
