// Package telegram exposes the study service as a Telegram bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dgb173/Masivo/internal/pkg/models"
	"github.com/dgb173/Masivo/internal/pkg/report"
	"github.com/dgb173/Masivo/internal/render"
	"github.com/dgb173/Masivo/internal/study"
)

const helpText = `Match study bot

/study <match id> - coverage study of a match
/matches [n] - next matches with a handicap line
/help - this message

Sending a bare match id also runs a study.`

// maxConcurrentStudies bounds the studies one bot runs at a time.
const maxConcurrentStudies = 2

// Studier runs studies and lists fixtures. *study.Service implements it.
type Studier interface {
	Study(ctx context.Context, matchID string) (*report.MarketReport, error)
	Upcoming(ctx context.Context, limit int) ([]models.UpcomingMatch, error)
}

// Bot answers chat commands. Studies run in the background; replies go through the Outbox.
type Bot struct {
	studier Studier
	outbox  *Outbox
	allowed map[int64]bool
	slots   chan struct{}
}

func NewBot(studier Studier, outbox *Outbox, allowedChatIDs []int64) *Bot {
	b := &Bot{
		studier: studier,
		outbox:  outbox,
		slots:   make(chan struct{}, maxConcurrentStudies),
	}
	if len(allowedChatIDs) > 0 {
		b.allowed = make(map[int64]bool, len(allowedChatIDs))
		for _, id := range allowedChatIDs {
			b.allowed[id] = true
		}
	}
	return b
}

// Run consumes updates until ctx is done.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Message != nil {
				b.HandleMessage(ctx, u.Message)
			}
		}
	}
}

// HandleMessage dispatches one chat message. Long work is started in a goroutine.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if b.allowed != nil && !b.allowed[chatID] {
		b.reply(ctx, chatID, "Access denied.")
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	parts := strings.Fields(text)
	cmd := strings.ToLower(parts[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch {
	case cmd == "/start" || cmd == "/help":
		b.reply(ctx, chatID, helpText)
	case cmd == "/study":
		if len(parts) < 2 {
			b.reply(ctx, chatID, "Usage: /study <match id>")
			return
		}
		b.startStudy(ctx, chatID, parts[1])
	case cmd == "/matches":
		limit := 0
		if len(parts) > 1 {
			if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 && n <= 50 {
				limit = n
			}
		}
		b.background(ctx, chatID, func(ctx context.Context) string {
			ms, err := b.studier.Upcoming(ctx, limit)
			if err != nil {
				slog.Warn("Upcoming matches failed", "chat_id", chatID, "error", err)
				return "Could not load the match list: " + errorText(err)
			}
			return render.Upcoming(ms)
		})
	case study.ValidMatchID(cmd):
		b.startStudy(ctx, chatID, cmd)
	default:
		b.reply(ctx, chatID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) startStudy(ctx context.Context, chatID int64, id string) {
	if !study.ValidMatchID(id) {
		b.reply(ctx, chatID, fmt.Sprintf("%q is not a match id.", id))
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("Studying match %s...", id))
	b.background(ctx, chatID, func(ctx context.Context) string {
		r, err := b.studier.Study(ctx, id)
		if err != nil {
			slog.Warn("Study failed", "chat_id", chatID, "match_id", id, "error", err)
			return fmt.Sprintf("Study of %s failed: %s", id, errorText(err))
		}
		return render.Report(r)
	})
}

// background runs fn with a concurrency slot and replies with its result. When every slot is
// busy the user is told to retry.
func (b *Bot) background(ctx context.Context, chatID int64, fn func(context.Context) string) {
	select {
	case b.slots <- struct{}{}:
	default:
		b.reply(ctx, chatID, "Busy with other studies, try again in a minute.")
		return
	}
	go func() {
		defer func() { <-b.slots }()
		b.reply(ctx, chatID, fn(ctx))
	}()
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.outbox.Enqueue(ctx, chatID, text); err != nil {
		slog.Warn("Telegram reply dropped", "chat_id", chatID, "error", err)
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, study.ErrInvalidMatchID):
		return "invalid match id"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, study.ErrUpstream):
		return "source site unavailable"
	}
	return "internal error"
}
