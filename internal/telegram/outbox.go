package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLen is Telegram's limit for one text message.
const MaxMessageLen = 4096

// defaultSendInterval keeps the bot under Telegram's ~30 messages per minute.
const defaultSendInterval = 2 * time.Second

var (
	ErrQueueFull = errors.New("telegram send queue is full")
	ErrStopped   = errors.New("telegram outbox stopped")
)

// Sender is the part of *tgbotapi.BotAPI the outbox needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type outgoing struct {
	chatID int64
	text   string
}

// Outbox sends queued messages one at a time, at least interval apart.
type Outbox struct {
	sender   Sender
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time

	queue     chan outgoing
	queueDone chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewOutbox starts the sender goroutine. A negative interval uses the default pacing.
func NewOutbox(sender Sender, interval time.Duration, size int) *Outbox {
	if interval < 0 {
		interval = defaultSendInterval
	}
	if size <= 0 {
		size = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &Outbox{
		sender:    sender,
		interval:  interval,
		queue:     make(chan outgoing, size),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go o.run()
	return o
}

// Enqueue queues text for chatID, split into as many messages as needed. It never blocks.
func (o *Outbox) Enqueue(ctx context.Context, chatID int64, text string) error {
	if o.ctx.Err() != nil {
		return ErrStopped
	}
	for _, part := range SplitMessage(text, MaxMessageLen) {
		select {
		case <-o.ctx.Done():
			return ErrStopped
		case <-ctx.Done():
			return ctx.Err()
		case o.queue <- outgoing{chatID: chatID, text: part}:
		default:
			slog.Warn("Telegram queue is full, dropping message", "chat_id", chatID)
			return ErrQueueFull
		}
	}
	return nil
}

// QueueLen returns the number of messages waiting to be sent.
func (o *Outbox) QueueLen() int {
	return len(o.queue)
}

// Stop sends what is already queued and waits for the sender to exit.
func (o *Outbox) Stop() {
	o.cancel()
	<-o.queueDone
}

func (o *Outbox) run() {
	for {
		select {
		case <-o.ctx.Done():
			for {
				select {
				case m := <-o.queue:
					o.send(m, false)
				default:
					close(o.queueDone)
					return
				}
			}
		case m := <-o.queue:
			o.send(m, true)
		}
	}
}

func (o *Outbox) send(m outgoing, wait bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if elapsed := time.Since(o.lastSend); wait && elapsed < o.interval {
		select {
		case <-o.ctx.Done():
		case <-time.After(o.interval - elapsed):
		}
	}

	start := time.Now()
	o.lastSend = start
	msg := tgbotapi.NewMessage(m.chatID, m.text)
	msg.DisableWebPagePreview = true
	if _, err := o.sender.Send(msg); err != nil {
		slog.Error("Telegram send failed", "chat_id", m.chatID, "error", err, "preview", truncate(m.text, 50))
		return
	}
	slog.Debug("Telegram message sent", "chat_id", m.chatID, "duration", time.Since(start), "queue_length", len(o.queue))
}

// SplitMessage cuts text into parts of at most limit characters, preferring line breaks.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var (
		parts []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if n > 0 {
			parts = append(parts, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			n = 0
		}
	}
	for _, ln := range strings.SplitAfter(text, "\n") {
		l := utf8.RuneCountInString(ln)
		if n+l > limit {
			flush()
		}
		for l > limit {
			r := []rune(ln)
			parts = append(parts, string(r[:limit]))
			ln = string(r[limit:])
			l -= limit
		}
		cur.WriteString(ln)
		n += l
	}
	flush()
	return parts
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
