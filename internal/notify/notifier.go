// Package notify delivers confirmed orders to the operator's chat from a
// background worker, so the user-facing flow never waits on Telegram.
package notify

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"asllpay-bot/internal/order"
)

// Transport is the slice of the bot API the notifier needs. Satisfied by
// *tgbotapi.BotAPI.
type Transport interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
}

const (
	queueSize     = 16
	lookupTimeout = 5 * time.Second
)

// Worker owns the notification queue. Enqueue hands a task over and returns
// immediately; delivery failures are logged and swallowed, never surfaced to
// the ordering user.
type Worker struct {
	transport Transport
	adminChat int64
	log       *zap.Logger

	tasks   chan order.Confirmation
	stopped chan struct{}
}

// NewWorker starts the delivery goroutine. adminChat may be zero, in which
// case tasks are consumed but nothing is sent (same as the dispatcher-less
// mode of the original bot).
func NewWorker(t Transport, adminChat int64, log *zap.Logger) *Worker {
	w := &Worker{
		transport: t,
		adminChat: adminChat,
		log:       log,
		tasks:     make(chan order.Confirmation, queueSize),
		stopped:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue submits a confirmation for delivery without blocking. If the queue
// is full the task is dropped with a log line; the notification is
// best-effort signaling, not the transaction of record.
func (w *Worker) Enqueue(c order.Confirmation) {
	select {
	case w.tasks <- c:
	default:
		w.log.Warn("notification queue full, dropping",
			zap.String("service", c.Service),
			zap.Int64("user_id", c.User.ChatID))
	}
}

// Close drains the queue and stops the worker.
func (w *Worker) Close() {
	close(w.tasks)
	<-w.stopped
}

func (w *Worker) run() {
	defer close(w.stopped)
	for c := range w.tasks {
		w.deliver(c)
	}
}

func (w *Worker) deliver(c order.Confirmation) {
	if w.adminChat == 0 {
		return
	}

	user := w.resolve(c.User)
	msg := tgbotapi.NewMessage(w.adminChat, Compose(c, user))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := w.transport.Send(msg); err != nil {
		w.log.Warn("admin notification failed",
			zap.String("service", c.Service),
			zap.Error(err))
		return
	}
	w.log.Info("admin notified",
		zap.String("service", c.Service),
		zap.Int64("user_id", c.User.ChatID))
}

// resolve tries to enrich the identity snapshot through a chat lookup. The
// lookup is bounded and any failure falls back to what was already known.
func (w *Worker) resolve(id order.Identity) order.Identity {
	if id.ChatID == 0 {
		return id
	}

	type result struct {
		chat tgbotapi.Chat
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		chat, err := w.transport.GetChat(tgbotapi.ChatInfoConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: id.ChatID},
		})
		ch <- result{chat, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			w.log.Debug("identity lookup failed", zap.Int64("user_id", id.ChatID), zap.Error(r.err))
			return id
		}
		if name := strings.TrimSpace(r.chat.FirstName + " " + r.chat.LastName); name != "" {
			id.DisplayName = name
		}
		if r.chat.UserName != "" {
			id.Handle = r.chat.UserName
		}
	case <-time.After(lookupTimeout):
		w.log.Debug("identity lookup timed out", zap.Int64("user_id", id.ChatID))
	}
	return id
}

// Compose builds the fixed-shape operator message.
func Compose(c order.Confirmation, user order.Identity) string {
	var b strings.Builder
	b.WriteString("🚨 New order\n\n")
	fmt.Fprintf(&b, "Service: %s\n", c.Service)
	fmt.Fprintf(&b, "Region: %s\n", c.Region)
	fmt.Fprintf(&b, "Amount: %s\n", c.Amount)
	fmt.Fprintf(&b, "Total: %s\n", c.Total)
	if c.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", c.Note)
	}

	name := user.DisplayName
	if name == "" {
		name = "unknown"
	}
	handle := "no handle"
	if user.Handle != "" {
		handle = "@" + user.Handle
	}
	if user.ChatID != 0 {
		fmt.Fprintf(&b, "From: [%s](tg://user?id=%d) (%s)", name, user.ChatID, handle)
	} else {
		fmt.Fprintf(&b, "From: %s (%s)", name, handle)
	}
	return b.String()
}
