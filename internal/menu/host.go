// Package menu is the screen host: it owns the Telegram update loop, the
// navigable service menus, and the per-chat order sessions it dispatches
// button presses into.
package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"asllpay-bot/internal/config"
	"asllpay-bot/internal/order"
	"asllpay-bot/internal/pricing"
	"asllpay-bot/internal/rates"
)

// Navigation callback tags. Order-session tags (ord:*) live in the order
// package next to the transitions they dispatch.
const (
	cbHome        = "menu:home"
	cbGroupPrefix = "menu:group:"
	cbSvcPrefix   = "menu:svc:"
	cbInfoPrefix  = "menu:info:"
	cbOrderPrefix = "menu:order:"
	cbGuide       = "menu:guide"
	cbSupport     = "menu:support"
)

const rateTimeout = 5 * time.Second

// Host drives one bot account. Updates are handled one at a time, so the
// session map and the sessions themselves need no locking.
type Host struct {
	bot      *tgbotapi.BotAPI
	cfg      config.Config
	table    pricing.Table
	notifier order.Notifier
	orders   *order.Log
	rates    *rates.Client
	log      *zap.Logger

	groups   []Group
	sessions map[int64]*activeOrder
}

// activeOrder ties a session to the message it renders into.
type activeOrder struct {
	session   *order.Session
	messageID int
}

func NewHost(
	bot *tgbotapi.BotAPI,
	cfg config.Config,
	table pricing.Table,
	notifier order.Notifier,
	orders *order.Log,
	ratesClient *rates.Client,
	log *zap.Logger,
) *Host {
	return &Host{
		bot:      bot,
		cfg:      cfg,
		table:    table,
		notifier: notifier,
		orders:   orders,
		rates:    ratesClient,
		log:      log,
		groups:   Catalog(),
		sessions: make(map[int64]*activeOrder),
	}
}

// Run consumes the long-poll update stream until the channel closes.
func (h *Host) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range h.bot.GetUpdatesChan(u) {
		switch {
		case update.CallbackQuery != nil:
			h.handleCallback(update.CallbackQuery)
		case update.Message != nil:
			h.handleMessage(update.Message)
		}
	}
}

func (h *Host) handleMessage(m *tgbotapi.Message) {
	chatID := m.Chat.ID

	switch m.Text {
	case "/start":
		delete(h.sessions, chatID)
		text, markup := h.homeScreen()
		h.sendWithMarkup(chatID, text, markup)
	case "/orders":
		h.sendOrderList(chatID)
	default:
		if ao, ok := h.sessions[chatID]; ok && ao.session.AwaitingText() {
			reply := ao.session.HandleText(m.Text)
			h.sendText(chatID, reply)
			h.rerender(chatID, ao)
			return
		}
		text, markup := h.homeScreen()
		h.sendWithMarkup(chatID, text, markup)
	}
}

func (h *Host) handleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		h.answer(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID
	data := cq.Data

	var ack string
	switch {
	case data == cbHome:
		// Navigating away destroys the chat's order session.
		delete(h.sessions, chatID)
		text, markup := h.homeScreen()
		h.edit(chatID, msgID, text, &markup)

	case strings.HasPrefix(data, cbGroupPrefix):
		if g, ok := h.findGroup(strings.TrimPrefix(data, cbGroupPrefix)); ok {
			text, markup := h.groupScreen(g)
			h.edit(chatID, msgID, text, &markup)
		}

	case strings.HasPrefix(data, cbSvcPrefix):
		if g, svc, ok := h.findService(strings.TrimPrefix(data, cbSvcPrefix)); ok {
			text, markup := h.detailScreen(g, svc)
			h.edit(chatID, msgID, text, &markup)
		}

	case strings.HasPrefix(data, cbInfoPrefix):
		h.sendText(chatID, Details(h.cfg.ResourcesDir, strings.TrimPrefix(data, cbInfoPrefix)))

	case data == cbGuide:
		ack = "Pick a service → place the order → send proof of payment."

	case data == cbSupport:
		ack = "For urgent help contact @AsllPayAdmin."

	case strings.HasPrefix(data, cbOrderPrefix):
		ack = h.openOrder(chatID, msgID, strings.TrimPrefix(data, cbOrderPrefix))

	case strings.HasPrefix(data, "ord:"):
		ao, ok := h.sessions[chatID]
		if !ok {
			ack = "This order screen is no longer active."
			break
		}
		ack = ao.session.HandleAction(data, identityFrom(cq.From))
		h.rerender(chatID, ao)
	}

	h.answer(cq.ID, ack)
}

// openOrder creates a fresh session for the service and takes over the
// screen. Any previous order session in this chat is recycled.
func (h *Host) openOrder(chatID int64, msgID int, key string) string {
	_, svc, ok := h.findService(key)
	if !ok {
		return "Unknown service."
	}
	svc.Extra = Description(h.cfg.ResourcesDir, svc.Key)

	ao := &activeOrder{
		session:   order.NewSession(svc, h.table, h.cfg.DestAccount, h.notifier),
		messageID: msgID,
	}
	h.sessions[chatID] = ao
	h.rerender(chatID, ao)
	h.log.Info("order screen opened",
		zap.Int64("chat_id", chatID),
		zap.String("service", svc.Key))
	return "Order started."
}

func (h *Host) rerender(chatID int64, ao *activeOrder) {
	body, buttons := ao.session.Render()
	if len(buttons) == 0 {
		h.edit(chatID, ao.messageID, body, nil)
		return
	}
	markup := buildMarkup(buttons)
	h.edit(chatID, ao.messageID, body, &markup)
}

// --- screens ---

func (h *Host) homeScreen() (string, tgbotapi.InlineKeyboardMarkup) {
	text := "🌍💳 Asll Pay 💳🌍\n\nWelcome! Choose a service from the menu below."

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, g := range h.groups {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(g.Title, cbGroupPrefix+g.Key),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📚 How to buy", cbGuide),
		tgbotapi.NewInlineKeyboardButtonData("👤 Support", cbSupport),
	))
	return text, tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Host) groupScreen(g Group) (string, tgbotapi.InlineKeyboardMarkup) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range g.Services {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(svc.Title, cbSvcPrefix+svc.Key),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Home", cbHome),
	))
	return g.Blurb, tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Host) detailScreen(g Group, svc order.Service) (string, tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n%s", svc.Title, Description(h.cfg.ResourcesDir, svc.Key))

	if svc.Key == "fx_to_rial" {
		b.WriteString("\n\n" + h.usdLine())
	}
	b.WriteString("\n\nPress \"🛒 Order\" to start.")

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Order", cbOrderPrefix+svc.Key),
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Details", cbInfoPrefix+svc.Key),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", cbGroupPrefix+g.Key),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Home", cbHome),
		),
	)
	return b.String(), markup
}

// usdLine formats today's USD rate for the FX conversion screen; feed
// trouble degrades to a placeholder line.
func (h *Host) usdLine() string {
	if h.rates == nil {
		return "_Rate temporarily unavailable._"
	}
	ctx, cancel := context.WithTimeout(context.Background(), rateTimeout)
	defer cancel()

	rate, err := h.rates.USD(ctx)
	if err != nil {
		h.log.Warn("usd rate unavailable", zap.Error(err))
		return "_Rate temporarily unavailable._"
	}
	return fmt.Sprintf("Today's USD: %.0f %s (%s %s)", rate.Price, rate.Unit, rate.Date, rate.Time)
}

func (h *Host) sendOrderList(chatID int64) {
	if h.cfg.AdminChatID == 0 || chatID != h.cfg.AdminChatID {
		h.sendText(chatID, "The order list is only available to the operator.")
		return
	}

	recs := h.orders.Records()
	if len(recs) == 0 {
		h.sendText(chatID, "No confirmed orders yet.")
		return
	}
	if len(recs) > 10 {
		recs = recs[len(recs)-10:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d confirmed orders:\n", len(recs))
	for _, r := range recs {
		fmt.Fprintf(&b, "\n%s — %s, %s (%s)", r.CreatedAt.Format("02.01 15:04"), r.Service, r.Total, r.ID[:8])
	}
	h.sendText(chatID, b.String())
}

// --- transport helpers ---

func (h *Host) sendText(chatID int64, text string) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		h.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Host) sendWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := h.bot.Send(msg); err != nil {
		h.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Host) edit(chatID int64, msgID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	var edit tgbotapi.EditMessageTextConfig
	if markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, msgID, text)
	}
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.bot.Request(edit); err != nil {
		h.log.Debug("edit failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Host) answer(callbackID, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		h.log.Debug("callback answer failed", zap.Error(err))
	}
}

// --- lookups ---

func (h *Host) findGroup(key string) (Group, bool) {
	for _, g := range h.groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

func (h *Host) findService(key string) (Group, order.Service, bool) {
	for _, g := range h.groups {
		for _, svc := range g.Services {
			if svc.Key == key {
				return g, svc, true
			}
		}
	}
	return Group{}, order.Service{}, false
}

func buildMarkup(rows [][]order.Button) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		kbRows = append(kbRows, kbRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

func identityFrom(u *tgbotapi.User) order.Identity {
	if u == nil {
		return order.Identity{}
	}
	return order.Identity{
		ChatID:      u.ID,
		DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		Handle:      u.UserName,
	}
}
