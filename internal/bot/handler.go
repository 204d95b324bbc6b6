package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"portals-watcher/internal/domain"
)

// Handler - входящие команды бота. Сбои здесь никогда не выходят
// за пределы обработки одного сообщения.
type Handler struct {
	bot       *tgbotapi.BotAPI
	users     domain.UserRepository
	watches   domain.WatchRepository
	webappURL string
	logger    *slog.Logger
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	users domain.UserRepository,
	watches domain.WatchRepository,
	webappURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:       bot,
		users:     users,
		watches:   watches,
		webappURL: webappURL,
		logger:    logger,
	}
}

func (h *Handler) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			go h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Привязка user -> chat обновляется на каждом сообщении:
	// без нее подписка не нотифицируема.
	if err := h.users.Upsert(ctx, msg.From.ID, msg.Chat.ID); err != nil {
		h.logger.Error("failed to upsert user binding",
			slog.Int64("user_id", msg.From.ID),
			slog.String("error", err.Error()))
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.cmdStart(msg)
		case "list":
			h.cmdList(ctx, msg)
		case "help":
			h.cmdHelp(msg)
		}
		return
	}

	h.send(msg.Chat.ID, "Используйте /start, чтобы открыть список отслеживаний.")
}

func (h *Handler) cmdStart(msg *tgbotapi.Message) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Open WebApp", h.webappURL),
		),
	)

	reply := tgbotapi.NewMessage(msg.Chat.ID,
		fmt.Sprintf("👋 Привет, %s!\nЯ слежу за новыми листингами в Portals.\n\nЖми кнопку и добавляй отслеживания.", msg.From.FirstName))
	reply.ReplyMarkup = kb
	if _, err := h.bot.Send(reply); err != nil {
		h.logger.Warn("failed to send start reply", slog.String("error", err.Error()))
	}
}

func (h *Handler) cmdList(ctx context.Context, msg *tgbotapi.Message) {
	watches, err := h.watches.ListByUser(ctx, msg.From.ID)
	if err != nil {
		h.logger.Error("failed to list watches", slog.String("error", err.Error()))
		h.send(msg.Chat.ID, "⚠️ Не удалось получить список. Попробуйте позже.")
		return
	}

	if len(watches) == 0 {
		h.send(msg.Chat.ID, "Список пуст. Добавьте отслеживания через /start.")
		return
	}

	var b strings.Builder
	b.WriteString("📋 Ваши отслеживания:\n")
	for _, w := range watches {
		fmt.Fprintf(&b, "• %s — %s (порог %s%%)\n", w.Collection, w.Model, w.ThresholdPct.String())
	}
	h.send(msg.Chat.ID, b.String())
}

func (h *Handler) cmdHelp(msg *tgbotapi.Message) {
	h.send(msg.Chat.ID, "/start — открыть WebApp\n/list — показать отслеживания")
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.Warn("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()))
	}
}
