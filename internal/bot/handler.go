package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ozvuchka/internal/catalog"
	"ozvuchka/internal/controller"
	"ozvuchka/internal/history"
	"ozvuchka/internal/notify"
	"ozvuchka/internal/presenter"
	"ozvuchka/internal/synthapi"
	"ozvuchka/pkg/models"
)

const welcomeMessage = `Send me some text (3–500 characters) and I will turn it into speech.

Commands:
/voices — list available voices
/voice <id> — select a voice (no id = backend default)
/clear — drop the current audio result
/download — save the current audio on the server
/history — show recent synthesis requests`

// Handler представляет Telegram фронтенд. Никакого собственного состояния
// запроса у него нет: все проходит через единственный контроллер.
type Handler struct {
	bot        *tgbotapi.BotAPI
	controller *controller.Controller
	catalog    *catalog.Catalog
	api        synthapi.Service
	history    history.SynthesisRepository // опционально
	logger     *zap.Logger
}

// NewHandler создает новый обработчик сообщений Telegram
func NewHandler(bot *tgbotapi.BotAPI, ctrl *controller.Controller, cat *catalog.Catalog, api synthapi.Service, logger *zap.Logger) *Handler {
	return &Handler{
		bot:        bot,
		controller: ctrl,
		catalog:    cat,
		api:        api,
		logger:     logger,
	}
}

// WithHistory подключает просмотр истории синтеза командой /history
func (h *Handler) WithHistory(repo history.SynthesisRepository) *Handler {
	h.history = repo
	return h
}

// HandleUpdate обрабатывает входящее обновление
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return nil
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text

	h.logger.Debug("получено сообщение",
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)))

	if update.Message.IsCommand() {
		return h.handleCommand(ctx, chatID, update.Message.Command(), update.Message.CommandArguments())
	}

	return h.handleSynthesis(ctx, chatID, text)
}

// handleCommand обрабатывает команды бота
func (h *Handler) handleCommand(ctx context.Context, chatID int64, command, args string) error {
	switch command {
	case "start", "help":
		return h.reply(chatID, welcomeMessage)

	case "voices":
		return h.reply(chatID, h.formatVoices())

	case "voice":
		id := strings.TrimSpace(args)
		if err := h.catalog.Select(id); err != nil {
			return h.reply(chatID, fmt.Sprintf("Unknown voice %q, see /voices", id))
		}
		if id == "" {
			return h.reply(chatID, "Using the default voice")
		}
		return h.reply(chatID, "Voice selected: "+id)

	case "clear":
		h.controller.Presenter().Reset()
		h.controller.Surface().Clear()
		return h.reply(chatID, "Current audio cleared")

	case "download":
		path, err := h.controller.Presenter().Download(ctx)
		if err != nil {
			return h.replyNotification(chatID)
		}
		return h.reply(chatID, "Saved to "+path)

	case "history":
		return h.reply(chatID, h.formatHistory(ctx))

	default:
		return h.reply(chatID, "Unknown command, see /help")
	}
}

// handleSynthesis проводит текст сообщения через контроллер и отправляет
// полученное аудио в чат
func (h *Handler) handleSynthesis(ctx context.Context, chatID int64, text string) error {
	// Индикация занятости на время запроса
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := h.bot.Request(action); err != nil {
		h.logger.Debug("не удалось отправить chat action", zap.Error(err))
	}

	if err := h.controller.Submit(ctx, text, h.catalog.Selected()); err != nil {
		// Отброшенный запрос не оставляет уведомления
		if errors.Is(err, controller.ErrBusy) {
			return h.reply(chatID, "Still working on the previous request")
		}
		// Исход уже отражен в уведомлении, пересылаем его пользователю
		return h.replyNotification(chatID)
	}

	result := h.controller.Presenter().Current()
	if result == nil {
		// Результат успели сбросить параллельной командой /clear
		h.logger.Debug("результат синтеза уже сброшен", zap.Int64("chat_id", chatID))
		return nil
	}

	audio, err := h.api.FetchAudio(ctx, result.AudioURL)
	if err != nil {
		h.logger.Error("не удалось скачать аудио для отправки", zap.Error(err))
		return h.reply(chatID, "Audio is ready but could not be delivered, try /download")
	}

	message := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{
		Name:  result.AudioID + ".wav",
		Bytes: audio,
	})
	message.Caption = presenter.Describe(*result)

	if _, err := h.bot.Send(message); err != nil {
		return fmt.Errorf("ошибка отправки аудио: %w", err)
	}

	return nil
}

// formatVoices форматирует каталог голосов для чата
func (h *Handler) formatVoices() string {
	var b strings.Builder
	b.WriteString("Available voices:\n")
	for _, entry := range h.catalog.Entries() {
		if entry.ID == nil {
			fmt.Fprintf(&b, "• %s (default)\n", entry.DisplayName)
			continue
		}
		fmt.Fprintf(&b, "• %s — /voice %s\n", entry.DisplayName, *entry.ID)
	}
	return b.String()
}

// formatHistory форматирует последние запросы синтеза для чата
func (h *Handler) formatHistory(ctx context.Context) string {
	if h.history == nil {
		return "History is disabled"
	}

	records, err := h.history.GetRecent(ctx, 10)
	if err != nil {
		h.logger.Warn("не удалось получить историю синтеза", zap.Error(err))
		return "Failed to load history"
	}
	if len(records) == 0 {
		return "No synthesis history yet"
	}

	var b strings.Builder
	b.WriteString("Recent requests:\n")
	for _, record := range records {
		mark := "✅"
		if record.Status == models.SynthesisStatusFailed {
			mark = "❌"
		}
		text := record.SourceText
		if utf8.RuneCountInString(text) > 60 {
			text = string([]rune(text)[:60]) + "…"
		}
		fmt.Fprintf(&b, "%s %s  %q\n", mark,
			record.CreatedAt.Local().Format("02.01 15:04"), text)
	}
	return b.String()
}

// replyNotification пересылает текущее уведомление в чат
func (h *Handler) replyNotification(chatID int64) error {
	n := h.controller.Surface().Current()
	if n == nil {
		return nil
	}

	prefix := ""
	switch n.Severity {
	case notify.SeverityError:
		prefix = "❌ "
	case notify.SeverityWarning:
		prefix = "⚠️ "
	case notify.SeveritySuccess:
		prefix = "✅ "
	}

	return h.reply(chatID, prefix+n.Message)
}

func (h *Handler) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	return nil
}
