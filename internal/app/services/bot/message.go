package bot

import (
	"context"
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/app/services/dispatcher"
	"github.com/BlackRRR/persona-bot/internal/app/services/handlers"
	"github.com/BlackRRR/persona-bot/internal/app/services/layers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxMessageRunes  = 4000
	maxCardButtons   = 10
	maxCallbackData  = 64
	truncationSuffix = "\n…"
)

func (b *BotService) checkMessage(ctx context.Context, message *tgbotapi.Message) {
	s := b.createSituation(ctx, model.KindMessage, message.From)
	s.Message = message

	text := b.GlobalBot.CommandFromText(message.Text, s.BotLang)
	s.Command, _ = b.ParseCommand(text)

	if handler := b.Admin.GetHandler(s.Command); handler != nil {
		if s.User.IsAdmin {
			b.serveAdmin(ctx, handler, s)
			return
		}
		b.logger.With("command", s.Command, "user", s.UserID(), "error", model.ErrNotAdmin.Error()).Warn("admin command refused")
	}

	outcome := b.Messages.Dispatch(ctx, text, s)

	msg := tgbotapi.NewMessage(message.Chat.ID, b.messageText(outcome, s.BotLang))
	if markUp, ok := cardsMarkUp(outcome.Items); ok {
		msg.ReplyMarkup = markUp
	}

	if _, err := b.Sender.Send(msg); err != nil {
		b.logger.With("handler", outcome.Handler, "error", err.Error()).Warn("err with send message result")
	}
}

func (b *BotService) serveAdmin(ctx context.Context, handler layers.AdminHandler, s *model.Situation) {
	reply, err := handler(ctx, s)
	if err != nil {
		b.logger.With("command", s.Command, "user", s.UserID(), "error", err.Error()).Warn("admin command failed")
		b.smthWentWrong(s.Message.Chat.ID, s.BotLang)
		return
	}

	if _, err := b.Sender.Send(tgbotapi.NewMessage(s.Message.Chat.ID, reply)); err != nil {
		b.logger.Warn("err with send admin reply: %s", err.Error())
	}
}

func (b *BotService) messageText(outcome dispatcher.Outcome, lang string) string {
	if len(outcome.Items) == 0 {
		return b.GlobalBot.LangText(lang, "no_results")
	}

	parts := make([]string, 0, len(outcome.Items))
	for _, item := range outcome.Items {
		if item.Description == "" {
			parts = append(parts, item.Title)
			continue
		}
		parts = append(parts, item.Title+"\n"+item.Description)
	}

	return truncateRunes(strings.Join(parts, "\n\n"), maxMessageRunes)
}

// cardsMarkUp adds one button per item that has a card behind it.
func cardsMarkUp(items []model.ResultItem) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, item := range items {
		if len(rows) == maxCardButtons {
			break
		}

		data, ok := handlers.CardCallback(item.ID)
		if !ok || len(data) > maxCallbackData {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(item.Title, data)))
	}

	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationSuffix
}
