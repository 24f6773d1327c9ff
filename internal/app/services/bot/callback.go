package bot

import (
	"context"
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *BotService) checkCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	s := b.createSituation(ctx, model.KindCallback, callback.From)
	s.CallbackQuery = callback

	outcome := b.Callbacks.Dispatch(ctx, callback.Data, s)

	answer := tgbotapi.NewCallback(callback.ID, "")
	if outcome.Failed() {
		answer.Text = outcome.Items[0].Title
	}
	if _, err := b.Sender.Request(answer); err != nil {
		b.logger.Warn("err with answer callback: %s", err.Error())
	}

	if outcome.Failed() {
		return
	}

	chatID := callback.From.ID
	if callback.Message != nil {
		chatID = callback.Message.Chat.ID
	}

	text := b.GlobalBot.LangText(s.BotLang, "no_results")
	if len(outcome.Items) > 0 {
		contents := make([]string, 0, len(outcome.Items))
		for _, item := range outcome.Items {
			contents = append(contents, item.Content)
		}
		text = truncateRunes(strings.Join(contents, "\n\n"), maxMessageRunes)
	}

	if _, err := b.Sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.With("handler", outcome.Handler, "error", err.Error()).Warn("err with send callback result")
	}
}
