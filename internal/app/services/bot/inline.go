package bot

import (
	"context"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/app/services/dispatcher"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const noResultsParameter = "no_results"

func (b *BotService) checkInlineQuery(ctx context.Context, query *tgbotapi.InlineQuery) {
	s := b.createSituation(ctx, model.KindInline, query.From)
	s.InlineQuery = query

	outcome := b.Inline.Dispatch(ctx, query.Query, s)

	config := b.inlineAnswer(query.ID, outcome, s.BotLang)
	if _, err := b.Sender.Request(config); err != nil {
		b.logger.With("handler", outcome.Handler, "error", err.Error()).Warn("err with answer inline query")
	}
}

func (b *BotService) inlineAnswer(queryID string, outcome dispatcher.Outcome, lang string) tgbotapi.InlineConfig {
	results := make([]interface{}, 0, len(outcome.Items))
	for _, item := range outcome.Items {
		article := tgbotapi.NewInlineQueryResultArticle(item.ID, item.Title, item.Content)
		article.Description = item.Description
		article.ThumbURL = item.Thumbnail
		results = append(results, article)
	}

	config := tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     outcome.CacheTime,
		IsPersonal:    outcome.Failed(),
	}

	if len(results) == 0 {
		config.SwitchPMText = b.GlobalBot.LangText(lang, "no_results")
		config.SwitchPMParameter = noResultsParameter
	}

	return config
}
