package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/app/services/dispatcher"
	"github.com/BlackRRR/persona-bot/internal/app/services/layers"
	"github.com/BlackRRR/persona-bot/internal/app/utils"
	"github.com/BlackRRR/persona-bot/internal/db/redis"
	"github.com/BlackRRR/persona-bot/internal/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const userLookupTimeout = time.Second

var (
	updatePrintHeader = "updates number: %d    // persona-bot-updates:  %s %s %s"
	extraneousUpdate  = "extraneous updates"
)

// Sender is the part of *tgbotapi.BotAPI the service talks to.
type Sender interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, raw string, s *model.Situation) dispatcher.Outcome
}

type BotService struct {
	GlobalBot *model.GlobalBot
	Sender    Sender
	Users     model.UserSource

	Inline    Dispatcher
	Messages  Dispatcher
	Callbacks Dispatcher
	Admin     *layers.AdminHandlers

	// ParseCommand must match the parser of the Messages dispatcher.
	ParseCommand dispatcher.ParseFunc

	Stats  *model.UpdateInfo
	logger log.Logger
}

func NewBotService(globalBot *model.GlobalBot, sender Sender, users model.UserSource, logger log.Logger) *BotService {
	return &BotService{
		GlobalBot:    globalBot,
		Sender:       sender,
		Users:        users,
		Admin:        layers.NewAdminHandlers(),
		ParseCommand: dispatcher.ParseCommand,
		Stats:        model.NewUpdateInfo(0),
		logger:       logger,
	}
}

func (b *BotService) ActionsWithUpdates(ctx context.Context, sortCentre *utils.Spreader) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-b.GlobalBot.Chanel:
			if !ok {
				return
			}

			localUpdate := update
			if !sortCentre.ServeHandler(ctx, func() { b.checkUpdate(ctx, &localUpdate) }) {
				return
			}
		}
	}
}

func (b *BotService) checkUpdate(ctx context.Context, update *tgbotapi.Update) {
	defer b.panicCather(update)

	switch {
	case update.InlineQuery != nil:
		b.printNewUpdate(model.KindInline, update.InlineQuery.Query)
		b.checkInlineQuery(ctx, update.InlineQuery)
	case update.CallbackQuery != nil:
		b.printNewUpdate(model.KindCallback, update.CallbackQuery.Data)
		b.checkCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil && update.Message.Text != "":
		if update.Message.PinnedMessage != nil {
			return
		}
		b.printNewUpdate(model.KindMessage, update.Message.Text)
		b.checkMessage(ctx, update.Message)
	default:
		b.printNewUpdate("", extraneousUpdate)
	}
}

func (b *BotService) printNewUpdate(kind model.Kind, text string) {
	counter := b.Stats.Inc()

	if b.GlobalBot.Rdb != nil {
		if err := redis.SaveUpdateStatistic(b.GlobalBot.Rdb, counter); err != nil {
			b.logger.Warn("err with save update statistic: %s", err.Error())
		}
	}

	model.HandleUpdates.WithLabelValues(
		b.GlobalBot.BotLink,
		b.GlobalBot.BotLang,
		string(kind),
	).Inc()

	b.logger.Info(updatePrintHeader,
		counter,
		b.GlobalBot.BotLang,
		kind,
		text,
	)
}

func (b *BotService) createSituation(ctx context.Context, kind model.Kind, from *tgbotapi.User) *model.Situation {
	return &model.Situation{
		Kind:    kind,
		BotLang: b.GlobalBot.GetBotLang(),
		User:    b.lookupUser(ctx, from),
	}
}

// lookupUser never fails: an unknown or unreachable user store degrades to
// the identity Telegram sent with the update.
func (b *BotService) lookupUser(ctx context.Context, from *tgbotapi.User) *model.User {
	if from == nil {
		return &model.User{}
	}

	simple := &model.User{
		ID:       from.ID,
		UserName: from.UserName,
		Lang:     from.LanguageCode,
		IsAdmin:  b.GlobalBot.CheckAdmin(from.ID),
	}

	if b.Users == nil {
		return simple
	}

	ctx, cancel := context.WithTimeout(ctx, userLookupTimeout)
	defer cancel()

	user, err := b.Users.GetUser(ctx, from.ID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			b.logger.With("user", from.ID, "error", err.Error()).Warn("user lookup failed")
		}
		return simple
	}

	user.IsAdmin = user.IsAdmin || simple.IsAdmin
	if user.UserName == "" {
		user.UserName = simple.UserName
	}
	if user.Lang == "" {
		user.Lang = simple.Lang
	}

	return user
}

func (b *BotService) smthWentWrong(chatID int64, lang string) {
	msg := tgbotapi.NewMessage(chatID, b.GlobalBot.LangText(lang, "smth_went_wrong"))
	if _, err := b.Sender.Send(msg); err != nil {
		b.logger.Warn("err with send fallback message: %s", err.Error())
	}
}

func (b *BotService) panicCather(update *tgbotapi.Update) {
	msg := recover()
	if msg == nil {
		return
	}

	panicText := fmt.Sprintf("%s // %s\npanic in backend: message = %s\n%s",
		b.GlobalBot.BotLang,
		b.GlobalBot.BotLink,
		msg,
		string(debug.Stack()),
	)
	b.logger.Prefix("panic cather").Error(panicText)

	data, err := json.MarshalIndent(update, "", "  ")
	if err != nil {
		return
	}

	b.logger.Prefix("panic cather").Error("update: %s", string(data))
}
