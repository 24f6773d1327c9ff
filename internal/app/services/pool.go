package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/app/services/bot"
	"github.com/BlackRRR/persona-bot/internal/app/services/dispatcher"
	"github.com/BlackRRR/persona-bot/internal/app/services/layers"
	"github.com/BlackRRR/persona-bot/internal/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Collaborators are the read-only data sources behind the handler units.
type Collaborators struct {
	Characters model.Lister
	Presets    model.Lister
	Users      model.UserSource
}

// PolicySource re-reads the dispatch policy for /reload.
type PolicySource func() (model.Policy, error)

type Services struct {
	BotSrv *bot.BotService

	Inline    *layers.Registry
	Messages  *layers.Registry
	Callbacks *layers.Registry

	dispatchers []*dispatcher.Dispatcher
	logger      log.Logger

	reloadMu sync.Mutex
}

// InitServices builds the three registries and their dispatchers. An error
// means a registry could not be built at all and the bot must not start.
func InitServices(globalBot *model.GlobalBot, sender bot.Sender, collab Collaborators, policy model.Policy, logger log.Logger) (*Services, error) {
	deps := layers.Deps{
		Characters: collab.Characters,
		Presets:    collab.Presets,
	}

	inline, err := layers.Build(string(model.KindInline), layers.InlineSources(), deps, policy, logger)
	if err != nil {
		return nil, errors.Wrap(err, "build inline registry")
	}

	messages, err := layers.Build(string(model.KindMessage), layers.MessageSources(), deps, policy, logger)
	if err != nil {
		return nil, errors.Wrap(err, "build message registry")
	}

	callbacks, err := layers.Build(string(model.KindCallback), layers.CallbackSources(), deps, policy, logger)
	if err != nil {
		return nil, errors.Wrap(err, "build callback registry")
	}

	inlineDispatcher := dispatcher.New(model.KindInline, inline, policy, logger)
	parseCommand := dispatcher.CommandParser(globalBot.BotName())
	messageDispatcher := dispatcher.New(model.KindMessage, messages, policy, logger, dispatcher.WithParser(parseCommand))
	callbackDispatcher := dispatcher.New(model.KindCallback, callbacks, policy, logger, dispatcher.WithParser(dispatcher.ParseCallback))

	botSrv := bot.NewBotService(globalBot, sender, collab.Users, logger)
	botSrv.Inline = inlineDispatcher
	botSrv.Messages = messageDispatcher
	botSrv.Callbacks = callbackDispatcher
	botSrv.ParseCommand = parseCommand

	return &Services{
		BotSrv:      botSrv,
		Inline:      inline,
		Messages:    messages,
		Callbacks:   callbacks,
		dispatchers: []*dispatcher.Dispatcher{inlineDispatcher, messageDispatcher, callbackDispatcher},
		logger:      logger.Prefix("services"),
	}, nil
}

func (s *Services) registries() []*layers.Registry {
	return []*layers.Registry{s.Inline, s.Messages, s.Callbacks}
}

// Reload rebuilds every registry from policy. A registry that fails keeps its
// previous snapshot; the others still switch to the new generation. Reloads
// are serialized so all registries end on the same policy.
func (s *Services) Reload(policy model.Policy) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	var failed []string
	for _, registry := range s.registries() {
		if err := registry.Rebuild(policy); err != nil {
			s.logger.With("registry", registry.Name(), "error", err.Error()).Error("registry rebuild failed")
			failed = append(failed, registry.Name())
		}
	}

	for _, d := range s.dispatchers {
		d.SetPolicy(policy)
	}

	if len(failed) > 0 {
		return errors.Errorf("rebuild failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *Services) InitAdmin(reload PolicySource) {
	lang := s.BotSrv.GlobalBot

	s.BotSrv.Admin.OnCommand("/reload", func(_ context.Context, sit *model.Situation) (string, error) {
		policy, err := reload()
		if err != nil {
			return "", err
		}
		if err := s.Reload(policy); err != nil {
			return "", err
		}
		return lang.LangText(sit.BotLang, "reload_done", s.Inline.Generation()), nil
	})

	s.BotSrv.Admin.OnCommand("/stats", func(_ context.Context, sit *model.Situation) (string, error) {
		return lang.LangText(sit.BotLang, "stats", s.BotSrv.Stats.Value(), s.Summary()), nil
	})
}

// Summary describes the active generation of every registry.
func (s *Services) Summary() string {
	lines := make([]string, 0, 3)
	for _, registry := range s.registries() {
		lines = append(lines, fmt.Sprintf("%s: generation %d, %d handlers, %d warnings",
			registry.Name(), registry.Generation(), registry.Len(), len(registry.Warnings())))
	}
	return strings.Join(lines, "\n")
}

func StartBot(b *model.GlobalBot) error {
	var err error
	b.Bot, err = tgbotapi.NewBotAPI(b.BotToken)
	if err != nil {
		return errors.Wrap(err, "error start bot")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	b.Chanel = b.Bot.GetUpdatesChan(u)
	return nil
}
