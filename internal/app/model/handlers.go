package model

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Handler interface {
	Meta() Meta
	// Handle produces results for the query remainder. It reads only from
	// injected collaborators and must not keep state between calls.
	Handle(ctx context.Context, query string, s *Situation) ([]ResultItem, error)
}

// Catalog lists the units that are active in the current registry snapshot.
type Catalog interface {
	Handlers() []Meta
}

type Kind string

const (
	KindInline   Kind = "inline"
	KindMessage  Kind = "message"
	KindCallback Kind = "callback"
)

// Situation carries the caller and the raw update. Handlers read it and never
// change it.
type Situation struct {
	Kind          Kind
	Message       *tgbotapi.Message
	CallbackQuery *tgbotapi.CallbackQuery
	InlineQuery   *tgbotapi.InlineQuery
	BotLang       string
	User          *User
	Command       string
}

func (s *Situation) UserID() int64 {
	if s == nil || s.User == nil {
		return 0
	}
	return s.User.ID
}
