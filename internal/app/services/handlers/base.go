// Package handlers holds the handler units served by the dispatchers.
//
// Every unit is built from a *model.Meta and embeds Base; a nil descriptor
// fails construction with a ConfigurationError(missing_meta). Units only read
// from the listers they were given and keep no state between calls.
package handlers

import (
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
)

const maxSearchRunes = 64

type Base struct {
	meta model.Meta
}

func NewBase(meta *model.Meta) (Base, error) {
	if meta == nil {
		return Base{}, model.NewConfigurationError(model.ReasonMissingMeta, "", nil)
	}
	return Base{meta: *meta}, nil
}

func (b Base) Meta() model.Meta {
	return b.meta
}

func recordItem(prefix string, rec model.Record) model.ResultItem {
	return model.ResultItem{
		ID:          prefix + ":" + rec.ID,
		Title:       rec.Name,
		Description: rec.Description,
		Content:     cardText(rec),
		Thumbnail:   rec.Avatar,
	}
}

func cardText(rec model.Record) string {
	var b strings.Builder
	b.WriteString(rec.Name)
	if rec.Description != "" {
		b.WriteString("\n")
		b.WriteString(rec.Description)
	}
	if rec.Content != "" {
		b.WriteString("\n\n")
		b.WriteString(rec.Content)
	}
	return b.String()
}
