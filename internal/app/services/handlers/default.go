package handlers

import (
	"context"
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/pkg/errors"
)

// Default owns the empty trigger. It always answers with a usage card
// followed by the catalog listing.
type Default struct {
	Base
	catalog model.Catalog
	usage   string
}

func NewDefault(meta *model.Meta, catalog model.Catalog, usage string) (*Default, error) {
	base, err := NewBase(meta)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, model.NewConfigurationError(model.ReasonConstructor, meta.Name(), errors.New("nil catalog"))
	}

	return &Default{Base: base, catalog: catalog, usage: usage}, nil
}

func (h *Default) Handle(_ context.Context, query string, _ *model.Situation) ([]model.ResultItem, error) {
	usage := model.ResultItem{
		ID:          "usage",
		Title:       "usage",
		Description: h.usage,
		Content:     h.usage,
	}

	if query = strings.TrimSpace(query); query != "" {
		usage.Title = "unknown query"
		usage.Description = "nothing matches \"" + firstToken(query) + "\". " + h.usage
	}

	return append([]model.ResultItem{usage}, catalogItems(h.catalog, "")...), nil
}

func firstToken(query string) string {
	if fields := strings.Fields(query); len(fields) > 0 {
		return fields[0]
	}
	return query
}
