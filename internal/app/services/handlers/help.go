package handlers

import (
	"context"
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/pkg/errors"
)

// Help lists the active units of its registry, optionally narrowed to the
// triggers that contain the query.
type Help struct {
	Base
	catalog model.Catalog
}

func NewHelp(meta *model.Meta, catalog model.Catalog) (*Help, error) {
	base, err := NewBase(meta)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, model.NewConfigurationError(model.ReasonConstructor, meta.Name(), errors.New("nil catalog"))
	}

	return &Help{Base: base, catalog: catalog}, nil
}

func (h *Help) Handle(_ context.Context, query string, _ *model.Situation) ([]model.ResultItem, error) {
	return catalogItems(h.catalog, strings.TrimSpace(query)), nil
}

func catalogItems(catalog model.Catalog, filter string) []model.ResultItem {
	filter = strings.TrimPrefix(strings.ToLower(filter), "/")

	items := make([]model.ResultItem, 0)
	for _, meta := range catalog.Handlers() {
		if meta.IsFallback() {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(meta.Trigger()), filter) {
			continue
		}

		items = append(items, model.ResultItem{
			ID:          "help:" + meta.Name(),
			Title:       meta.Trigger(),
			Description: meta.Description(),
			Content:     meta.Trigger() + ": " + meta.Description(),
		})
	}

	return items
}
