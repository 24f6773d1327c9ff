package handlers

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/pkg/errors"
)

const (
	characterPrefix = "char"
	presetPrefix    = "preset"
)

// Search answers "<trigger> <name>" with every record whose name matches.
type Search struct {
	Base
	source model.Lister
	prefix string
	limit  int
}

func NewCharacter(meta *model.Meta, source model.Lister, limit int) (*Search, error) {
	return newSearch(meta, source, characterPrefix, limit)
}

func NewPreset(meta *model.Meta, source model.Lister, limit int) (*Search, error) {
	return newSearch(meta, source, presetPrefix, limit)
}

func newSearch(meta *model.Meta, source model.Lister, prefix string, limit int) (*Search, error) {
	base, err := NewBase(meta)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, model.NewConfigurationError(model.ReasonConstructor, meta.Name(), errors.New("nil listing source"))
	}
	if limit <= 0 {
		limit = model.DefaultMaxResults
	}

	return &Search{Base: base, source: source, prefix: prefix, limit: limit}, nil
}

func (h *Search) Handle(ctx context.Context, query string, _ *model.Situation) ([]model.ResultItem, error) {
	search := strings.TrimSpace(query)
	if utf8.RuneCountInString(search) > maxSearchRunes {
		return nil, model.InvalidInput("search term longer than %d characters", maxSearchRunes)
	}

	records, err := h.source.List(ctx, model.Filter{Search: search, Limit: h.limit})
	if err != nil {
		return nil, model.UpstreamError(ctx, errors.Wrapf(err, "list %s", h.prefix))
	}

	items := make([]model.ResultItem, 0, len(records))
	for _, rec := range records {
		items = append(items, recordItem(h.prefix, rec))
	}

	return items, nil
}
