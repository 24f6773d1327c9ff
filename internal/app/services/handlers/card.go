package handlers

import (
	"context"
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/pkg/errors"
)

// Card answers a callback button "/char_card?<id>" with the full record.
type Card struct {
	Base
	source model.Lister
	prefix string
}

func NewCharacterCard(meta *model.Meta, source model.Lister) (*Card, error) {
	return newCard(meta, source, characterPrefix)
}

func NewPresetCard(meta *model.Meta, source model.Lister) (*Card, error) {
	return newCard(meta, source, presetPrefix)
}

func newCard(meta *model.Meta, source model.Lister, prefix string) (*Card, error) {
	base, err := NewBase(meta)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, model.NewConfigurationError(model.ReasonConstructor, meta.Name(), errors.New("nil listing source"))
	}

	return &Card{Base: base, source: source, prefix: prefix}, nil
}

func (h *Card) Handle(ctx context.Context, query string, _ *model.Situation) ([]model.ResultItem, error) {
	id := strings.TrimSpace(query)
	if id == "" {
		return nil, model.InvalidInput("missing %s id", h.prefix)
	}

	records, err := h.source.List(ctx, model.Filter{ID: id, Limit: 1})
	if err != nil {
		return nil, model.UpstreamError(ctx, errors.Wrapf(err, "get %s %s", h.prefix, id))
	}
	if len(records) == 0 {
		return nil, nil
	}

	return []model.ResultItem{recordItem(h.prefix, records[0])}, nil
}

// CardCallback returns the callback data that opens the card behind a result
// item id such as "char:42".
func CardCallback(itemID string) (string, bool) {
	prefix, id, ok := strings.Cut(itemID, ":")
	if !ok || id == "" {
		return "", false
	}

	switch prefix {
	case characterPrefix, presetPrefix:
		return "/" + prefix + "_card?" + id, true
	default:
		return "", false
	}
}
