package layers

import (
	"context"
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
)

const builtinFallbackName = "builtin_fallback"

// builtinFallback answers unmatched input when no source owns the empty trigger.
type builtinFallback struct {
	meta    model.Meta
	catalog model.Catalog
}

func newBuiltinFallback(catalog model.Catalog) (*builtinFallback, error) {
	meta, err := model.NewMeta(model.MetaConfig{
		Name:        builtinFallbackName,
		Description: "lists available triggers",
		Enabled:     true,
	})
	if err != nil {
		return nil, err
	}

	return &builtinFallback{meta: meta, catalog: catalog}, nil
}

func (f *builtinFallback) Meta() model.Meta {
	return f.meta
}

func (f *builtinFallback) Handle(_ context.Context, _ string, _ *model.Situation) ([]model.ResultItem, error) {
	triggers := make([]string, 0)
	for _, meta := range f.catalog.Handlers() {
		if meta.IsFallback() {
			continue
		}
		triggers = append(triggers, meta.Trigger())
	}

	content := "No handler matched."
	if len(triggers) > 0 {
		content = "Available: " + strings.Join(triggers, ", ")
	}

	return []model.ResultItem{{
		ID:          "usage",
		Title:       "usage",
		Description: content,
		Content:     content,
	}}, nil
}
