package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var characters = []model.Record{
	{ID: "1", Name: "neko", Description: "a cat girl", Content: "meow"},
	{ID: "2", Name: "nekomata", Description: "two tails", Avatar: "https://img/2.png"},
	{ID: "3", Name: "kitsune", Description: "fox spirit"},
}

// memLister filters records the way the SQL listing does.
func memLister(records []model.Record) model.ListerFunc {
	return func(_ context.Context, filter model.Filter) ([]model.Record, error) {
		out := make([]model.Record, 0)
		for _, rec := range records {
			if filter.ID != "" && rec.ID != filter.ID {
				continue
			}
			if !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(filter.Search)) {
				continue
			}
			out = append(out, rec)
			if filter.Limit > 0 && len(out) == filter.Limit {
				break
			}
		}
		return out, nil
	}
}

func failingLister(err error) model.ListerFunc {
	return func(context.Context, model.Filter) ([]model.Record, error) {
		return nil, err
	}
}

type staticCatalog []model.Meta

func (c staticCatalog) Handlers() []model.Meta { return c }

func meta(t *testing.T, name, trigger string) *model.Meta {
	m, err := model.NewMeta(model.MetaConfig{Name: name, Trigger: trigger, Description: name + " units", Enabled: true})
	require.NoError(t, err)
	return &m
}

func TestCharacterSearch(t *testing.T) {
	h, err := NewCharacter(meta(t, "char", "char"), memLister(characters), 10)
	require.NoError(t, err)

	items, err := h.Handle(context.Background(), "nek", &model.Situation{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "char:1", items[0].ID)
	assert.Equal(t, "neko", items[0].Title)
	assert.Equal(t, "a cat girl", items[0].Description)
	assert.Equal(t, "neko\na cat girl\n\nmeow", items[0].Content)
	assert.Equal(t, "char:2", items[1].ID)
	assert.Equal(t, "https://img/2.png", items[1].Thumbnail)
}

func TestSearchEmptyQueryListsEverything(t *testing.T) {
	h, err := NewPreset(meta(t, "preset", "preset"), memLister(characters), 2)
	require.NoError(t, err)

	items, err := h.Handle(context.Background(), "   ", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "preset:1", items[0].ID)
}

func TestSearchNoMatches(t *testing.T) {
	h, err := NewCharacter(meta(t, "char", "char"), memLister(characters), 0)
	require.NoError(t, err)

	items, err := h.Handle(context.Background(), "dragon", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchRejectsLongQuery(t *testing.T) {
	h, err := NewCharacter(meta(t, "char", "char"), memLister(characters), 10)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), strings.Repeat("я", maxSearchRunes+1), nil)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))

	_, err = h.Handle(context.Background(), strings.Repeat("я", maxSearchRunes), nil)
	assert.NoError(t, err)
}

func TestSearchUpstreamFailure(t *testing.T) {
	h, err := NewCharacter(meta(t, "char", "char"), failingLister(errors.New("connection refused")), 10)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), "nek", nil)
	require.Error(t, err)
	assert.Equal(t, model.KindUpstreamUnavailable, model.KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSearchUpstreamFailureAfterDeadline(t *testing.T) {
	h, err := NewCharacter(meta(t, "char", "char"), model.ListerFunc(func(ctx context.Context, _ model.Filter) ([]model.Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), 10)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = h.Handle(ctx, "nek", nil)
	assert.Equal(t, model.KindTimeout, model.KindOf(err))
}

func TestConstructorsRequireMeta(t *testing.T) {
	lister := memLister(characters)
	catalog := staticCatalog{}

	constructors := map[string]func() error{
		"character": func() error { _, err := NewCharacter(nil, lister, 1); return err },
		"preset":    func() error { _, err := NewPreset(nil, lister, 1); return err },
		"card":      func() error { _, err := NewCharacterCard(nil, lister); return err },
		"help":      func() error { _, err := NewHelp(nil, catalog); return err },
		"default":   func() error { _, err := NewDefault(nil, catalog, "usage"); return err },
	}

	for name, construct := range constructors {
		err := construct()
		var cfgErr *model.ConfigurationError
		require.True(t, errors.As(err, &cfgErr), name)
		assert.Equal(t, model.ReasonMissingMeta, cfgErr.Reason, name)
	}
}

func TestConstructorsRequireCollaborators(t *testing.T) {
	_, err := NewCharacter(meta(t, "char", "char"), nil, 1)
	assert.Error(t, err)
	_, err = NewPresetCard(meta(t, "card", "/preset_card"), nil)
	assert.Error(t, err)
	_, err = NewHelp(meta(t, "help", "help"), nil)
	assert.Error(t, err)
}

func TestCard(t *testing.T) {
	h, err := NewCharacterCard(meta(t, "char_card", "/char_card"), memLister(characters))
	require.NoError(t, err)

	items, err := h.Handle(context.Background(), "3", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "char:3", items[0].ID)
	assert.Equal(t, "kitsune\nfox spirit", items[0].Content)

	items, err = h.Handle(context.Background(), "404", nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = h.Handle(context.Background(), " ", nil)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))
}

func TestCardCallback(t *testing.T) {
	data, ok := CardCallback("char:42")
	assert.True(t, ok)
	assert.Equal(t, "/char_card?42", data)

	data, ok = CardCallback("preset:dark")
	assert.True(t, ok)
	assert.Equal(t, "/preset_card?dark", data)

	for _, id := range []string{"help:char", "usage", "char:", "error:timeout"} {
		_, ok = CardCallback(id)
		assert.False(t, ok, id)
	}
}

func catalog(t *testing.T) staticCatalog {
	return staticCatalog{*meta(t, "char", "char"), *meta(t, "preset", "preset"), *meta(t, "default", "")}
}

func TestHelp(t *testing.T) {
	h, err := NewHelp(meta(t, "help", "help"), catalog(t))
	require.NoError(t, err)

	items, err := h.Handle(context.Background(), "", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "help:char", items[0].ID)
	assert.Equal(t, "char", items[0].Title)
	assert.Equal(t, "char: char units", items[0].Content)

	items, err = h.Handle(context.Background(), "PRE", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "help:preset", items[0].ID)
}

func TestDefault(t *testing.T) {
	h, err := NewDefault(meta(t, "default", ""), catalog(t), "try char <name>")
	require.NoError(t, err)

	items, err := h.Handle(context.Background(), "", nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "usage", items[0].ID)
	assert.Equal(t, "usage", items[0].Title)
	assert.Equal(t, "try char <name>", items[0].Description)

	items, err = h.Handle(context.Background(), "dragon fire", nil)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "unknown query", items[0].Title)
	assert.Contains(t, items[0].Description, "\"dragon\"")
}
