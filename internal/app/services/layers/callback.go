package layers

import (
	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/app/services/handlers"
)

const callbackUsage = "This button is no longer supported."

// CallbackSources is the registration table for inline keyboard buttons.
func CallbackSources() []Source {
	return []Source{
		{
			Config: model.MetaConfig{
				Name:        "char_card",
				QueryType:   "char",
				Trigger:     "/char_card",
				Description: "open a character card",
				Enabled:     true,
			},
			New: func(meta *model.Meta, deps Deps) (model.Handler, error) {
				return handlers.NewCharacterCard(meta, deps.Characters)
			},
		},
		{
			Config: model.MetaConfig{
				Name:        "preset_card",
				QueryType:   "preset",
				Trigger:     "/preset_card",
				Description: "open a preset",
				Enabled:     true,
			},
			New: func(meta *model.Meta, deps Deps) (model.Handler, error) {
				return handlers.NewPresetCard(meta, deps.Presets)
			},
		},
		{
			Config: model.MetaConfig{
				Name:        "callback_default",
				Description: "stale or unknown buttons",
				Enabled:     true,
			},
			New: newDefault(callbackUsage),
		},
	}
}
