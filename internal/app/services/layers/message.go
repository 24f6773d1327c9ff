package layers

import (
	"github.com/BlackRRR/persona-bot/internal/app/model"
)

const messageUsage = "Send /char <name> or /preset <name>, or use me inline in any chat."

// MessageSources is the registration table for chat commands.
func MessageSources() []Source {
	return []Source{
		{
			Config: model.MetaConfig{
				Name:        "cmd_char",
				QueryType:   "char",
				Trigger:     "/char",
				Description: "search characters by name",
				Enabled:     true,
			},
			New: newCharacter,
		},
		{
			Config: model.MetaConfig{
				Name:        "cmd_preset",
				QueryType:   "preset",
				Trigger:     "/preset",
				Description: "search presets by name",
				Enabled:     true,
			},
			New: newPreset,
		},
		{
			Config: model.MetaConfig{
				Name:        "cmd_help",
				QueryType:   "help",
				Trigger:     "/help",
				Description: "list available commands",
				Enabled:     true,
			},
			New: newHelp,
		},
		{
			Config: model.MetaConfig{
				Name:        "cmd_start",
				Trigger:     "/start",
				Description: "greeting",
				Enabled:     true,
			},
			New: newDefault(messageUsage),
		},
		{
			Config: model.MetaConfig{
				Name:        "cmd_default",
				Description: "usage hint for unknown messages",
				Enabled:     true,
			},
			New: newDefault(messageUsage),
		},
	}
}
