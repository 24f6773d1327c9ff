package layers

import (
	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/app/services/handlers"
)

const inlineUsage = "Type \"char <name>\" to share a character or \"preset <name>\" to share a preset."

// InlineSources is the registration table for inline queries.
func InlineSources() []Source {
	return []Source{
		{
			Config: model.MetaConfig{
				Name:        "char",
				QueryType:   "char",
				Trigger:     "char",
				Description: "search characters by name",
				Enabled:     true,
				CacheTime:   model.InheritCacheTime,
			},
			New: newCharacter,
		},
		{
			Config: model.MetaConfig{
				Name:        "preset",
				QueryType:   "preset",
				Trigger:     "preset",
				Description: "search presets by name",
				Enabled:     true,
				CacheTime:   model.InheritCacheTime,
			},
			New: newPreset,
		},
		{
			Config: model.MetaConfig{
				Name:        "help",
				QueryType:   "help",
				Trigger:     "help",
				Description: "list available queries",
				Enabled:     true,
				CacheTime:   model.InheritCacheTime,
			},
			New: newHelp,
		},
		{
			Config: model.MetaConfig{
				Name:        "default",
				Description: "usage hint for empty or unknown queries",
				Enabled:     true,
				CacheTime:   model.InheritCacheTime,
			},
			New: newDefault(inlineUsage),
		},
	}
}

func newCharacter(meta *model.Meta, deps Deps) (model.Handler, error) {
	return handlers.NewCharacter(meta, deps.Characters, deps.MaxResults)
}

func newPreset(meta *model.Meta, deps Deps) (model.Handler, error) {
	return handlers.NewPreset(meta, deps.Presets, deps.MaxResults)
}

func newHelp(meta *model.Meta, deps Deps) (model.Handler, error) {
	return handlers.NewHelp(meta, deps.Catalog)
}

func newDefault(usage string) Constructor {
	return func(meta *model.Meta, deps Deps) (model.Handler, error) {
		return handlers.NewDefault(meta, deps.Catalog, usage)
	}
}
