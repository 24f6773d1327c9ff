package model

import "strings"

// InheritCacheTime marks a MetaConfig whose cache time is taken from the
// policy default at registry build time.
const InheritCacheTime = -1

type MetaConfig struct {
	Name        string
	QueryType   string
	Trigger     string
	Description string
	Enabled     bool
	CacheTime   int
}

// Meta describes a handler unit. It is immutable: every field is read
// through an accessor and a new registry generation builds new values.
type Meta struct {
	name        string
	queryType   string
	trigger     string
	description string
	enabled     bool
	cacheTime   int
}

func NewMeta(cfg MetaConfig) (Meta, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return Meta{}, NewConfigurationError(ReasonMissingName, cfg.Name, nil)
	}

	if cfg.CacheTime < 0 {
		return Meta{}, NewConfigurationError(ReasonInvalidCacheTime, name, nil)
	}

	if strings.ContainsAny(cfg.Trigger, " \t\n\r") {
		return Meta{}, NewConfigurationError(ReasonInvalidTrigger, name, nil)
	}

	return Meta{
		name:        name,
		queryType:   cfg.QueryType,
		trigger:     cfg.Trigger,
		description: cfg.Description,
		enabled:     cfg.Enabled,
		cacheTime:   cfg.CacheTime,
	}, nil
}

func (m Meta) Name() string        { return m.name }
func (m Meta) QueryType() string   { return m.queryType }
func (m Meta) Trigger() string     { return m.trigger }
func (m Meta) Description() string { return m.description }
func (m Meta) Enabled() bool       { return m.enabled }
func (m Meta) CacheTime() int      { return m.cacheTime }

// IsFallback reports whether the unit owns the empty trigger.
func (m Meta) IsFallback() bool {
	return m.trigger == ""
}
