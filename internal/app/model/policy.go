package model

import "time"

const (
	DefaultMaxResults = 50
	DefaultCacheTime  = 300
	DefaultTimeout    = 3 * time.Second
)

type HandlerPolicy struct {
	Enabled   *bool `mapstructure:"enabled"`
	CacheTime *int  `mapstructure:"cache_time"`
}

// Policy is the dispatch part of the configuration. Each registry generation
// is built from one Policy value; a reload builds a new generation.
type Policy struct {
	MaxResults       int
	DefaultCacheTime int
	Timeout          time.Duration
	Handlers         map[string]HandlerPolicy
}

func DefaultPolicy() Policy {
	return Policy{
		MaxResults:       DefaultMaxResults,
		DefaultCacheTime: DefaultCacheTime,
		Timeout:          DefaultTimeout,
		Handlers:         map[string]HandlerPolicy{},
	}
}

// Apply resolves cfg against the policy: inherited cache times take the
// default, then per-handler overrides win.
func (p Policy) Apply(cfg MetaConfig) MetaConfig {
	if cfg.CacheTime == InheritCacheTime {
		cfg.CacheTime = p.DefaultCacheTime
	}

	override, ok := p.Handlers[cfg.Name]
	if !ok {
		return cfg
	}
	if override.Enabled != nil {
		cfg.Enabled = *override.Enabled
	}
	if override.CacheTime != nil {
		cfg.CacheTime = *override.CacheTime
	}
	return cfg
}
