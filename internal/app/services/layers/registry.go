package layers

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/log"
	"github.com/pkg/errors"
)

// Deps are the read-only collaborators handed to handler constructors.
type Deps struct {
	Characters model.Lister
	Presets    model.Lister
	Catalog    model.Catalog
	MaxResults int
}

type Constructor func(meta *model.Meta, deps Deps) (model.Handler, error)

// Source is one row of a registration table: default metadata plus the
// constructor that builds the unit.
type Source struct {
	Config model.MetaConfig
	New    Constructor
}

type snapshot struct {
	generation uint64
	byTrigger  map[string]model.Handler
	fallback   model.Handler
	ordered    []model.Handler
	warnings   []error
}

// Registry maps triggers to handler units. Lookups read an immutable
// snapshot; Rebuild builds a complete new snapshot and swaps it in.
type Registry struct {
	name    string
	sources []Source
	deps    Deps
	logger  log.Logger

	rebuildMu sync.Mutex
	current   atomic.Pointer[snapshot]
}

func Build(name string, sources []Source, deps Deps, policy model.Policy, logger log.Logger) (*Registry, error) {
	r := &Registry{
		name:    name,
		sources: append([]Source(nil), sources...),
		logger:  logger.Prefix(name + " registry"),
	}

	if deps.Catalog == nil {
		deps.Catalog = r
	}
	r.deps = deps

	if err := r.Rebuild(policy); err != nil {
		return nil, err
	}

	return r, nil
}

// Rebuild repeats discovery against policy. In-flight lookups keep using the
// previous snapshot. When discovery yields no handler at all the previous
// snapshot stays active and ErrEmptyRegistry is returned.
func (r *Registry) Rebuild(policy model.Policy) error {
	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	var generation uint64 = 1
	if prev := r.current.Load(); prev != nil {
		generation = prev.generation + 1
	}

	snap := r.discover(policy)
	snap.generation = generation

	if len(snap.ordered) == 0 {
		return errors.Wrapf(model.ErrEmptyRegistry, "%s registry", r.name)
	}

	if snap.fallback == nil {
		fallback, err := newBuiltinFallback(r)
		if err != nil {
			return errors.Wrap(err, "synthesize fallback")
		}
		snap.fallback = fallback
		r.logger.Warn("no unit owns the empty trigger, using built-in fallback")
	}

	r.current.Store(snap)
	model.RegistrySize.WithLabelValues(r.name).Set(float64(len(snap.ordered)))

	r.logger.Ok("generation %d active with %d handlers", generation, len(snap.ordered))
	return nil
}

func (r *Registry) discover(policy model.Policy) *snapshot {
	snap := &snapshot{
		byTrigger: make(map[string]model.Handler, len(r.sources)),
	}

	for _, src := range r.sources {
		h, err := r.instantiate(src, policy)
		if err != nil {
			r.skip(snap, src.Config.Name, err)
			continue
		}
		if h == nil {
			continue
		}

		meta := h.Meta()
		trigger := meta.Trigger()

		if meta.IsFallback() {
			if snap.fallback != nil {
				r.skip(snap, meta.Name(), model.NewConfigurationError(model.ReasonDuplicateTrigger, meta.Name(),
					fmt.Errorf("empty trigger already owned by %s", snap.fallback.Meta().Name())))
				continue
			}
			snap.fallback = h
			snap.ordered = append(snap.ordered, h)
			continue
		}

		if owner, taken := snap.byTrigger[trigger]; taken {
			r.skip(snap, meta.Name(), model.NewConfigurationError(model.ReasonDuplicateTrigger, meta.Name(),
				fmt.Errorf("trigger %q already owned by %s", trigger, owner.Meta().Name())))
			continue
		}

		snap.byTrigger[trigger] = h
		snap.ordered = append(snap.ordered, h)
	}

	return snap
}

// instantiate returns a nil handler without error for disabled units.
func (r *Registry) instantiate(src Source, policy model.Policy) (h model.Handler, err error) {
	if src.New == nil {
		return nil, model.NewConfigurationError(model.ReasonNilHandler, src.Config.Name, nil)
	}

	meta, err := model.NewMeta(policy.Apply(src.Config))
	if err != nil {
		return nil, err
	}

	if !meta.Enabled() {
		r.logger.With("handler", meta.Name()).Info("handler disabled")
		return nil, nil
	}

	defer func() {
		if msg := recover(); msg != nil {
			h = nil
			err = model.NewConfigurationError(model.ReasonConstructor, meta.Name(), fmt.Errorf("panic: %v", msg))
		}
	}()

	deps := r.deps
	deps.MaxResults = policy.MaxResults

	h, err = src.New(&meta, deps)
	if err != nil {
		var cfgErr *model.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, model.NewConfigurationError(model.ReasonConstructor, meta.Name(), err)
	}
	if h == nil {
		return nil, model.NewConfigurationError(model.ReasonNilHandler, meta.Name(), nil)
	}
	if h.Meta().Name() == "" {
		return nil, model.NewConfigurationError(model.ReasonMissingMeta, meta.Name(), nil)
	}

	return h, nil
}

func (r *Registry) skip(snap *snapshot, name string, err error) {
	snap.warnings = append(snap.warnings, err)

	reason := string(model.ReasonConstructor)
	var cfgErr *model.ConfigurationError
	if errors.As(err, &cfgErr) {
		reason = string(cfgErr.Reason)
	}

	model.RegistrySkipped.WithLabelValues(r.name, reason).Inc()
	r.logger.With("handler", name, "reason", reason, "error", err.Error()).Warn("handler unit skipped")
}

// Lookup returns the unit registered under the exact trigger. For any other
// token it returns the fallback unit and matched=false.
func (r *Registry) Lookup(trigger string) (model.Handler, bool) {
	snap := r.current.Load()
	if h, ok := snap.byTrigger[trigger]; ok {
		return h, true
	}
	return snap.fallback, trigger == "" && snap.fallback != nil
}

// Handlers lists the descriptors of every active unit, fallback last,
// the rest sorted by trigger.
func (r *Registry) Handlers() []model.Meta {
	snap := r.current.Load()
	if snap == nil {
		return nil
	}

	metas := make([]model.Meta, 0, len(snap.ordered))
	for _, h := range snap.ordered {
		if h.Meta().IsFallback() {
			continue
		}
		metas = append(metas, h.Meta())
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Trigger() < metas[j].Trigger() })

	return append(metas, snap.fallback.Meta())
}

func (r *Registry) Len() int {
	return len(r.current.Load().ordered)
}

func (r *Registry) Generation() uint64 {
	return r.current.Load().generation
}

func (r *Registry) Name() string {
	return r.name
}

// Warnings returns the discovery problems recorded for the current snapshot.
func (r *Registry) Warnings() []error {
	return append([]error(nil), r.current.Load().warnings...)
}
