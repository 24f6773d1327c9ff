package dispatcher

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/log"
	"github.com/pkg/errors"
)

type State string

const (
	StateReceived  State = "received"
	StateParsed    State = "parsed"
	StateRouted    State = "routed"
	StateExecuting State = "executing"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

const (
	titleFailed      = "query failed"
	titleUnavailable = "temporarily unavailable"
)

// Router resolves a trigger token to a handler unit. The returned handler is
// the fallback unit when matched is false.
type Router interface {
	Lookup(trigger string) (h model.Handler, matched bool)
}

// Outcome is what the transport gets back from a dispatch. It is always
// renderable: a failed outcome carries one sanitized item and no error text.
type Outcome struct {
	State     State
	Kind      model.ErrorKind
	Handler   string
	Trigger   string
	Items     []model.ResultItem
	CacheTime int
}

func (o Outcome) Failed() bool {
	return o.State == StateFailed
}

type settings struct {
	timeout time.Duration
	builder Builder
}

type Dispatcher struct {
	kind    model.Kind
	router  Router
	parse   ParseFunc
	logger  log.Logger
	current atomic.Pointer[settings]
}

type Option func(d *Dispatcher)

func WithParser(parse ParseFunc) Option {
	return func(d *Dispatcher) {
		d.parse = parse
	}
}

func New(kind model.Kind, router Router, policy model.Policy, logger log.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		kind:   kind,
		router: router,
		parse:  Parse,
		logger: logger.Prefix(string(kind) + " dispatcher"),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.SetPolicy(policy)
	return d
}

// SetPolicy replaces timeout and result limits for dispatches started afterwards.
func (d *Dispatcher) SetPolicy(policy model.Policy) {
	timeout := policy.Timeout
	if timeout <= 0 {
		timeout = model.DefaultTimeout
	}

	d.current.Store(&settings{
		timeout: timeout,
		builder: Builder{MaxResults: policy.MaxResults, Logger: d.logger},
	})
}

// Dispatch routes raw to a handler unit and runs it within the timeout
// budget. It never panics and never returns raw handler errors.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string, s *model.Situation) Outcome {
	cfg := d.current.Load()
	started := time.Now()

	// received -> parsed
	trigger, remainder := d.parse(raw)

	// parsed -> routed
	handler, matched := d.router.Lookup(trigger)
	if handler == nil {
		d.logger.With("trigger", trigger).Error("router returned no handler")
		return d.failed(Outcome{Trigger: trigger}, model.KindInternal)
	}
	if !matched {
		remainder = joinQuery(trigger, remainder)
	}

	meta := handler.Meta()
	outcome := Outcome{
		State:     StateRouted,
		Handler:   meta.Name(),
		Trigger:   trigger,
		CacheTime: meta.CacheTime(),
	}

	// routed -> executing
	items, err := d.execute(ctx, cfg.timeout, handler, remainder, s)
	model.DispatchDuration.WithLabelValues(string(d.kind), meta.Name()).Observe(time.Since(started).Seconds())

	if err != nil {
		kind := model.KindOf(err)
		d.logger.With(
			"kind", kind,
			"handler", meta.Name(),
			"trigger", trigger,
			"user", s.UserID(),
			"error", err.Error(),
		).Warn("dispatch failed")

		return d.failed(outcome, kind)
	}

	// executing -> completed
	outcome.State = StateCompleted
	outcome.Items = cfg.builder.Normalize(items)
	model.HandleDispatch.WithLabelValues(string(d.kind), meta.Name(), string(StateCompleted)).Inc()

	return outcome
}

func (d *Dispatcher) execute(ctx context.Context, timeout time.Duration, h model.Handler, query string, s *model.Situation) ([]model.ResultItem, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		items []model.ResultItem
		err   error
	}

	// buffered: an abandoned handler must still be able to send
	done := make(chan result, 1)

	go func() {
		defer func() {
			if msg := recover(); msg != nil {
				done <- result{err: &panicError{value: msg, stack: debug.Stack()}}
			}
		}()

		items, err := h.Handle(ctx, query, s)
		done <- result{items: items, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == context.DeadlineExceeded {
			return nil, model.NewHandlerError(model.KindTimeout, res.err)
		}
		return res.items, res.err
	case <-ctx.Done():
		return nil, model.NewHandlerError(model.KindTimeout, errors.Wrap(ctx.Err(), "handler abandoned"))
	}
}

func (d *Dispatcher) failed(outcome Outcome, kind model.ErrorKind) Outcome {
	outcome.State = StateFailed
	outcome.Kind = kind
	outcome.Items = []model.ResultItem{ErrorItem(kind)}
	outcome.CacheTime = 0

	model.HandleDispatch.WithLabelValues(string(d.kind), outcome.Handler, string(StateFailed)).Inc()
	return outcome
}

// ErrorItem is the user-safe result shown for a failed dispatch.
func ErrorItem(kind model.ErrorKind) model.ResultItem {
	title := titleFailed
	if kind == model.KindTimeout || kind == model.KindUpstreamUnavailable {
		title = titleUnavailable
	}

	return model.ResultItem{
		ID:          "error:" + string(kind),
		Title:       title,
		Description: "error: " + string(kind),
		Content:     title,
	}
}

func joinQuery(trigger, remainder string) string {
	if remainder == "" {
		return trigger
	}
	if trigger == "" {
		return remainder
	}
	return trigger + " " + remainder
}

type panicError struct {
	value interface{}
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic in handler: %v\n%s", e.value, e.stack)
}
