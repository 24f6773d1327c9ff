package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handleFunc func(ctx context.Context, query string, s *model.Situation) ([]model.ResultItem, error)

type stubHandler struct {
	meta   model.Meta
	handle handleFunc
}

func (h *stubHandler) Meta() model.Meta { return h.meta }

func (h *stubHandler) Handle(ctx context.Context, query string, s *model.Situation) ([]model.ResultItem, error) {
	return h.handle(ctx, query, s)
}

func newStub(t *testing.T, name, trigger string, cacheTime int, handle handleFunc) *stubHandler {
	meta, err := model.NewMeta(model.MetaConfig{Name: name, Trigger: trigger, Enabled: true, CacheTime: cacheTime})
	require.NoError(t, err)
	return &stubHandler{meta: meta, handle: handle}
}

type mapRouter struct {
	handlers map[string]model.Handler
	fallback model.Handler
}

func (r *mapRouter) Lookup(trigger string) (model.Handler, bool) {
	if h, ok := r.handlers[trigger]; ok {
		return h, true
	}
	return r.fallback, trigger == "" && r.fallback != nil
}

func echo(prefix string) handleFunc {
	return func(_ context.Context, query string, _ *model.Situation) ([]model.ResultItem, error) {
		return []model.ResultItem{{ID: prefix + ":" + query, Title: prefix + ":" + query}}, nil
	}
}

func testPolicy(timeout time.Duration) model.Policy {
	policy := model.DefaultPolicy()
	policy.Timeout = timeout
	return policy
}

func newTestDispatcher(router Router, timeout time.Duration) (*Dispatcher, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(model.KindInline, router, testPolicy(timeout), log.NewLogger(buf)), buf
}

func TestDispatchRoutesByTrigger(t *testing.T) {
	var got string
	router := &mapRouter{
		handlers: map[string]model.Handler{
			"char": newStub(t, "char", "char", 300, func(_ context.Context, query string, _ *model.Situation) ([]model.ResultItem, error) {
				got = query
				return []model.ResultItem{{ID: "char:1", Title: "neko"}}, nil
			}),
		},
		fallback: newStub(t, "default", "", 10, echo("default")),
	}
	d, _ := newTestDispatcher(router, time.Second)

	out := d.Dispatch(context.Background(), "char nek", &model.Situation{})

	assert.Equal(t, StateCompleted, out.State)
	assert.Equal(t, "char", out.Handler)
	assert.Equal(t, "char", out.Trigger)
	assert.Equal(t, 300, out.CacheTime)
	assert.Equal(t, "nek", got)
	assert.Equal(t, []model.ResultItem{{ID: "char:1", Title: "neko"}}, out.Items)
	assert.False(t, out.Failed())
}

func TestDispatchUnknownTriggerGoesToFallback(t *testing.T) {
	router := &mapRouter{
		handlers: map[string]model.Handler{"char": newStub(t, "char", "char", 300, echo("char"))},
		fallback: newStub(t, "default", "", 10, echo("default")),
	}
	d, _ := newTestDispatcher(router, time.Second)

	out := d.Dispatch(context.Background(), "  hello  world ", nil)
	require.Equal(t, StateCompleted, out.State)
	assert.Equal(t, "default", out.Handler)
	assert.Equal(t, 10, out.CacheTime)
	assert.Equal(t, "default:hello world", out.Items[0].ID)

	out = d.Dispatch(context.Background(), "", nil)
	require.Equal(t, StateCompleted, out.State)
	assert.Equal(t, "default", out.Handler)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "default:", out.Items[0].ID)

	out = d.Dispatch(context.Background(), "CHAR nek", nil)
	assert.Equal(t, "default", out.Handler, "triggers match exactly")
}

func TestDispatchEmptyTitleIsDropped(t *testing.T) {
	router := &mapRouter{fallback: newStub(t, "default", "", 10,
		func(_ context.Context, query string, _ *model.Situation) ([]model.ResultItem, error) {
			return []model.ResultItem{{ID: "default:" + query, Title: query}}, nil
		})}
	d, _ := newTestDispatcher(router, time.Second)

	out := d.Dispatch(context.Background(), "", nil)
	assert.Equal(t, StateCompleted, out.State)
	assert.Empty(t, out.Items)
}

func TestDispatchPreservesHandlerErrorKind(t *testing.T) {
	for _, kind := range []model.ErrorKind{model.KindInvalidInput, model.KindUpstreamUnavailable} {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			router := &mapRouter{fallback: newStub(t, "default", "", 10,
				func(context.Context, string, *model.Situation) ([]model.ResultItem, error) {
					return nil, model.NewHandlerError(kind, fmt.Errorf("secret dsn=postgres://u:p@db"))
				})}
			d, _ := newTestDispatcher(router, time.Second)

			out := d.Dispatch(context.Background(), "x", nil)

			require.True(t, out.Failed())
			assert.Equal(t, kind, out.Kind)
			assert.Equal(t, 0, out.CacheTime)
			require.Len(t, out.Items, 1)
			assert.NotContains(t, out.Items[0].Title, "secret")
			assert.NotContains(t, out.Items[0].Description, "secret")
			assert.NotContains(t, out.Items[0].Content, "secret")
		})
	}
}

func TestDispatchPlainErrorIsInternal(t *testing.T) {
	router := &mapRouter{fallback: newStub(t, "default", "", 10,
		func(context.Context, string, *model.Situation) ([]model.ResultItem, error) {
			return nil, fmt.Errorf("boom")
		})}
	d, buf := newTestDispatcher(router, time.Second)

	out := d.Dispatch(context.Background(), "x", &model.Situation{User: &model.User{ID: 7}})

	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, model.KindInternal, out.Kind)
	assert.Equal(t, titleFailed, out.Items[0].Title)
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "user=7")
}

func TestDispatchRecoversPanic(t *testing.T) {
	router := &mapRouter{
		handlers: map[string]model.Handler{
			"crash": newStub(t, "crash", "crash", 300, func(context.Context, string, *model.Situation) ([]model.ResultItem, error) {
				panic("nil map write")
			}),
		},
		fallback: newStub(t, "default", "", 10, echo("default")),
	}
	d, buf := newTestDispatcher(router, time.Second)

	out := d.Dispatch(context.Background(), "crash now", nil)
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, model.KindInternal, out.Kind)
	assert.Contains(t, buf.String(), "nil map write")

	out = d.Dispatch(context.Background(), "still alive", nil)
	assert.Equal(t, StateCompleted, out.State)
}

func TestDispatchTimesOutSlowHandler(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	router := &mapRouter{fallback: newStub(t, "slow", "", 10,
		func(ctx context.Context, _ string, _ *model.Situation) ([]model.ResultItem, error) {
			<-release
			return []model.ResultItem{{ID: "late", Title: "late"}}, nil
		})}
	d, _ := newTestDispatcher(router, 20*time.Millisecond)

	start := time.Now()
	out := d.Dispatch(context.Background(), "x", nil)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, model.KindTimeout, out.Kind)
	assert.Equal(t, titleUnavailable, out.Items[0].Title)
}

func TestDispatchTimeoutWhenHandlerSeesDeadline(t *testing.T) {
	router := &mapRouter{fallback: newStub(t, "slow", "", 10,
		func(ctx context.Context, _ string, _ *model.Situation) ([]model.ResultItem, error) {
			<-ctx.Done()
			return nil, model.UpstreamError(ctx, ctx.Err())
		})}
	d, _ := newTestDispatcher(router, 20*time.Millisecond)

	out := d.Dispatch(context.Background(), "x", nil)
	assert.Equal(t, model.KindTimeout, out.Kind)
}

func TestDispatchIsRepeatable(t *testing.T) {
	router := &mapRouter{
		handlers: map[string]model.Handler{"char": newStub(t, "char", "char", 300, echo("char"))},
		fallback: newStub(t, "default", "", 10, echo("default")),
	}
	d, _ := newTestDispatcher(router, time.Second)

	first := d.Dispatch(context.Background(), "char nek", nil)
	second := d.Dispatch(context.Background(), "char nek", nil)
	assert.Equal(t, first, second)
}

func TestDispatchConcurrent(t *testing.T) {
	router := &mapRouter{
		handlers: map[string]model.Handler{"char": newStub(t, "char", "char", 300, echo("char"))},
		fallback: newStub(t, "default", "", 10, echo("default")),
	}
	d, _ := newTestDispatcher(router, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := d.Dispatch(context.Background(), fmt.Sprintf("char %d", i), nil)
			assert.Equal(t, fmt.Sprintf("char:%d", i), out.Items[0].ID)
		}(i)
	}
	wg.Wait()
}

func TestDispatchNormalizesResults(t *testing.T) {
	router := &mapRouter{fallback: newStub(t, "many", "", 10,
		func(context.Context, string, *model.Situation) ([]model.ResultItem, error) {
			items := make([]model.ResultItem, 0, 10)
			for i := 0; i < 10; i++ {
				items = append(items, model.ResultItem{ID: fmt.Sprint(i % 5), Title: "t"})
			}
			return items, nil
		})}
	policy := testPolicy(time.Second)
	policy.MaxResults = 3
	d := New(model.KindInline, router, policy, log.NewLogger(&bytes.Buffer{}))

	out := d.Dispatch(context.Background(), "", nil)
	assert.Equal(t, []string{"0", "1", "2"}, ids(out.Items))

	policy.MaxResults = 5
	d.SetPolicy(policy)
	out = d.Dispatch(context.Background(), "", nil)
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, ids(out.Items))
}

func TestDispatchWithoutHandler(t *testing.T) {
	d, _ := newTestDispatcher(&mapRouter{}, time.Second)

	out := d.Dispatch(context.Background(), "x", nil)
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, model.KindInternal, out.Kind)
}

func TestDispatchWithCommandParser(t *testing.T) {
	router := &mapRouter{
		handlers: map[string]model.Handler{"/char": newStub(t, "cmd_char", "/char", 0, echo("cmd"))},
		fallback: newStub(t, "default", "", 0, echo("default")),
	}
	d := New(model.KindMessage, router, testPolicy(time.Second), log.NewLogger(&bytes.Buffer{}), WithParser(ParseCommand))

	out := d.Dispatch(context.Background(), "/char@persona_bot neko", nil)
	assert.Equal(t, "cmd_char", out.Handler)
	assert.Equal(t, "cmd:neko", out.Items[0].ID)
}

func TestErrorItem(t *testing.T) {
	item := ErrorItem(model.KindUpstreamUnavailable)
	assert.Equal(t, "error:upstream_unavailable", item.ID)
	assert.Equal(t, titleUnavailable, item.Title)

	item = ErrorItem(model.KindInvalidInput)
	assert.Equal(t, titleFailed, item.Title)
}
