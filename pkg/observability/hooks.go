// Package observability lets pathtrace libraries report events without
// importing a metrics backend.
//
// The pipeline, the caches and the HTTP API call the hook sets returned by
// [Pipeline], [Cache] and [HTTP]. Until something is registered these are
// no-ops. The serve command registers the Prometheus implementation from
// the prom subpackage:
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	observability.Register(m)
//	defer observability.Reset()
//
// Emitting an event:
//
//	observability.Pipeline().OnSearchStart(ctx, "astar", g.NodeCount())
//	res, err := search.Search(...)
//	observability.Pipeline().OnSearchComplete(ctx, "astar", len(res.Trace.Expanded), res.Reachable(), res.Elapsed, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the load, search and render stages.
// algorithm is the canonical strategy name, for example "weighted-astar".
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, nodeCount, edgeCount int, duration time.Duration, err error)

	OnSearchStart(ctx context.Context, algorithm string, nodeCount int)
	// OnSearchComplete reports the number of expanded nodes and whether a
	// path was found. An unreachable goal is not an error.
	OnSearchComplete(ctx context.Context, algorithm string, expanded int, reachable bool, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is "search" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API. route is the chi route
// pattern, not the raw path, to keep label cardinality bounded.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// NoopPipelineHooks ignores all pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnSearchStart(context.Context, string, int)                         {}
func (NoopPipelineHooks) OnSearchComplete(context.Context, string, int, bool, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks ignores all cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores all HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// holder boxes an interface value so it can live in an atomic.Pointer.
type holder[T any] struct{ hooks T }

var (
	pipelineHooks atomic.Pointer[holder[PipelineHooks]]
	cacheHooks    atomic.Pointer[holder[CacheHooks]]
	httpHooks     atomic.Pointer[holder[HTTPHooks]]
)

func init() { Reset() }

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineHooks.Store(&holder[PipelineHooks]{h})
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.Store(&holder[CacheHooks]{h})
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.Store(&holder[HTTPHooks]{h})
	}
}

// Register installs h for every hook interface it implements and reports
// whether it implemented any.
func Register(h any) bool {
	var ok bool
	if p, is := h.(PipelineHooks); is {
		SetPipelineHooks(p)
		ok = true
	}
	if c, is := h.(CacheHooks); is {
		SetCacheHooks(c)
		ok = true
	}
	if x, is := h.(HTTPHooks); is {
		SetHTTPHooks(x)
		ok = true
	}
	return ok
}

func Pipeline() PipelineHooks { return pipelineHooks.Load().hooks }
func Cache() CacheHooks       { return cacheHooks.Load().hooks }
func HTTP() HTTPHooks         { return httpHooks.Load().hooks }

// Reset restores the no-op hooks. Tests that register hooks should defer it.
func Reset() {
	pipelineHooks.Store(&holder[PipelineHooks]{NoopPipelineHooks{}})
	cacheHooks.Store(&holder[CacheHooks]{NoopCacheHooks{}})
	httpHooks.Store(&holder[HTTPHooks]{NoopHTTPHooks{}})
}
