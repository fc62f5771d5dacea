// Package observability provides hooks for metrics, tracing, and logging.
//
// Hooks default to no-ops. A binary registers its own implementations once
// at startup (see [LogHooks] for one that writes debug logs):
//
//	observability.SetCacheHooks(&cacheMetrics{})
//
// Library code emits events through the registry:
//
//	observability.Pipeline().OnBuildStart(ctx, store.Len())
//	// ... build the graph ...
//	observability.Pipeline().OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), duration, err)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the build → reduce → render pipeline.
type PipelineHooks interface {
	// Build events
	OnBuildStart(ctx context.Context, users int)
	OnBuildComplete(ctx context.Context, nodes, edges int, duration time.Duration, err error)

	// Reduce events. draws is the number of random draws consumed.
	OnReduceStart(ctx context.Context, nodes int)
	OnReduceComplete(ctx context.Context, nodes, draws int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from persistent graph and random-state storage.
type StorageHooks interface {
	// OnLoad records a load attempt; found is false when nothing was stored.
	OnLoad(ctx context.Context, kind, name string, found bool)

	// OnSave records a successful write of size bytes.
	OnSave(ctx context.Context, kind, name string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnReduceStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnReduceComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnLoad(context.Context, string, string, bool) {}
func (NoopStorageHooks) OnSave(context.Context, string, string, int)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registry is replaced wholesale on every Set call, so readers never lock.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	storage  StorageHooks
}

var (
	current atomic.Pointer[registry]
	writeMu sync.Mutex
)

func init() { Reset() }

func update(fn func(r *registry)) {
	writeMu.Lock()
	defer writeMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
// Call it at startup, before the first pipeline run.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetStorageHooks registers storage hooks. A nil h is ignored.
func SetStorageHooks(h StorageHooks) {
	if h != nil {
		update(func(r *registry) { r.storage = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// Storage returns the registered storage hooks.
func Storage() StorageHooks { return current.Load().storage }

// Reset restores the no-op hooks.
func Reset() {
	writeMu.Lock()
	defer writeMu.Unlock()
	current.Store(&registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		storage:  NoopStorageHooks{},
	})
}
