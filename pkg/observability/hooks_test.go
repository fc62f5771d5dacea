package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingCache struct {
	mu               sync.Mutex
	hits, misses, sets int
}

func (c *countingCache) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits++
}

func (c *countingCache) OnCacheMiss(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
}

func (c *countingCache) OnCacheSet(context.Context, string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
}

func TestRegistryDefaultsAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should default to NoopPipelineHooks")
	}
	if _, ok := Storage().(NoopStorageHooks); !ok {
		t.Error("Storage() should default to NoopStorageHooks")
	}

	counting := &countingCache{}
	SetCacheHooks(counting)
	ctx := context.Background()
	Cache().OnCacheMiss(ctx, "graph")
	Cache().OnCacheSet(ctx, "graph", 10)
	Cache().OnCacheHit(ctx, "graph")
	if counting.hits != 1 || counting.misses != 1 || counting.sets != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", counting.hits, counting.misses, counting.sets)
	}

	// Other categories are untouched by SetCacheHooks.
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("SetCacheHooks should not replace pipeline hooks")
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	counting := &countingCache{}
	SetCacheHooks(counting)
	SetCacheHooks(nil)
	if Cache() != counting {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

func TestConcurrentRegistryAccess(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetCacheHooks(&countingCache{})
		}()
		go func() {
			defer wg.Done()
			Cache().OnCacheMiss(context.Background(), "layout")
		}()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	h.Register()

	ctx := context.Background()
	Pipeline().OnBuildStart(ctx, 31)
	Pipeline().OnReduceComplete(ctx, 16, 15, 3*time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, errors.New("graphviz exploded"))
	Cache().OnCacheHit(ctx, "graph")
	Storage().OnSave(ctx, "state", "rng", 20)

	out := buf.String()
	for _, want := range []string{"build start", "reduce complete", "draws=15", "render failed", "graphviz exploded", "cache hit", "save"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
