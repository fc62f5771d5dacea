package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// PipelineHooks, CacheHooks and StorageHooks.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ StorageHooks  = (*LogHooks)(nil)
)

// NewLogHooks returns hooks logging to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l.WithPrefix("events")}
}

// Register installs h for all event categories.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetStorageHooks(h)
}

func (h *LogHooks) done(stage string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "duration", d.Round(time.Millisecond))
	if err != nil {
		h.Logger.Debug(stage+" failed", append(kv, "error", err)...)
		return
	}
	h.Logger.Debug(stage+" complete", kv...)
}

func (h *LogHooks) OnBuildStart(_ context.Context, users int) {
	h.Logger.Debug("build start", "users", users)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	h.done("build", d, err, "nodes", nodes, "edges", edges)
}

func (h *LogHooks) OnReduceStart(_ context.Context, nodes int) {
	h.Logger.Debug("reduce start", "nodes", nodes)
}

func (h *LogHooks) OnReduceComplete(_ context.Context, nodes, draws int, d time.Duration, err error) {
	h.done("reduce", d, err, "nodes", nodes, "draws", draws)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", d, err, "formats", formats)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnLoad(_ context.Context, kind, name string, found bool) {
	h.Logger.Debug("load", "kind", kind, "name", name, "found", found)
}

func (h *LogHooks) OnSave(_ context.Context, kind, name string, size int) {
	h.Logger.Debug("save", "kind", kind, "name", name, "bytes", size)
}
