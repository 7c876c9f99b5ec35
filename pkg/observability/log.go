package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks forwards every event to a logger at debug level. Failures are
// logged at warn level so they show up without --verbose.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates hooks that log to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

// Register installs h as the pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnLockStart(_ context.Context, entries int) {
	h.Logger.Debug("lock start", "entries", entries)
}

func (h *LogHooks) OnLockComplete(_ context.Context, entries int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("lock failed", "entries", entries, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("lock complete", "entries", entries, "duration", d)
}

func (h *LogHooks) OnInstallStart(_ context.Context, ref, asset string) {
	h.Logger.Debug("install start", "ref", ref, "asset", asset)
}

func (h *LogHooks) OnInstallComplete(_ context.Context, ref string, files int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("install failed", "ref", ref, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("install complete", "ref", ref, "files", files, "duration", d)
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

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
