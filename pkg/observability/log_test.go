package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnLockStart(ctx, 3)
	h.OnInstallComplete(ctx, "gh:a/b", 2, time.Millisecond, nil)
	h.OnResponse(ctx, "GET", "api.github.com", "/repos/a/b", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"lock start", "entries=3", "install complete", "files=2", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksFailuresWarn(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel}))

	h.OnInstallStart(context.Background(), "gh:a/b", "x.zip")
	if buf.Len() != 0 {
		t.Errorf("debug events should be filtered at warn level, got %q", buf.String())
	}

	h.OnInstallComplete(context.Background(), "gh:a/b", 0, time.Millisecond, errors.New("boom"))
	if !strings.Contains(buf.String(), "install failed") {
		t.Errorf("failure should log at warn level, got %q", buf.String())
	}
}

func TestLogHooksRegister(t *testing.T) {
	defer Reset()

	h := NewLogHooks(nil)
	h.Register()

	if Pipeline() != PipelineHooks(h) {
		t.Error("Register should install pipeline hooks")
	}
	if Cache() != CacheHooks(h) {
		t.Error("Register should install cache hooks")
	}
	if HTTP() != HTTPHooks(h) {
		t.Error("Register should install HTTP hooks")
	}
}
