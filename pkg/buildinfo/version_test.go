package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v1.2.3"

	ua := UserAgent()
	if !strings.HasPrefix(ua, "sqlite-package-manager/v1.2.3 (") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(ua, Homepage) {
		t.Errorf("UserAgent() = %q, missing homepage", ua)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
}
