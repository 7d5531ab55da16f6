package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meetly-app/meetly/internal/apitest"
	"github.com/meetly-app/meetly/internal/config"
)

func (h *harness) sectionFile(name string) string {
	return filepath.Join(h.dir, "config", "sections", name)
}

func TestConfigSet_PersistsAcrossRuns(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("config", "set", "poll.interval", "10s")
	if !strings.Contains(out, "Saved poll.interval") {
		t.Errorf("set output = %q", out)
	}
	if _, err := os.Stat(h.sectionFile("poll.yaml")); err != nil {
		t.Fatalf("poll.yaml not written: %v", err)
	}

	out = h.mustRun("config", "show")
	for _, want := range []string{"10s", "poll.yaml", "api.yaml"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
	if got := h.deps.Config.Get().Poll.Interval; got != 10*time.Second {
		t.Errorf("poll.interval on the next run = %v, want 10s", got)
	}
}

func TestConfigSet_DoesNotPersistFlagOverrides(t *testing.T) {
	h := newHarness(t)

	h.mustRun("config", "set", "api.timeout", "20s")
	data, err := os.ReadFile(h.sectionFile("api.yaml"))
	if err != nil {
		t.Fatalf("read api.yaml: %v", err)
	}
	if strings.Contains(string(data), h.srv.APIURL()) {
		t.Errorf("--api-url leaked into api.yaml:\n%s", data)
	}
	if !strings.Contains(string(data), config.DefaultBaseURL) {
		t.Errorf("api.yaml should keep the stored base url:\n%s", data)
	}
}

func TestConfigSet_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		wantIs error
	}{
		{"unknown section", []string{"config", "set", "theme.color", "red"}, ErrUnknownConfigKey},
		{"missing key", []string{"config", "set", "poll", "10s"}, ErrUnknownConfigKey},
		{"unknown key", []string{"config", "set", "poll.speed", "fast"}, ErrUnknownConfigKey},
		{"interval below floor", []string{"config", "set", "poll.interval", "1s"}, config.ErrInvalidConfig},
		{"relative base url", []string{"config", "set", "api.base_url", "/api"}, config.ErrInvalidBaseURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			out, err := h.run(tt.args...)
			if !errors.Is(err, tt.wantIs) {
				t.Fatalf("err = %v, want %v", err, tt.wantIs)
			}
			if !strings.Contains(out, "Setting not saved") {
				t.Errorf("alert output = %q", out)
			}
			if _, err := os.Stat(filepath.Join(h.dir, "config", "sections")); !os.IsNotExist(err) {
				t.Errorf("nothing should be written on a rejected set, stat err = %v", err)
			}
		})
	}
}

func TestConfigSet_BadDuration(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("config", "set", "api.timeout", "soon")
	if err == nil || !strings.Contains(err.Error(), "invalid value for timeout") {
		t.Fatalf("err = %v, want a parse error", err)
	}
}

func TestWatch_RefusesWhenPollingDisabled(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.UserEmail)
	h.mustRun("config", "set", "poll.enabled", "false")
	before := h.countRequests("GET", "/api/messages/unread-count")

	_, err := h.run("watch")
	if !errors.Is(err, ErrPollingDisabled) {
		t.Fatalf("err = %v, want ErrPollingDisabled", err)
	}
	if n := h.countRequests("GET", "/api/messages/unread-count"); n != before {
		t.Errorf("unread-count requests = %d, want %d", n, before)
	}
}
