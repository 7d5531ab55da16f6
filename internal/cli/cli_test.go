package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meetly-app/meetly/internal/apitest"
	"github.com/meetly-app/meetly/internal/session"
)

// harness runs the real command tree against the fake API with a private
// config directory. Each run wires fresh dependencies, like a new process.
type harness struct {
	t    *testing.T
	srv  *apitest.Server
	dir  string
	deps *Dependencies
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("MEETLY_API_URL", "")
	t.Setenv("MEETLY_NO_COLOR", "")
	t.Cleanup(func() { SetDeps(nil) })
	return &harness{t: t, srv: apitest.New(t), dir: t.TempDir()}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	SetDeps(nil)

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config-dir", h.dir,
		"--api-url", h.srv.APIURL(),
		"--no-color",
		"--non-interactive",
	}, args...))

	err := root.ExecuteContext(context.Background())
	h.deps = GetDeps()
	if h.deps != nil {
		if cerr := h.deps.Close(); cerr != nil {
			h.t.Fatalf("close deps: %v", cerr)
		}
	}
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("meetly %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (h *harness) login(email string) {
	h.t.Helper()
	h.mustRun("login", "--email", email, "--password", apitest.Password)
}

func (h *harness) sessionFile() string {
	return filepath.Join(h.dir, session.FileName)
}

func (h *harness) countRequests(method, path string) int {
	n := 0
	for _, r := range h.srv.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func TestLogin_StoresSessionAndNavigates(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "--email", apitest.UserEmail, "--password", apitest.Password)
	if !strings.Contains(out, "Welcome back, Demo User") {
		t.Errorf("login output = %q, want greeting", out)
	}
	if got := h.deps.Nav.Current(); got != "/dashboard/user" {
		t.Errorf("route after login = %q, want /dashboard/user", got)
	}
	if _, err := os.Stat(h.sessionFile()); err != nil {
		t.Fatalf("session file: %v", err)
	}

	out = h.mustRun("whoami")
	if !strings.Contains(out, apitest.UserEmail) {
		t.Errorf("whoami output = %q, want email", out)
	}
}

func TestLogin_InvalidCredentialsLeavesStorage(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "--email", apitest.UserEmail, "--password", "wrong-password")
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if !IsReported(err) {
		t.Errorf("error %v should be reported through a dialog", err)
	}
	if !strings.Contains(out, "Invalid email or password") {
		t.Errorf("alert output = %q, want server message", out)
	}
	if _, err := os.Stat(h.sessionFile()); !os.IsNotExist(err) {
		t.Errorf("session file should not exist, stat err = %v", err)
	}
	if got := h.deps.Nav.Current(); got != "/login" {
		t.Errorf("route = %q, want /login", got)
	}
	if h.deps.Session.Token() != "" {
		t.Error("token should stay empty")
	}
}

func TestLogin_MissingPasswordHeadless(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "--email", apitest.UserEmail)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out, "--password") {
		t.Errorf("output = %q, want hint about --password", out)
	}
	if n := h.countRequests("POST", "/api/auth/login"); n != 0 {
		t.Errorf("login requests = %d, want 0", n)
	}
}

func TestRegister_SignsInAsHost(t *testing.T) {
	h := newHarness(t)

	h.mustRun("register", "--name", "Nia Host", "--email", "nia@example.com", "--password", "secret1", "--role", "host")
	if got := h.deps.Nav.Current(); got != "/dashboard/host" {
		t.Errorf("route = %q, want /dashboard/host", got)
	}
	u := h.deps.Session.User()
	if u == nil || u.Email != "nia@example.com" {
		t.Fatalf("stored user = %+v", u)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.UserEmail)

	h.mustRun("logout")
	if _, err := os.Stat(h.sessionFile()); !os.IsNotExist(err) {
		t.Errorf("session file should be removed, stat err = %v", err)
	}

	_, err := h.run("whoami")
	if !errors.Is(err, session.ErrNoSession) {
		t.Errorf("whoami err = %v, want ErrNoSession", err)
	}
	if got := h.deps.Nav.Current(); got != "/login" {
		t.Errorf("route = %q, want /login", got)
	}
}

func TestDashboard_GuardRedirectsToOwnRole(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.UserEmail)

	for _, role := range []string{"host", "admin"} {
		out := h.mustRun("dashboard", role)
		if !strings.Contains(out, "Redirected to /dashboard/user") {
			t.Errorf("dashboard %s output = %q, want redirect", role, out)
		}
		if got := h.deps.Nav.Current(); got != "/dashboard/user" {
			t.Errorf("dashboard %s route = %q, want /dashboard/user", role, got)
		}
	}

	out := h.mustRun("dashboard")
	if strings.Contains(out, "Redirected") {
		t.Errorf("own dashboard should not redirect: %q", out)
	}
	if !strings.Contains(out, "Joined events") {
		t.Errorf("user dashboard output = %q", out)
	}
}

func TestDashboard_WithoutSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("dashboard", "user")
	if !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
	if got := h.deps.Nav.Current(); got != "/login" {
		t.Errorf("route = %q, want /login", got)
	}
}

func TestDashboard_HostAndAdmin(t *testing.T) {
	h := newHarness(t)

	h.login(apitest.HostEmail)
	out := h.mustRun("dashboard")
	for _, want := range []string{"Hosted events", "Board Game Night", "Revenue"} {
		if !strings.Contains(out, want) {
			t.Errorf("host dashboard missing %q:\n%s", want, out)
		}
	}

	h.login(apitest.AdminEmail)
	out = h.mustRun("dashboard")
	for _, want := range []string{"Platform", "Awaiting approval", "Rooftop Yoga"} {
		if !strings.Contains(out, want) {
			t.Errorf("admin dashboard missing %q:\n%s", want, out)
		}
	}
}

func TestUnauthorized_ClearsSessionAndRedirectsOnce(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.UserEmail)
	h.srv.RotateSecret()

	_, err := h.run("users", "events")
	if err == nil {
		t.Fatal("expected 401 error")
	}
	if _, err := os.Stat(h.sessionFile()); !os.IsNotExist(err) {
		t.Errorf("session file should be cleared, stat err = %v", err)
	}
	logins := 0
	for _, r := range h.deps.Nav.History() {
		if r == "/login" {
			logins++
		}
	}
	if logins != 1 {
		t.Errorf("navigations to /login = %d, want 1 (history %v)", logins, h.deps.Nav.History())
	}
}

func TestUnauthorized_OnLoginPageDoesNotNavigate(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.UserEmail)

	_, err := h.run("login", "--email", apitest.UserEmail, "--password", "nope")
	if err == nil {
		t.Fatal("expected failure")
	}
	if got := h.deps.Nav.History(); len(got) != 1 || got[0] != "/login" {
		t.Errorf("history = %v, want only the login page", got)
	}
	if h.deps.Session.Token() == "" {
		t.Error("a failed login on the login page must keep the stored session")
	}
}

func TestInitDependencies_LogsNavigationAndSessionChanges(t *testing.T) {
	h := newHarness(t)
	var stderr bytes.Buffer
	if err := InitDependencies(Options{
		ConfigDir: h.dir,
		APIURL:    h.srv.APIURL(),
		NoColor:   true,
		Verbose:   true,
		Stderr:    &stderr,
	}); err != nil {
		t.Fatal(err)
	}
	d := GetDeps()
	t.Cleanup(func() { _ = d.Close() })

	d.Nav.Navigate("/events")
	if err := d.Session.Clear(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"navigate", "to=/events", "session changed", "signed_in=false"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("verbose log missing %q:\n%s", want, stderr.String())
		}
	}
	if d.Config.Get().API.BaseURL == h.srv.APIURL() {
		t.Error("--api-url must not leak into the stored configuration")
	}
}

func TestRouteFor(t *testing.T) {
	root := NewRootCmd()
	show, _, err := root.Find([]string{"events", "show"})
	if err != nil {
		t.Fatal(err)
	}
	if got := routeFor(show, []string{"abc"}); got != "/events/abc" {
		t.Errorf("routeFor = %q, want /events/abc", got)
	}
	users, _, _ := root.Find([]string{"users", "show"})
	if got := routeFor(users, nil); got != "/profile" {
		t.Errorf("routeFor(users show) = %q, want /profile", got)
	}
	logout, _, _ := root.Find([]string{"logout"})
	if got := routeFor(logout, nil); got != "" {
		t.Errorf("routeFor(logout) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{session.ErrNoSession, "Please log in to continue."},
		{context.DeadlineExceeded, "The server took too long to respond. Please try again."},
		{errors.New("title is required"), "title is required"},
	}
	for _, tt := range tests {
		if got := userMessage(tt.err); got != tt.want {
			t.Errorf("userMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
