// Package nav tracks the client's current route. Commands navigate as they
// run, and cross-cutting policies (the 401 redirect, the dashboard role
// guard) read and change the route here.
package nav

import (
	"slices"
	"sync"

	"github.com/meetly-app/meetly/pkg/models"
)

// Well-known routes.
const (
	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"
)

// authRoutes are the routes where a 401 must not trigger another redirect.
var authRoutes = []string{RouteLogin, RouteRegister}

// Navigator records the current route and the history of navigations.
// It is safe for concurrent use.
type Navigator struct {
	mu        sync.Mutex
	current   string
	history   []string
	listeners []func(from, to string)
}

// New returns a Navigator positioned at start.
func New(start string) *Navigator {
	if start == "" {
		start = RouteHome
	}
	return &Navigator{current: start}
}

// Current returns the current route.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate moves to path, records it, and notifies listeners.
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	from, listeners := n.moveLocked(path)
	n.mu.Unlock()

	notify(listeners, from, path)
}

// moveLocked changes the route. Caller must hold mu.
func (n *Navigator) moveLocked(path string) (string, []func(from, to string)) {
	from := n.current
	n.current = path
	n.history = append(n.history, path)
	return from, slices.Clone(n.listeners)
}

func notify(listeners []func(from, to string), from, to string) {
	for _, fn := range listeners {
		fn(from, to)
	}
}

// History returns every route navigated to, oldest first.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.history)
}

// OnNavigate registers fn to run after each navigation.
func (n *Navigator) OnNavigate(fn func(from, to string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// OnAuthPage reports whether the current route is the login or register page.
func (n *Navigator) OnAuthPage() bool {
	return slices.Contains(authRoutes, n.Current())
}

// RedirectToLogin navigates to the login page unless already on an auth
// page, and reports whether it navigated.
func (n *Navigator) RedirectToLogin() bool {
	n.mu.Lock()
	if slices.Contains(authRoutes, n.current) {
		n.mu.Unlock()
		return false
	}
	from, listeners := n.moveLocked(RouteLogin)
	n.mu.Unlock()

	notify(listeners, from, RouteLogin)
	return true
}

// GuardDashboard decides whether user may view the dashboard for required.
// With no user it redirects to the login page; with another role it
// redirects to that role's own dashboard.
func GuardDashboard(required models.Role, user *models.User) (redirect string, ok bool) {
	if user == nil {
		return RouteLogin, false
	}
	if user.Role != required {
		return user.Role.DashboardPath(), false
	}
	return "", true
}
