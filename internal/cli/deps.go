// Package cli provides the Cobra command tree and dependency wiring for
// the meetly client. This file defines the Dependencies struct
// (Composition Root) that wires all client modules together.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meetly-app/meetly/internal/api"
	"github.com/meetly-app/meetly/internal/config"
	"github.com/meetly-app/meetly/internal/conversation"
	"github.com/meetly-app/meetly/internal/logging"
	"github.com/meetly-app/meetly/internal/nav"
	"github.com/meetly-app/meetly/internal/notify"
	"github.com/meetly-app/meetly/internal/poller"
	"github.com/meetly-app/meetly/internal/session"
	"github.com/meetly-app/meetly/internal/ui"
	"github.com/meetly-app/meetly/pkg/models"
	"github.com/meetly-app/meetly/pkg/version"
)

// Options are the root flags that shape dependency wiring.
type Options struct {
	ConfigDir      string
	APIURL         string
	NoColor        bool
	Verbose        bool
	NonInteractive bool
	Stderr         io.Writer
}

// Dependencies holds all services used by CLI commands. This is the
// Composition Root: the only place where concrete types are instantiated
// and wired together.
type Dependencies struct {
	Config    *config.ConfigManager
	Logger    zerolog.Logger
	Bus       *notify.Bus
	Session   session.Store
	Nav       *nav.Navigator
	API       *api.Client
	Handshake *conversation.Handshake
	Theme     *ui.Theme
	Headless  *ui.HeadlessManager
	Renderer  *ui.Renderer
	Forms     *ui.Forms
	Browser   BrowserOpener
	Now       func() time.Time

	pollerOnce sync.Once
	poller     *poller.Poller
	pollerErr  error
	logCloser  io.Closer
}

// deps is the global dependencies instance, initialized by InitDependencies.
var deps *Dependencies

// InitDependencies loads configuration and wires every client module.
// It is called once per command execution from the root's pre-run hook.
func InitDependencies(opts Options) error {
	if err := config.LoadDotEnv(""); err != nil {
		return err
	}

	mgr := config.NewConfigManager()
	loaded, err := mgr.Load(opts.ConfigDir)
	if err != nil {
		return err
	}
	// Flags shape this run only; the manager keeps what Save persists.
	cfg := *loaded
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}
	if opts.NoColor {
		cfg.System.NoColor = true
	}
	if opts.NonInteractive {
		cfg.System.NonInteractive = true
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	logger, closer, err := logging.New(cfg.System, logging.Options{Verbose: opts.Verbose, Stderr: opts.Stderr})
	if err != nil {
		return err
	}

	d := &Dependencies{
		Config:    mgr,
		Logger:    logger,
		Bus:       notify.New(),
		Nav:       nav.New(nav.RouteHome),
		Theme:     ui.NewTheme(cfg.System.NoColor),
		Headless:  ui.NewHeadlessManager(),
		Browser:   NewSystemBrowser(),
		Now:       time.Now,
		logCloser: closer,
	}
	if cfg.System.NonInteractive {
		d.Headless.ForceHeadless(true)
	}
	d.Renderer = ui.NewRenderer(d.Theme)
	d.Forms = ui.NewForms(d.Theme, d.Headless)
	d.Nav.OnNavigate(func(from, to string) {
		d.Logger.Debug().Str("from", from).Str("to", to).Msg("navigate")
	})

	store, err := session.OpenFileStore(mgr.Dir(), d.Bus)
	if err != nil {
		_ = closer.Close()
		return err
	}
	d.Session = store
	store.Subscribe(func(c session.Change) {
		d.Logger.Debug().Bool("signed_in", c.SignedIn()).Msg("session changed")
	})

	client, err := api.New(api.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		Tokens:         store,
		OnUnauthorized: d.handleUnauthorized,
		Logger:         &d.Logger,
		UserAgent:      version.UserAgent(),
	})
	if err != nil {
		_ = closer.Close()
		return fmt.Errorf("api client: %w", err)
	}
	d.API = client
	d.Handshake = conversation.New(client.Conversations, d.Bus)

	d.Logger.Debug().
		Str("api", client.BaseURL()).
		Str("config_dir", mgr.Dir()).
		Bool("headless", d.Headless.IsHeadless()).
		Msg("dependencies initialized")

	deps = d
	return nil
}

// GetDeps returns the current Dependencies instance.
// Returns nil if InitDependencies has not been called.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// handleUnauthorized is the client-wide 401 policy: outside the auth pages
// the session is cleared and the user is sent to the login page. On the
// auth pages it does nothing, so a burst of 401s navigates once.
func (d *Dependencies) handleUnauthorized(apiErr *api.Error) {
	if d.Nav.OnAuthPage() {
		return
	}
	if err := d.Session.Clear(); err != nil {
		d.Logger.Warn().Err(err).Msg("clear session after 401")
	}
	if d.Nav.RedirectToLogin() {
		d.Logger.Warn().Str("request_id", apiErr.RequestID).Msg("session rejected, redirected to login")
	}
}

// ErrPollingDisabled is returned by EnsurePoller when poll.enabled is false.
var ErrPollingDisabled = errors.New("polling is disabled (poll.enabled is false)")

// EnsurePoller lazily builds the unread/pending count poller.
func (d *Dependencies) EnsurePoller() (*poller.Poller, error) {
	d.pollerOnce.Do(func() {
		cfg := d.Config.Get()
		if cfg != nil && !cfg.Poll.Enabled {
			d.pollerErr = ErrPollingDisabled
			return
		}
		interval := poller.DefaultInterval
		if cfg != nil && cfg.Poll.Interval > 0 {
			interval = cfg.Poll.Interval
		}
		d.poller, d.pollerErr = poller.New(poller.Options{
			Messages: d.API.Messages,
			Requests: d.API.Conversations,
			Interval: interval,
			Bus:      d.Bus,
			Logger:   &d.Logger,
			Now:      d.Now,
		})
	})
	return d.poller, d.pollerErr
}

// CurrentUser returns the signed-in user. Without a live session it
// navigates to the login page and returns session.ErrNoSession.
func (d *Dependencies) CurrentUser() (*models.User, error) {
	u, err := session.Require(d.Session, d.Now())
	if errors.Is(err, session.ErrNoSession) {
		d.Nav.RedirectToLogin()
	}
	return u, err
}

// Close releases the log file, if any.
func (d *Dependencies) Close() error {
	if d.logCloser == nil {
		return nil
	}
	return d.logCloser.Close()
}
