package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/internal/nav"
	"github.com/meetly-app/meetly/internal/poller"
	"github.com/meetly-app/meetly/pkg/models"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in with email and password",
		Args:        cobra.NoArgs,
		Annotations: route(nav.RouteLogin),
		RunE:        runLogin,
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password")
	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	d := GetDeps()
	bindAnswers(cmd, "email", "password")
	req, err := d.Forms.Login()
	if err != nil {
		return fail(cmd, "Login failed", err)
	}
	res, err := call(cmd, "Signing in", func(ctx context.Context) (*models.AuthResult, error) {
		return d.API.Auth.Login(ctx, req)
	})
	if err != nil {
		return fail(cmd, "Login failed", err)
	}
	return signIn(cmd, res, "Welcome back")
}

// signIn stores the session and moves to the role's dashboard.
func signIn(cmd *cobra.Command, res *models.AuthResult, greeting string) error {
	d := GetDeps()
	if err := d.Session.Save(res.Token, res.User); err != nil {
		return fail(cmd, "Could not save session", err)
	}
	dest := res.User.Role.DashboardPath()
	d.Nav.Navigate(dest)
	d.Logger.Info().Str("user", res.User.ID).Str("role", string(res.User.Role)).Msg("signed in")
	dialog(cmd).Success(greeting+", "+res.User.DisplayName(),
		d.Renderer.KV("Role", string(res.User.Role)),
		d.Renderer.KV("Dashboard", dest),
	)
	return nil
}

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create an account",
		Args:        cobra.NoArgs,
		Annotations: route(nav.RouteRegister),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			bindAnswers(cmd, "name", "email", "password", "role")
			req, err := d.Forms.Register()
			if err != nil {
				return fail(cmd, "Registration failed", err)
			}
			res, err := call(cmd, "Creating account", func(ctx context.Context) (*models.AuthResult, error) {
				return d.API.Auth.Register(ctx, req)
			})
			if err != nil {
				return fail(cmd, "Registration failed", err)
			}
			return signIn(cmd, res, "Welcome")
		},
	}
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "password (at least 6 characters)")
	cmd.Flags().String("role", "", "User or Host (default User)")
	return cmd
}

func newSocialLoginCmd() *cobra.Command {
	var req models.SocialLoginRequest
	cmd := &cobra.Command{
		Use:         "social-login",
		Short:       "Sign in with a token from an identity provider",
		Args:        cobra.NoArgs,
		Annotations: route(nav.RouteLogin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
			if req.Token == "" || req.Email == "" {
				return fail(cmd, "Login failed", errors.New("--token and --email are required"))
			}
			res, err := call(cmd, "Signing in", func(ctx context.Context) (*models.AuthResult, error) {
				return d.API.Auth.SocialLogin(ctx, req)
			})
			if err != nil {
				return fail(cmd, "Login failed", err)
			}
			return signIn(cmd, res, "Welcome")
		},
	}
	cmd.Flags().StringVar(&req.Provider, "provider", "google", "identity provider")
	cmd.Flags().StringVar(&req.Token, "token", "", "provider ID token")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name for new accounts")
	cmd.Flags().StringVar(&req.Avatar, "avatar", "", "avatar URL for new accounts")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if err := d.Session.Clear(); err != nil {
				return fail(cmd, "Logout failed", err)
			}
			d.Nav.Navigate(nav.RouteLogin)
			dialog(cmd).Success("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			u, err := d.CurrentUser()
			if err != nil {
				return fail(cmd, "Not signed in", err)
			}
			if remote {
				u, err = call(cmd, "Loading profile", d.API.Auth.Me)
				if err != nil {
					return fail(cmd, "Could not load profile", err)
				}
				if err := d.Session.Save(d.Session.Token(), *u); err != nil {
					return fail(cmd, "Could not save session", err)
				}
			}
			printLine(cmd, d.Renderer.Profile(u))
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "refresh", false, "re-fetch the profile from the server")
	return cmd
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard [user|host|admin]",
		Short: "Show the dashboard for your role",
		Long: `Show the dashboard for a role. Asking for another role's dashboard
redirects to your own.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"user", "host", "admin"},
		RunE:      runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	d := GetDeps()
	u, err := d.CurrentUser()
	if err != nil {
		return fail(cmd, "Not signed in", err)
	}

	required := u.Role
	if len(args) == 1 {
		if required, err = models.ParseRole(args[0]); err != nil {
			return fail(cmd, "Unknown dashboard", err)
		}
	}
	d.Nav.Navigate(required.DashboardPath())
	if redirect, ok := nav.GuardDashboard(required, u); !ok {
		d.Nav.Navigate(redirect)
		printLine(cmd, d.Renderer.Warning("Redirected to "+redirect))
	}

	printLine(cmd, d.Renderer.Card(string(u.Role)+" dashboard", d.Renderer.KV("Signed in", u.DisplayName())))
	if d.Config.Get().Poll.Enabled {
		if c, err := pollOnce(cmd); err == nil {
			printLine(cmd, d.Renderer.Counts(c.Unread, c.Pending, c.At))
		}
	}

	switch u.Role {
	case models.RoleHost:
		return hostDashboard(cmd, u)
	case models.RoleAdmin:
		return adminDashboard(cmd)
	default:
		return userDashboard(cmd, u)
	}
}

func userDashboard(cmd *cobra.Command, u *models.User) error {
	d := GetDeps()
	events, err := call(cmd, "Loading your events", func(ctx context.Context) ([]models.Event, error) {
		return d.API.Users.Events(ctx, u.ID)
	})
	if err != nil {
		return fail(cmd, "Could not load your events", err)
	}
	printLine(cmd, "\nJoined events")
	printLine(cmd, d.Renderer.EventTable(events, u.ID))
	return nil
}

func hostDashboard(cmd *cobra.Command, u *models.User) error {
	d := GetDeps()
	events, err := call(cmd, "Loading hosted events", func(ctx context.Context) ([]models.Event, error) {
		return d.API.Users.HostedEvents(ctx, u.ID)
	})
	if err != nil {
		return fail(cmd, "Could not load hosted events", err)
	}
	printLine(cmd, "\nHosted events")
	printLine(cmd, d.Renderer.EventTable(events, ""))

	rev, err := call(cmd, "Loading revenue", d.API.Payments.Revenue)
	if err != nil {
		return fail(cmd, "Could not load revenue", err)
	}
	printLine(cmd, d.Renderer.Revenue(rev))
	return nil
}

func adminDashboard(cmd *cobra.Command) error {
	d := GetDeps()
	stats, err := call(cmd, "Loading statistics", d.API.Admin.Stats)
	if err != nil {
		return fail(cmd, "Could not load statistics", err)
	}
	printLine(cmd, d.Renderer.AdminStats(stats))

	approved := false
	pending, err := call(cmd, "Loading pending events", func(ctx context.Context) ([]models.Event, error) {
		return d.API.Admin.Events(ctx, models.AdminEventFilter{Approved: &approved})
	})
	if err != nil {
		return fail(cmd, "Could not load pending events", err)
	}
	printLine(cmd, "\nAwaiting approval")
	printLine(cmd, d.Renderer.EventTable(pending, ""))
	return nil
}

// pollOnce is shared by commands that show the badge counts.
func pollOnce(cmd *cobra.Command) (poller.Counts, error) {
	p, err := GetDeps().EnsurePoller()
	if err != nil {
		return poller.Counts{}, err
	}
	return p.Poll(cmd.Context())
}
