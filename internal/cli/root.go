package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/pkg/version"
)

// annotationRoute names the page a command stands for. "{id}" is replaced
// with the first argument.
const annotationRoute = "route"

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if d := GetDeps(); d != nil {
		if cerr := d.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// NewRootCmd returns the meetly command tree. Dependencies are wired on
// first use unless SetDeps already provided them.
func NewRootCmd() *cobra.Command {
	var (
		opts Options
		yes  bool
	)

	root := &cobra.Command{
		Use:   "meetly",
		Short: "Discover, host and join events from the terminal",
		Long: `meetly is a terminal client for the Meetly events marketplace.

Browse and join events, pay for tickets, chat with other members once
they accept your request, and run host or admin dashboards.

Examples:
  meetly login --email user@gmail.com --password '...'
  meetly events list --category Music
  meetly events join <event-id>
  meetly watch`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if GetDeps() == nil {
				opts.Stderr = cmd.ErrOrStderr()
				if err := InitDependencies(opts); err != nil {
					return err
				}
			}
			if yes {
				GetDeps().Headless.SetAnswers(map[string]string{"yes": "true"})
			}
			if route := routeFor(cmd, args); route != "" {
				GetDeps().Nav.Navigate(route)
			}
			return nil
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("meetly %s\n", version.GetFullVersion()))

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigDir, "config-dir", "", "configuration and session directory (default ~/.meetly)")
	pf.StringVar(&opts.APIURL, "api-url", "", "API base URL, e.g. http://localhost:5000/api")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colors and animations")
	pf.BoolVar(&opts.Verbose, "verbose", false, "log requests to stderr")
	pf.BoolVar(&opts.NonInteractive, "non-interactive", false, "never prompt; read answers from flags")
	pf.BoolVarP(&yes, "yes", "y", false, "confirm destructive actions without asking")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newSocialLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newDashboardCmd(),
		newEventsCmd(),
		newUsersCmd(),
		newConversationsCmd(),
		newMessagesCmd(),
		newChatCmd(),
		newPaymentsCmd(),
		newSubscriptionsCmd(),
		newAdminCmd(),
		newReviewsCmd(),
		newCommentsCmd(),
		newWebsiteReviewsCmd(),
		newWatchCmd(),
		newConfigCmd(),
	)
	return root
}

func routeFor(cmd *cobra.Command, args []string) string {
	route := cmd.Annotations[annotationRoute]
	if !strings.Contains(route, "{id}") {
		return route
	}
	if len(args) == 0 {
		return strings.Replace(route, "/{id}", "", 1)
	}
	return strings.ReplaceAll(route, "{id}", args[0])
}

func route(path string) map[string]string {
	return map[string]string{annotationRoute: path}
}
