package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/internal/ui"
	"github.com/meetly-app/meetly/pkg/models"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate users, events and reviews (admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			GetDeps().Nav.Navigate(models.RoleAdmin.DashboardPath())
			return nil
		},
	}

	var (
		approved string
		status   string
	)
	events := &cobra.Command{
		Use:   "events",
		Short: "List events for moderation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			var f models.AdminEventFilter
			if approved != "" {
				b, err := strconv.ParseBool(approved)
				if err != nil {
					return fail(cmd, "Invalid filter", fmt.Errorf("--approved must be true or false"))
				}
				f.Approved = &b
			}
			f.Status = models.EventStatus(strings.ToLower(status))
			events, err := call(cmd, "Loading events", func(ctx context.Context) ([]models.Event, error) {
				return d.API.Admin.Events(ctx, f)
			})
			if err != nil {
				return fail(cmd, "Could not load events", err)
			}
			printLine(cmd, d.Renderer.EventTable(events, ""))
			return nil
		},
	}
	events.Flags().StringVar(&approved, "approved", "", "true or false")
	events.Flags().StringVar(&status, "status", "", "event status")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "users",
			Short: "List all accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				users, err := call(cmd, "Loading users", d.API.Admin.Users)
				if err != nil {
					return fail(cmd, "Could not load users", err)
				}
				printLine(cmd, d.Renderer.Users(users))
				return nil
			},
		},
		newSetActiveCmd("activate", "Restore a suspended account", true),
		newSetActiveCmd("deactivate", "Suspend an account", false),
		newRemoveCmd("delete-user", "user", "Delete an account and its data",
			func(ctx context.Context, id string) error { return GetDeps().API.Admin.DeleteUser(ctx, id) }),
		events,
		newApproveCmd("approve", "Approve an event for listing", true),
		newApproveCmd("reject", "Reject and cancel an event", false),
		newRemoveCmd("delete-event", "event", "Delete any event",
			func(ctx context.Context, id string) error { return GetDeps().API.Admin.DeleteEvent(ctx, id) }),
		&cobra.Command{
			Use:   "reviews",
			Short: "List all reviews",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				reviews, err := call(cmd, "Loading reviews", d.API.Admin.Reviews)
				if err != nil {
					return fail(cmd, "Could not load reviews", err)
				}
				printLine(cmd, d.Renderer.Reviews(reviews))
				return nil
			},
		},
		newRemoveCmd("delete-review", "review", "Delete any review",
			func(ctx context.Context, id string) error { return GetDeps().API.Admin.DeleteReview(ctx, id) }),
		&cobra.Command{
			Use:   "stats",
			Short: "Show platform totals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				stats, err := call(cmd, "Loading statistics", d.API.Admin.Stats)
				if err != nil {
					return fail(cmd, "Could not load statistics", err)
				}
				printLine(cmd, d.Renderer.AdminStats(stats))
				return nil
			},
		},
	)
	return cmd
}

func newSetActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			u, err := call(cmd, "Updating account", func(ctx context.Context) (*models.User, error) {
				return d.API.Admin.SetUserActive(ctx, args[0], active)
			})
			if err != nil {
				return fail(cmd, "Could not update account", err)
			}
			state := "active"
			if !u.IsActive {
				state = "suspended"
			}
			dialog(cmd).Success(u.DisplayName() + " is now " + state)
			return nil
		},
	}
}

func newApproveCmd(use, short string, approve bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <event-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			ev, err := call(cmd, "Updating event", func(ctx context.Context) (*models.Event, error) {
				return d.API.Admin.ApproveEvent(ctx, args[0], approve)
			})
			if err != nil {
				return fail(cmd, "Could not update event", err)
			}
			verb := "approved"
			if !approve {
				verb = "rejected"
			}
			dialog(cmd).Success(ev.Title+" "+verb, d.Renderer.KV("Status", ui.Availability(ev)))
			return nil
		},
	}
}

func newRemoveCmd(use, noun, short string, remove func(ctx context.Context, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <" + noun + "-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			ok, err := dialog(cmd).Confirm("Delete "+noun, "This cannot be undone.")
			if err != nil || !ok {
				return err
			}
			if err := run(cmd, "Deleting "+noun, func(ctx context.Context) error {
				return remove(ctx, args[0])
			}); err != nil {
				return fail(cmd, "Could not delete "+noun, err)
			}
			dialog(cmd).Success(strings.ToUpper(noun[:1]) + noun[1:] + " deleted")
			return nil
		},
	}
}
