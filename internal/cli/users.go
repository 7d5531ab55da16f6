package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/pkg/models"
)

// userArg returns args[0], or the signed-in user's id.
func userArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return signedIn(cmd)
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user", "profile"},
		Short:   "Member profiles",
	}

	update := &cobra.Command{
		Use:         "update",
		Short:       "Edit your profile",
		Args:        cobra.NoArgs,
		Annotations: route("/profile"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			u, err := d.CurrentUser()
			if err != nil {
				return fail(cmd, "Not signed in", err)
			}
			bindAnswers(cmd, "name", "bio", "location", "avatar", "interests")
			up, err := d.Forms.Profile(*u)
			if err != nil {
				return fail(cmd, "Profile not saved", err)
			}
			saved, err := call(cmd, "Saving profile", func(ctx context.Context) (*models.User, error) {
				return d.API.Users.UpdateProfile(ctx, up)
			})
			if err != nil {
				return fail(cmd, "Profile not saved", err)
			}
			if err := d.Session.Save(d.Session.Token(), *saved); err != nil {
				return fail(cmd, "Could not save session", err)
			}
			printLine(cmd, d.Renderer.Profile(saved))
			return nil
		},
	}
	for _, name := range []string{"name", "bio", "location", "avatar", "interests"} {
		update.Flags().String(name, "", "new "+name)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:         "show [user-id]",
			Short:       "Show a profile (default yours)",
			Args:        cobra.MaximumNArgs(1),
			Annotations: route("/profile/{id}"),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				id, err := userArg(cmd, args)
				if err != nil {
					return err
				}
				u, err := call(cmd, "Loading profile", func(ctx context.Context) (*models.User, error) {
					return d.API.Users.Get(ctx, id)
				})
				if err != nil {
					return fail(cmd, "Could not load profile", err)
				}
				printLine(cmd, d.Renderer.Profile(u))
				return nil
			},
		},
		update,
		newUserEventsCmd("events", "Events a member has joined", func(ctx context.Context, id string) ([]models.Event, error) {
			return GetDeps().API.Users.Events(ctx, id)
		}),
		newUserEventsCmd("hosted", "Events a member hosts", func(ctx context.Context, id string) ([]models.Event, error) {
			return GetDeps().API.Users.HostedEvents(ctx, id)
		}),
	)
	return cmd
}

func newUserEventsCmd(use, short string, load func(ctx context.Context, id string) ([]models.Event, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [user-id]",
		Short: short + " (default you)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			id, err := userArg(cmd, args)
			if err != nil {
				return err
			}
			events, err := call(cmd, "Loading events", func(ctx context.Context) ([]models.Event, error) {
				return load(ctx, id)
			})
			if err != nil {
				return fail(cmd, "Could not load events", err)
			}
			printLine(cmd, d.Renderer.EventTable(events, id))
			return nil
		},
	}
}
