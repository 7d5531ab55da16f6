package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/internal/calendar"
	"github.com/meetly-app/meetly/internal/session"
	"github.com/meetly-app/meetly/internal/ui"
	"github.com/meetly-app/meetly/pkg/models"
)

// calendarPageSize is how many events the calendar view requests.
const calendarPageSize = 100

var eventFormFlags = []string{"title", "description", "category", "location", "date", "time", "max", "price", "tags", "image"}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Browse, host and join events",
	}
	cmd.AddCommand(
		newEventsListCmd(),
		newEventsShowCmd(),
		newEventsCreateCmd(),
		newEventsUpdateCmd(),
		newEventsDeleteCmd(),
		newEventsJoinCmd(),
		newEventsLeaveCmd(),
		newEventsCategoriesCmd(),
		newEventsCalendarCmd(),
	)
	return cmd
}

// viewerID is the signed-in user's id, or "" for anonymous browsing.
func viewerID() string {
	d := GetDeps()
	if u, err := session.Require(d.Session, d.Now()); err == nil {
		return u.ID
	}
	return ""
}

func newEventsListCmd() *cobra.Command {
	var (
		f      models.EventFilter
		status string
	)
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List approved events",
		Args:        cobra.NoArgs,
		Annotations: route("/events"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if status != "" {
				f.Status = models.EventStatus(strings.ToLower(status))
				if !f.Status.IsValid() {
					return fail(cmd, "Invalid filter", fmt.Errorf("unknown status %q", status))
				}
			}
			page, err := call(cmd, "Loading events", func(ctx context.Context) (*models.EventPage, error) {
				return d.API.Events.List(ctx, f)
			})
			if err != nil {
				return fail(cmd, "Could not load events", err)
			}
			printLine(cmd, d.Renderer.EventTable(page.Events, viewerID()))
			if p := page.Pagination; p.Pages > 1 {
				printLine(cmd, d.Renderer.Empty(fmt.Sprintf("Page %d of %d · %s", p.Page, p.Pages, ui.Plural(p.Total, "event"))))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "search title and description")
	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "only this category")
	cmd.Flags().StringVar(&status, "status", "", "upcoming, ongoing, completed or cancelled")
	cmd.Flags().IntVar(&f.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "events per page")
	return cmd
}

func getEvent(cmd *cobra.Command, id string) (*models.Event, error) {
	return call(cmd, "Loading event", func(ctx context.Context) (*models.Event, error) {
		return GetDeps().API.Events.Get(ctx, id)
	})
}

func newEventsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "show <event-id>",
		Short:       "Show an event",
		Args:        cobra.ExactArgs(1),
		Annotations: route("/events/{id}"),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			ev, err := getEvent(cmd, args[0])
			if err != nil {
				return fail(cmd, "Could not load event", err)
			}
			me := viewerID()
			printLine(cmd, d.Renderer.EventDetail(ev, me))
			switch {
			case me != "" && ev.HasParticipant(me):
			case ev.Joinable():
				printLine(cmd, d.Renderer.Empty("Join with: meetly events join "+ev.ID))
			default:
				printLine(cmd, d.Renderer.Warning("Joining is unavailable: "+ui.Availability(ev)))
			}
			return nil
		},
	}
}

func addEventFormFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("title", "", "event title")
	f.String("description", "", "description (markdown)")
	f.String("category", "", "category")
	f.String("location", "", "location")
	f.String("date", "", "date as "+ui.DateLayout)
	f.String("time", "", "start time as HH:MM")
	f.String("max", "", "maximum participants")
	f.String("price", "", "ticket price; empty or 0 for a free event")
	f.String("tags", "", "comma separated tags")
	f.String("image", "", "image URL")
}

func newEventsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Host a new event (sent for approval)",
		Args:        cobra.NoArgs,
		Annotations: route("/events/create"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			bindAnswers(cmd, eventFormFlags...)
			in, err := d.Forms.Event(models.EventInput{})
			if err != nil {
				return fail(cmd, "Invalid event", err)
			}
			ev, err := call(cmd, "Creating event", func(ctx context.Context) (*models.Event, error) {
				return d.API.Events.Create(ctx, in)
			})
			if err != nil {
				return fail(cmd, "Could not create event", err)
			}
			d.Nav.Navigate("/events/" + ev.ID)
			details := []string{d.Renderer.KV("ID", ev.ID), d.Renderer.KV("Status", ui.Availability(ev))}
			dialog(cmd).Success("Event created: "+ev.Title, details...)
			return nil
		},
	}
	addEventFormFlags(cmd)
	return cmd
}

func inputFromEvent(ev *models.Event) models.EventInput {
	return models.EventInput{
		Title:           ev.Title,
		Description:     ev.Description,
		Category:        ev.Category,
		Location:        ev.Location,
		Date:            ev.Date,
		Time:            ev.Time,
		MaxParticipants: ev.MaxParticipants,
		IsPaid:          ev.IsPaid,
		Price:           ev.Price,
		ImageURL:        ev.ImageURL,
		Tags:            ev.Tags,
	}
}

func newEventsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "update <event-id>",
		Short:       "Edit an event you host",
		Args:        cobra.ExactArgs(1),
		Annotations: route("/events/{id}/edit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			current, err := getEvent(cmd, args[0])
			if err != nil {
				return fail(cmd, "Could not load event", err)
			}
			bindAnswers(cmd, eventFormFlags...)
			in, err := d.Forms.Event(inputFromEvent(current))
			if err != nil {
				return fail(cmd, "Invalid event", err)
			}
			ev, err := call(cmd, "Saving event", func(ctx context.Context) (*models.Event, error) {
				return d.API.Events.Update(ctx, current.ID, in)
			})
			if err != nil {
				return fail(cmd, "Could not update event", err)
			}
			dialog(cmd).Success("Event updated: " + ev.Title)
			return nil
		},
	}
	addEventFormFlags(cmd)
	return cmd
}

func newEventsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event you host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			ok, err := dialog(cmd).Confirm("Delete event", "This removes the event for every participant.")
			if err != nil || !ok {
				return err
			}
			if err := run(cmd, "Deleting event", func(ctx context.Context) error {
				return d.API.Events.Delete(ctx, args[0])
			}); err != nil {
				return fail(cmd, "Could not delete event", err)
			}
			dialog(cmd).Success("Event deleted")
			return nil
		},
	}
}

func newEventsJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <event-id>",
		Short: "Join an event; paid events go through checkout",
		Long: `Join an event. Full, unapproved or past events are refused without
contacting the server. Paid events create a payment, open the checkout
page and join once the payment is confirmed.`,
		Args:        cobra.ExactArgs(1),
		Annotations: route("/events/{id}"),
		RunE:        runJoin,
	}
}

func runJoin(cmd *cobra.Command, args []string) error {
	d := GetDeps()
	me, err := signedIn(cmd)
	if err != nil {
		return err
	}
	ev, err := getEvent(cmd, args[0])
	if err != nil {
		return fail(cmd, "Could not load event", err)
	}
	if ev.HasParticipant(me) {
		printLine(cmd, d.Renderer.Warning("You have already joined "+ev.Title))
		return nil
	}
	if !ev.Joinable() {
		return fail(cmd, "Cannot join "+ev.Title, fmt.Errorf("%w: %s", ErrEventNotJoinable, strings.ToLower(ui.Availability(ev))))
	}
	if ev.IsPaid {
		return payAndJoin(cmd, ev)
	}

	joined, err := call(cmd, "Joining", func(ctx context.Context) (*models.Event, error) {
		return d.API.Events.Join(ctx, ev.ID)
	})
	if err != nil {
		return fail(cmd, "Could not join event", err)
	}
	dialog(cmd).Success("You're going to "+joined.Title,
		d.Renderer.KV("When", ui.Date(joined.Date, joined.Time)),
		d.Renderer.KV("Seats", ui.Seats(joined)),
	)
	return nil
}

func newEventsLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "leave <event-id>",
		Short:       "Give up your seat",
		Args:        cobra.ExactArgs(1),
		Annotations: route("/events/{id}"),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			ev, err := call(cmd, "Leaving", func(ctx context.Context) (*models.Event, error) {
				return d.API.Events.Leave(ctx, args[0])
			})
			if err != nil {
				return fail(cmd, "Could not leave event", err)
			}
			dialog(cmd).Success("You left "+ev.Title, d.Renderer.KV("Seats", ui.Seats(ev)))
			return nil
		},
	}
}

func newEventsCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List event categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			cats, err := call(cmd, "Loading categories", d.API.Events.Categories)
			if err != nil {
				return fail(cmd, "Could not load categories", err)
			}
			if len(cats) == 0 {
				printLine(cmd, d.Renderer.Empty("No categories yet."))
				return nil
			}
			for _, c := range cats {
				printLine(cmd, c)
			}
			return nil
		},
	}
}

func newEventsCalendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:         "calendar",
		Short:       "Show a month of events",
		Args:        cobra.NoArgs,
		Annotations: route("/calendar"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			at := d.Now()
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fail(cmd, "Invalid month", fmt.Errorf("month must look like 2026-03"))
				}
				at = t
			}
			page, err := call(cmd, "Loading events", func(ctx context.Context) (*models.EventPage, error) {
				return d.API.Events.List(ctx, models.EventFilter{Limit: calendarPageSize})
			})
			if err != nil {
				return fail(cmd, "Could not load events", err)
			}
			opts := []calendar.Option{calendar.WithToday(d.Now()), calendar.WithLocation(time.Local)}
			if d.Theme.NoColor {
				opts = append(opts, calendar.WithNoColor())
			}
			printLine(cmd, calendar.Month(at.Year(), at.Month(), page.Events, opts...))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM (default current)")
	return cmd
}
