package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/internal/ui"
	"github.com/meetly-app/meetly/pkg/models"
)

// checkout is the payment widget: it shows the amount, opens the checkout
// page when a browser is available, and asks whether payment finished.
func checkout(cmd *cobra.Command, pi *models.PaymentIntent, what string) (bool, error) {
	d := GetDeps()
	printLine(cmd, d.Renderer.PaymentIntent(pi))
	if pi.CheckoutURL != "" && !d.Headless.IsHeadless() {
		if err := d.Browser.Open(pi.CheckoutURL); err != nil {
			d.Logger.Debug().Err(err).Msg("open checkout page")
			printLine(cmd, d.Renderer.Warning("Open this link to pay: "+pi.CheckoutURL))
		}
	}
	return dialog(cmd).Confirm("Complete payment",
		fmt.Sprintf("Pay %s for %s, then confirm here.", ui.Price(pi.Amount, pi.Currency), what))
}

// payAndJoin runs the paid join flow: create intent, checkout, confirm.
func payAndJoin(cmd *cobra.Command, ev *models.Event) error {
	d := GetDeps()
	pi, err := call(cmd, "Preparing payment", func(ctx context.Context) (*models.PaymentIntent, error) {
		return d.API.Payments.CreateIntent(ctx, ev.ID)
	})
	if err != nil {
		return fail(cmd, "Payment failed", err)
	}
	d.Nav.Navigate("/payment/" + ev.ID)

	paid, err := checkout(cmd, pi, ev.Title)
	if err != nil {
		return fail(cmd, "Payment failed", err)
	}
	if !paid {
		printLine(cmd, d.Renderer.Empty(confirmHint(ev.ID, pi.PaymentIntentID)))
		return nil
	}
	return confirmJoin(cmd, ev.ID, pi.PaymentIntentID)
}

func confirmHint(eventID, intentID string) string {
	return "After paying, finish joining with: meetly payments confirm-join " + eventID + " " + intentID
}

func confirmJoin(cmd *cobra.Command, eventID, intentID string) error {
	d := GetDeps()
	ev, err := call(cmd, "Confirming payment", func(ctx context.Context) (*models.Event, error) {
		return d.API.Payments.ConfirmAndJoin(ctx, models.ConfirmJoinRequest{EventID: eventID, PaymentIntentID: intentID})
	})
	if err != nil {
		err = fail(cmd, "Could not confirm payment", err)
		printLine(cmd, d.Renderer.Empty(confirmHint(eventID, intentID)))
		return err
	}
	d.Nav.Navigate("/events/" + ev.ID)
	dialog(cmd).Success("Payment confirmed. You're going to "+ev.Title,
		d.Renderer.KV("When", ui.Date(ev.Date, ev.Time)),
		d.Renderer.KV("Seats", ui.Seats(ev)),
	)
	return nil
}

func newPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Ticket payments and host revenue",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "intent <event-id>",
			Short: "Start a payment for a paid event",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				pi, err := call(cmd, "Preparing payment", func(ctx context.Context) (*models.PaymentIntent, error) {
					return d.API.Payments.CreateIntent(ctx, args[0])
				})
				if err != nil {
					return fail(cmd, "Payment failed", err)
				}
				printLine(cmd, d.Renderer.PaymentIntent(pi))
				printLine(cmd, d.Renderer.Empty(confirmHint(args[0], pi.PaymentIntentID)))
				return nil
			},
		},
		&cobra.Command{
			Use:   "confirm-join <event-id> <payment-intent-id>",
			Short: "Join an event after its payment succeeded",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				return confirmJoin(cmd, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:         "revenue",
			Short:       "Show your earnings as a host",
			Args:        cobra.NoArgs,
			Annotations: route("/dashboard/host"),
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				rev, err := call(cmd, "Loading revenue", d.API.Payments.Revenue)
				if err != nil {
					return fail(cmd, "Could not load revenue", err)
				}
				printLine(cmd, d.Renderer.Revenue(rev))
				return nil
			},
		},
	)
	return cmd
}

func newSubscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subscription", "subs"},
		Short:   "Membership plans with ticket discounts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:         "plans",
			Short:       "List plans",
			Args:        cobra.NoArgs,
			Annotations: route("/subscriptions"),
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				plans, err := call(cmd, "Loading plans", d.API.Subscriptions.Plans)
				if err != nil {
					return fail(cmd, "Could not load plans", err)
				}
				printLine(cmd, d.Renderer.Plans(plans))
				return nil
			},
		},
		&cobra.Command{
			Use:   "mine",
			Short: "Show your subscription",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				sub, err := call(cmd, "Loading subscription", d.API.Subscriptions.Mine)
				if err != nil {
					return fail(cmd, "Could not load subscription", err)
				}
				printLine(cmd, d.Renderer.Subscription(sub))
				return nil
			},
		},
		&cobra.Command{
			Use:   "subscribe <plan-id>",
			Short: "Buy a plan",
			Args:  cobra.ExactArgs(1),
			RunE:  runSubscribe,
		},
		&cobra.Command{
			Use:   "confirm <plan-id> <payment-intent-id>",
			Short: "Activate a plan after its payment succeeded",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				return confirmSubscription(cmd, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "cancel",
			Short: "Cancel your subscription",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				ok, err := dialog(cmd).Confirm("Cancel subscription", "Your ticket discount ends now.")
				if err != nil || !ok {
					return err
				}
				if err := run(cmd, "Cancelling", d.API.Subscriptions.Cancel); err != nil {
					return fail(cmd, "Could not cancel subscription", err)
				}
				dialog(cmd).Success("Subscription cancelled")
				return nil
			},
		},
		newUpsertPlanCmd(),
	)
	return cmd
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	d := GetDeps()
	if _, err := signedIn(cmd); err != nil {
		return err
	}
	pi, err := call(cmd, "Preparing payment", func(ctx context.Context) (*models.PaymentIntent, error) {
		return d.API.Subscriptions.Subscribe(ctx, args[0])
	})
	if err != nil {
		return fail(cmd, "Payment failed", err)
	}
	paid, err := checkout(cmd, pi, "the plan")
	if err != nil {
		return fail(cmd, "Payment failed", err)
	}
	if !paid {
		printLine(cmd, d.Renderer.Empty("After paying, activate with: meetly subscriptions confirm "+args[0]+" "+pi.PaymentIntentID))
		return nil
	}
	return confirmSubscription(cmd, args[0], pi.PaymentIntentID)
}

func confirmSubscription(cmd *cobra.Command, planID, intentID string) error {
	d := GetDeps()
	sub, err := call(cmd, "Activating", func(ctx context.Context) (*models.UserSubscription, error) {
		return d.API.Subscriptions.Confirm(ctx, models.SubscriptionConfirmRequest{PlanID: planID, PaymentIntentID: intentID})
	})
	if err != nil {
		return fail(cmd, "Could not activate subscription", err)
	}
	printLine(cmd, d.Renderer.Subscription(sub))
	return nil
}

func newUpsertPlanCmd() *cobra.Command {
	var (
		plan     models.SubscriptionPlan
		features string
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "upsert-plan",
		Short: "Create or update a plan (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			if strings.TrimSpace(plan.Name) == "" {
				return fail(cmd, "Invalid plan", fmt.Errorf("--name is required"))
			}
			for _, f := range strings.Split(features, ",") {
				if f = strings.TrimSpace(f); f != "" {
					plan.Features = append(plan.Features, f)
				}
			}
			plan.IsActive = !inactive
			saved, err := call(cmd, "Saving plan", func(ctx context.Context) (*models.SubscriptionPlan, error) {
				return d.API.Subscriptions.UpsertPlan(ctx, plan)
			})
			if err != nil {
				return fail(cmd, "Could not save plan", err)
			}
			dialog(cmd).Success("Plan saved: "+saved.Name, d.Renderer.KV("ID", saved.ID))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&plan.ID, "id", "", "plan id to update; empty creates a plan")
	f.StringVar(&plan.Name, "name", "", "plan name")
	f.StringVar(&plan.Description, "description", "", "plan description")
	f.Float64Var(&plan.Price, "price", 0, "price per period")
	f.IntVar(&plan.DurationDays, "days", 30, "period length in days")
	f.Float64Var(&plan.DiscountPercent, "discount", 0, "ticket discount percent")
	f.StringVar(&features, "features", "", "comma separated features")
	f.BoolVar(&inactive, "inactive", false, "hide the plan from sale")
	return cmd
}
