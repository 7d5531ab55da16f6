package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/pkg/models"
)

// defaultReaction is used when react is called without an emoji.
const defaultReaction = "👍"

func emojiArg(args []string) string {
	if len(args) > 1 && args[1] != "" {
		return args[1]
	}
	return defaultReaction
}

func newReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reviews",
		Aliases: []string{"review"},
		Short:   "Ratings for events and hosts",
	}

	var filter models.ReviewFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List reviews for an event or host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if filter.EventID == "" && filter.HostID == "" {
				return fail(cmd, "Missing filter", errors.New("pass --event or --host"))
			}
			reviews, err := call(cmd, "Loading reviews", func(ctx context.Context) ([]models.Review, error) {
				return d.API.Reviews.List(ctx, filter)
			})
			if err != nil {
				return fail(cmd, "Could not load reviews", err)
			}
			printLine(cmd, d.Renderer.Reviews(reviews))
			return nil
		},
	}
	list.Flags().StringVar(&filter.EventID, "event", "", "event id")
	list.Flags().StringVar(&filter.HostID, "host", "", "host user id")

	var target models.ReviewInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Review an event you attended or its host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			if target.EventID == "" && target.HostID == "" {
				return fail(cmd, "Missing target", errors.New("pass --event or --host"))
			}
			bindAnswers(cmd, "rating", "comment")
			in := target
			var err error
			if in.Rating, in.Comment, err = d.Forms.Rating(); err != nil {
				return fail(cmd, "Review not posted", err)
			}
			rv, err := call(cmd, "Posting review", func(ctx context.Context) (*models.Review, error) {
				return d.API.Reviews.Create(ctx, in)
			})
			if err != nil {
				return fail(cmd, "Review not posted", err)
			}
			dialog(cmd).Success("Review posted", d.Renderer.Reviews([]models.Review{*rv}))
			return nil
		},
	}
	add.Flags().StringVar(&target.EventID, "event", "", "event id")
	add.Flags().StringVar(&target.HostID, "host", "", "host user id")
	add.Flags().String("rating", "", "1 to 5")
	add.Flags().String("comment", "", "review text")

	cmd.AddCommand(
		list,
		add,
		newDeleteCmd("review", func(ctx context.Context, id string) error { return GetDeps().API.Reviews.Delete(ctx, id) }),
		&cobra.Command{
			Use:   "react <review-id> [emoji]",
			Short: "Toggle a reaction on a review",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				rv, err := call(cmd, "Reacting", func(ctx context.Context) (*models.Review, error) {
					return d.API.Reviews.React(ctx, args[0], emojiArg(args))
				})
				if err != nil {
					return fail(cmd, "Could not react", err)
				}
				printLine(cmd, d.Renderer.Reviews([]models.Review{*rv}))
				return nil
			},
		},
	)
	return cmd
}

func newCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment"},
		Short:   "Discussion on events",
	}

	var text string
	add := &cobra.Command{
		Use:   "add <event-id>",
		Short: "Comment on an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			d.Headless.SetAnswers(map[string]string{"text": text})
			content, err := d.Forms.Text("text", "Comment")
			if err != nil {
				return fail(cmd, "Comment not posted", err)
			}
			c, err := call(cmd, "Posting comment", func(ctx context.Context) (*models.Comment, error) {
				return d.API.Comments.Create(ctx, models.CommentInput{EventID: args[0], Content: content})
			})
			if err != nil {
				return fail(cmd, "Comment not posted", err)
			}
			dialog(cmd).Success("Comment posted", d.Renderer.Comments([]models.Comment{*c}))
			return nil
		},
	}
	add.Flags().StringVar(&text, "text", "", "comment text")

	cmd.AddCommand(
		&cobra.Command{
			Use:         "list <event-id>",
			Short:       "Show an event's comments",
			Args:        cobra.ExactArgs(1),
			Annotations: route("/events/{id}"),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				comments, err := call(cmd, "Loading comments", func(ctx context.Context) ([]models.Comment, error) {
					return d.API.Comments.List(ctx, args[0])
				})
				if err != nil {
					return fail(cmd, "Could not load comments", err)
				}
				printLine(cmd, d.Renderer.Comments(comments))
				return nil
			},
		},
		add,
		newDeleteCmd("comment", func(ctx context.Context, id string) error { return GetDeps().API.Comments.Delete(ctx, id) }),
		&cobra.Command{
			Use:   "react <comment-id> [emoji]",
			Short: "Toggle a reaction on a comment",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				if _, err := signedIn(cmd); err != nil {
					return err
				}
				c, err := call(cmd, "Reacting", func(ctx context.Context) (*models.Comment, error) {
					return d.API.Comments.React(ctx, args[0], emojiArg(args))
				})
				if err != nil {
					return fail(cmd, "Could not react", err)
				}
				printLine(cmd, d.Renderer.Comments([]models.Comment{*c}))
				return nil
			},
		},
	)
	return cmd
}

func newWebsiteReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "website-reviews",
		Short: "Testimonials about Meetly itself",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Review Meetly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := GetDeps()
			if _, err := signedIn(cmd); err != nil {
				return err
			}
			bindAnswers(cmd, "rating", "comment")
			rating, comment, err := d.Forms.Rating()
			if err != nil {
				return fail(cmd, "Review not posted", err)
			}
			rv, err := call(cmd, "Posting review", func(ctx context.Context) (*models.WebsiteReview, error) {
				return d.API.WebsiteReviews.Create(ctx, models.WebsiteReviewInput{Rating: rating, Comment: comment})
			})
			if err != nil {
				return fail(cmd, "Review not posted", err)
			}
			dialog(cmd).Success("Thanks for the feedback", d.Renderer.WebsiteReviews([]models.WebsiteReview{*rv}))
			return nil
		},
	}
	add.Flags().String("rating", "", "1 to 5")
	add.Flags().String("comment", "", "review text")

	cmd.AddCommand(
		&cobra.Command{
			Use:         "list",
			Short:       "Show testimonials",
			Args:        cobra.NoArgs,
			Annotations: route("/"),
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				reviews, err := call(cmd, "Loading reviews", d.API.WebsiteReviews.List)
				if err != nil {
					return fail(cmd, "Could not load reviews", err)
				}
				printLine(cmd, d.Renderer.WebsiteReviews(reviews))
				return nil
			},
		},
		add,
		newDeleteCmd("review", func(ctx context.Context, id string) error { return GetDeps().API.WebsiteReviews.Delete(ctx, id) }),
	)
	return cmd
}

// newDeleteCmd builds "delete <noun-id>" for the caller's own content.
func newDeleteCmd(noun string, remove func(ctx context.Context, id string) error) *cobra.Command {
	return newRemoveCmd("delete", noun, "Delete your "+noun, remove)
}
