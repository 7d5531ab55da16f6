package api

import (
	"context"
	"net/url"

	"github.com/meetly-app/meetly/pkg/models"
)

// ReviewsService covers /reviews (event and host reviews).
type ReviewsService struct {
	c *Client
}

// List returns reviews for an event or host.
func (s *ReviewsService) List(ctx context.Context, f models.ReviewFilter) ([]models.Review, error) {
	q := url.Values{}
	if f.EventID != "" {
		q.Set("eventId", f.EventID)
	}
	if f.HostID != "" {
		q.Set("hostId", f.HostID)
	}
	return call[[]models.Review](ctx, s.c, get("/reviews", q))
}

// Create posts a review.
func (s *ReviewsService) Create(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	r, err := call[models.Review](ctx, s.c, post("/reviews", in))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes one of the current user's reviews.
func (s *ReviewsService) Delete(ctx context.Context, id string) error {
	p, err := pathf("/reviews", id)
	if err != nil {
		return err
	}
	return s.c.do(ctx, del(p), nil)
}

// React toggles the current user's emoji reaction on a review.
func (s *ReviewsService) React(ctx context.Context, id, emoji string) (*models.Review, error) {
	p, err := withSuffix("/reviews", id, "react")
	if err != nil {
		return nil, err
	}
	r, err := call[models.Review](ctx, s.c, post(p, models.ReactionInput{Emoji: emoji}))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CommentsService covers /comments on events.
type CommentsService struct {
	c *Client
}

// List returns an event's comments.
func (s *CommentsService) List(ctx context.Context, eventID string) ([]models.Comment, error) {
	if eventID == "" {
		return nil, ErrMissingID
	}
	return call[[]models.Comment](ctx, s.c, get("/comments", url.Values{"eventId": {eventID}}))
}

// Create posts a comment.
func (s *CommentsService) Create(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	cm, err := call[models.Comment](ctx, s.c, post("/comments", in))
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// Delete removes one of the current user's comments.
func (s *CommentsService) Delete(ctx context.Context, id string) error {
	p, err := pathf("/comments", id)
	if err != nil {
		return err
	}
	return s.c.do(ctx, del(p), nil)
}

// React toggles the current user's emoji reaction on a comment.
func (s *CommentsService) React(ctx context.Context, id, emoji string) (*models.Comment, error) {
	p, err := withSuffix("/comments", id, "react")
	if err != nil {
		return nil, err
	}
	cm, err := call[models.Comment](ctx, s.c, post(p, models.ReactionInput{Emoji: emoji}))
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// WebsiteReviewsService covers /website-reviews, reviews of the platform
// itself.
type WebsiteReviewsService struct {
	c *Client
}

// List returns every platform review.
func (s *WebsiteReviewsService) List(ctx context.Context) ([]models.WebsiteReview, error) {
	return call[[]models.WebsiteReview](ctx, s.c, get("/website-reviews", nil))
}

// Create posts a platform review.
func (s *WebsiteReviewsService) Create(ctx context.Context, in models.WebsiteReviewInput) (*models.WebsiteReview, error) {
	r, err := call[models.WebsiteReview](ctx, s.c, post("/website-reviews", in))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a platform review.
func (s *WebsiteReviewsService) Delete(ctx context.Context, id string) error {
	p, err := pathf("/website-reviews", id)
	if err != nil {
		return err
	}
	return s.c.do(ctx, del(p), nil)
}
