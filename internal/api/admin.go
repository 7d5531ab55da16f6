package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/meetly-app/meetly/pkg/models"
)

// AdminService covers /admin. The server rejects non-admin tokens.
type AdminService struct {
	c *Client
}

// Users lists every account.
func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	return call[[]models.User](ctx, s.c, get("/admin/users", nil))
}

// SetUserActive activates or suspends an account.
func (s *AdminService) SetUserActive(ctx context.Context, id string, active bool) (*models.User, error) {
	p, err := withSuffix("/admin/users", id, "status")
	if err != nil {
		return nil, err
	}
	u, err := call[models.User](ctx, s.c, patch(p, map[string]bool{"isActive": active}))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	p, err := pathf("/admin/users", id)
	if err != nil {
		return err
	}
	return s.c.do(ctx, del(p), nil)
}

// Events lists events for moderation.
func (s *AdminService) Events(ctx context.Context, f models.AdminEventFilter) ([]models.Event, error) {
	q := url.Values{}
	if f.Approved != nil {
		q.Set("approved", strconv.FormatBool(*f.Approved))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	return call[[]models.Event](ctx, s.c, get("/admin/events", q))
}

// ApproveEvent sets an event's approval flag.
func (s *AdminService) ApproveEvent(ctx context.Context, id string, approved bool) (*models.Event, error) {
	p, err := withSuffix("/admin/events", id, "approve")
	if err != nil {
		return nil, err
	}
	return eventCall(ctx, s.c, patch(p, map[string]bool{"isApproved": approved}))
}

// DeleteEvent removes an event.
func (s *AdminService) DeleteEvent(ctx context.Context, id string) error {
	p, err := pathf("/admin/events", id)
	if err != nil {
		return err
	}
	return s.c.do(ctx, del(p), nil)
}

// Reviews lists every event and host review.
func (s *AdminService) Reviews(ctx context.Context) ([]models.Review, error) {
	return call[[]models.Review](ctx, s.c, get("/admin/reviews", nil))
}

// DeleteReview removes a review.
func (s *AdminService) DeleteReview(ctx context.Context, id string) error {
	p, err := pathf("/admin/reviews", id)
	if err != nil {
		return err
	}
	return s.c.do(ctx, del(p), nil)
}

// Stats returns platform totals.
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	st, err := call[models.AdminStats](ctx, s.c, get("/admin/stats", nil))
	if err != nil {
		return nil, err
	}
	return &st, nil
}
