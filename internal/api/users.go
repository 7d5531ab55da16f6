package api

import (
	"context"

	"github.com/meetly-app/meetly/pkg/models"
)

// UsersService covers /users.
type UsersService struct {
	c *Client
}

// Get returns a public profile.
func (s *UsersService) Get(ctx context.Context, id string) (*models.User, error) {
	p, err := pathf("/users", id)
	if err != nil {
		return nil, err
	}
	u, err := call[models.User](ctx, s.c, get(p, nil))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile edits the current user's profile.
func (s *UsersService) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	u, err := call[models.User](ctx, s.c, put("/users/profile", in))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Events returns the events a user has joined.
func (s *UsersService) Events(ctx context.Context, id string) ([]models.Event, error) {
	p, err := withSuffix("/users", id, "events")
	if err != nil {
		return nil, err
	}
	return call[[]models.Event](ctx, s.c, get(p, nil))
}

// HostedEvents returns the events a user hosts.
func (s *UsersService) HostedEvents(ctx context.Context, id string) ([]models.Event, error) {
	p, err := withSuffix("/users", id, "hosted-events")
	if err != nil {
		return nil, err
	}
	return call[[]models.Event](ctx, s.c, get(p, nil))
}
