package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/meetly-app/meetly/pkg/models"
)

// EventsService covers /events.
type EventsService struct {
	c *Client
}

func eventQuery(f models.EventFilter) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// List returns one page of events matching f.
func (s *EventsService) List(ctx context.Context, f models.EventFilter) (*models.EventPage, error) {
	page, err := call[models.EventPage](ctx, s.c, get("/events", eventQuery(f)))
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Categories returns the category names in use.
func (s *EventsService) Categories(ctx context.Context) ([]string, error) {
	return call[[]string](ctx, s.c, get("/events/categories", nil))
}

// Get returns one event.
func (s *EventsService) Get(ctx context.Context, id string) (*models.Event, error) {
	p, err := pathf("/events", id)
	if err != nil {
		return nil, err
	}
	return eventCall(ctx, s.c, get(p, nil))
}

// Create submits a new event for approval.
func (s *EventsService) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	return eventCall(ctx, s.c, post("/events", in))
}

// Update replaces an event's editable fields.
func (s *EventsService) Update(ctx context.Context, id string, in models.EventInput) (*models.Event, error) {
	p, err := pathf("/events", id)
	if err != nil {
		return nil, err
	}
	return eventCall(ctx, s.c, put(p, in))
}

// Delete removes an event.
func (s *EventsService) Delete(ctx context.Context, id string) error {
	p, err := pathf("/events", id)
	if err != nil {
		return err
	}
	return s.c.do(ctx, del(p), nil)
}

// Join adds the current user to a free event. Paid events go through
// PaymentsService.ConfirmAndJoin.
func (s *EventsService) Join(ctx context.Context, id string) (*models.Event, error) {
	p, err := withSuffix("/events", id, "join")
	if err != nil {
		return nil, err
	}
	return eventCall(ctx, s.c, post(p, nil))
}

// Leave removes the current user from an event.
func (s *EventsService) Leave(ctx context.Context, id string) (*models.Event, error) {
	p, err := withSuffix("/events", id, "leave")
	if err != nil {
		return nil, err
	}
	return eventCall(ctx, s.c, post(p, nil))
}

func eventCall(ctx context.Context, c *Client, req request) (*models.Event, error) {
	ev, err := call[models.Event](ctx, c, req)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
