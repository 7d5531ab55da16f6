package api

import (
	"context"

	"github.com/meetly-app/meetly/pkg/models"
)

// SubscriptionsService covers /subscriptions.
type SubscriptionsService struct {
	c *Client
}

// Plans lists the plans on offer.
func (s *SubscriptionsService) Plans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return call[[]models.SubscriptionPlan](ctx, s.c, get("/subscriptions/plans", nil))
}

// Mine returns the current user's subscription, or nil when there is none.
func (s *SubscriptionsService) Mine(ctx context.Context) (*models.UserSubscription, error) {
	var sub *models.UserSubscription
	if err := s.c.do(ctx, get("/subscriptions/me", nil), &sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Subscribe starts checkout for a plan.
func (s *SubscriptionsService) Subscribe(ctx context.Context, planID string) (*models.PaymentIntent, error) {
	if planID == "" {
		return nil, ErrMissingID
	}
	pi, err := call[models.PaymentIntent](ctx, s.c, post("/subscriptions/subscribe", models.SubscribeRequest{PlanID: planID}))
	if err != nil {
		return nil, err
	}
	return &pi, nil
}

// Confirm activates a subscription after payment.
func (s *SubscriptionsService) Confirm(ctx context.Context, req models.SubscriptionConfirmRequest) (*models.UserSubscription, error) {
	if req.PlanID == "" || req.PaymentIntentID == "" {
		return nil, ErrMissingID
	}
	sub, err := call[models.UserSubscription](ctx, s.c, post("/subscriptions/confirm", req))
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Cancel ends the current user's subscription.
func (s *SubscriptionsService) Cancel(ctx context.Context) error {
	return s.c.do(ctx, post("/subscriptions/cancel", nil), nil)
}

// UpsertPlan creates or updates a plan. Admin only.
func (s *SubscriptionsService) UpsertPlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	out, err := call[models.SubscriptionPlan](ctx, s.c, post("/subscriptions/admin/plans", plan))
	if err != nil {
		return nil, err
	}
	return &out, nil
}
