package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/meetly-app/meetly/pkg/models"
)

// PaymentsService covers /payments. Card details never pass through the
// client; the checkout page collects them.
type PaymentsService struct {
	c *Client
}

// CreateIntent starts a payment for a paid event. The amount reflects any
// active subscription discount.
func (s *PaymentsService) CreateIntent(ctx context.Context, eventID string) (*models.PaymentIntent, error) {
	if eventID == "" {
		return nil, ErrMissingID
	}
	pi, err := call[models.PaymentIntent](ctx, s.c, post("/payments/create-intent", models.PaymentIntentRequest{EventID: eventID}))
	if err != nil {
		return nil, err
	}
	return &pi, nil
}

// ConfirmAndJoin joins the event once the intent has succeeded. The
// idempotency key is derived from the intent so a repeated confirm cannot
// charge or join twice.
func (s *PaymentsService) ConfirmAndJoin(ctx context.Context, req models.ConfirmJoinRequest) (*models.Event, error) {
	if req.EventID == "" || req.PaymentIntentID == "" {
		return nil, ErrMissingID
	}
	r := post("/payments/confirm-and-join", req)
	r.header = http.Header{}
	r.header.Set(HeaderIdempotencyKey, IdempotencyKey(req.PaymentIntentID))
	return eventCall(ctx, s.c, r)
}

// Revenue returns the current host's earnings.
func (s *PaymentsService) Revenue(ctx context.Context) (*models.Revenue, error) {
	rev, err := call[models.Revenue](ctx, s.c, get("/payments/revenue", nil))
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// IdempotencyKey is a stable uuid for a payment intent id.
func IdempotencyKey(paymentIntentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("meetly:confirm-and-join:"+paymentIntentID)).String()
}
