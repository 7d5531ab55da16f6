package models

import "time"

// SubscriptionPlan is a purchasable discount tier applied to event pricing.
type SubscriptionPlan struct {
	ID              string   `json:"_id,omitempty"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price"`
	DurationDays    int      `json:"durationDays"`
	DiscountPercent float64  `json:"discountPercent"`
	Features        []string `json:"features,omitempty"`
	IsActive        bool     `json:"isActive"`
}

// UserSubscription is a user's plan window.
type UserSubscription struct {
	ID        string            `json:"_id"`
	Plan      *SubscriptionPlan `json:"plan,omitempty"`
	Status    string            `json:"status"`
	StartDate time.Time         `json:"startDate"`
	EndDate   time.Time         `json:"endDate"`
}

// Active reports whether the subscription is active at now.
func (s *UserSubscription) Active(now time.Time) bool {
	if s == nil || s.Status != "active" {
		return false
	}
	return !now.Before(s.StartDate) && now.Before(s.EndDate)
}

// SubscribeRequest is the payload for POST /subscriptions/subscribe.
type SubscribeRequest struct {
	PlanID string `json:"planId"`
}

// SubscriptionConfirmRequest is the payload for POST /subscriptions/confirm.
type SubscriptionConfirmRequest struct {
	PlanID          string `json:"planId"`
	PaymentIntentID string `json:"paymentIntentId"`
}
