package models

// PaymentIntent is what the payment provider needs to collect a card
// payment. The client never sees card data; it hands ClientSecret or
// CheckoutURL to the hosted payment widget.
type PaymentIntent struct {
	ClientSecret    string  `json:"clientSecret"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
	OriginalAmount  float64 `json:"originalAmount,omitempty"`
	Discount        float64 `json:"discount,omitempty"`
	Currency        string  `json:"currency,omitempty"`
	CheckoutURL     string  `json:"checkoutUrl,omitempty"`
}

// PaymentIntentRequest is the payload for POST /payments/create-intent.
type PaymentIntentRequest struct {
	EventID string `json:"eventId"`
}

// ConfirmJoinRequest is the payload for POST /payments/confirm-and-join.
type ConfirmJoinRequest struct {
	EventID         string `json:"eventId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// EventRevenue is one row of the host revenue report.
type EventRevenue struct {
	EventID string  `json:"eventId"`
	Title   string  `json:"title"`
	Tickets int     `json:"tickets"`
	Amount  float64 `json:"amount"`
}

// Revenue is the data of GET /payments/revenue.
type Revenue struct {
	Total   float64        `json:"total"`
	Events  []EventRevenue `json:"events"`
	Payouts float64        `json:"payouts,omitempty"`
}

// AdminStats is the data of GET /admin/stats.
type AdminStats struct {
	Users         int     `json:"users"`
	Hosts         int     `json:"hosts"`
	Events        int     `json:"events"`
	PendingEvents int     `json:"pendingEvents"`
	Reviews       int     `json:"reviews"`
	TotalRevenue  float64 `json:"totalRevenue"`
	ActiveSubs    int     `json:"activeSubscriptions"`
}

// AdminEventFilter narrows GET /admin/events.
type AdminEventFilter struct {
	Approved *bool
	Status   EventStatus
}
