package apitest

import (
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meetly-app/meetly/pkg/models"
)

// discountLocked returns the caller's active subscription discount percent.
func (s *Server) discountLocked(uid string) float64 {
	sub := s.subs[uid]
	if !sub.Active(s.Now()) || sub.Plan == nil {
		return 0
	}
	return sub.Plan.DiscountPercent
}

func (s *Server) newIntentLocked(uid, eventID, planID string, original, discount float64) models.PaymentIntent {
	amount := math.Round((original-discount)*100) / 100
	in := &intent{
		id:      "pi_" + uuid.NewString(),
		userID:  uid,
		eventID: eventID,
		planID:  planID,
		amount:  amount,
	}
	s.intents[in.id] = in
	return models.PaymentIntent{
		ClientSecret:    in.id + "_secret",
		PaymentIntentID: in.id,
		Amount:          amount,
		OriginalAmount:  original,
		Discount:        discount,
		Currency:        "usd",
		CheckoutURL:     s.URL + "/checkout/" + in.id,
	}
}

func (s *Server) createIntent(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentIntentRequest
	if !decode(w, r, &req) {
		return
	}
	uid := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	ev, found := s.events[req.EventID]
	switch {
	case !found:
		fail(w, http.StatusNotFound, "Event not found")
		return
	case !ev.IsPaid:
		fail(w, http.StatusBadRequest, "This event is free")
		return
	case ev.HasParticipant(uid):
		fail(w, http.StatusBadRequest, "You have already joined this event")
		return
	case ev.IsFull():
		fail(w, http.StatusBadRequest, "Event is full")
		return
	}

	discount := math.Round(ev.Price*s.discountLocked(uid)) / 100
	succeed(w, http.StatusOK, "", s.newIntentLocked(uid, ev.ID, "", ev.Price, discount))
}

func (s *Server) confirmAndJoin(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmJoinRequest
	if !decode(w, r, &req) {
		return
	}
	uid := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	in, found := s.intents[req.PaymentIntentID]
	if !found || in.userID != uid || in.eventID != req.EventID {
		fail(w, http.StatusBadRequest, "Payment not found")
		return
	}
	ev, found := s.events[req.EventID]
	if !found {
		fail(w, http.StatusNotFound, "Event not found")
		return
	}
	if in.consumed {
		succeed(w, http.StatusOK, "Already joined", *ev)
		return
	}
	if !s.joinLocked(w, ev, uid) {
		return
	}
	in.consumed = true
	s.payments = append(s.payments, payment{eventID: ev.ID, userID: uid, amount: in.amount})
	succeed(w, http.StatusOK, "Payment confirmed and joined event", *ev)
}

func (s *Server) revenue(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	byEvent := map[string]*models.EventRevenue{}
	rev := models.Revenue{Events: []models.EventRevenue{}}
	for _, p := range s.payments {
		ev, found := s.events[p.eventID]
		if !found || !ev.HostedBy(uid) {
			continue
		}
		er, seen := byEvent[ev.ID]
		if !seen {
			er = &models.EventRevenue{EventID: ev.ID, Title: ev.Title}
			byEvent[ev.ID] = er
		}
		er.Tickets++
		er.Amount += p.amount
		rev.Total += p.amount
	}
	for _, id := range s.eventOrder {
		if er, seen := byEvent[id]; seen {
			rev.Events = append(rev.Events, *er)
		}
	}
	succeed(w, http.StatusOK, "", rev)
}

func (s *Server) listPlans(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.SubscriptionPlan{}
	for _, p := range s.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) planLocked(id string) *models.SubscriptionPlan {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return &s.plans[i]
		}
	}
	return nil
}

func (s *Server) mySubscription(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[currentUser(r)]
	if sub == nil {
		succeed(w, http.StatusOK, "No subscription", nil)
		return
	}
	succeed(w, http.StatusOK, "", *sub)
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var req models.SubscribeRequest
	if !decode(w, r, &req) {
		return
	}
	uid := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	plan := s.planLocked(req.PlanID)
	if plan == nil || !plan.IsActive {
		fail(w, http.StatusNotFound, "Plan not found")
		return
	}
	if s.subs[uid].Active(s.Now()) {
		fail(w, http.StatusBadRequest, "You already have an active subscription")
		return
	}
	succeed(w, http.StatusOK, "", s.newIntentLocked(uid, "", plan.ID, plan.Price, 0))
}

func (s *Server) confirmSubscription(w http.ResponseWriter, r *http.Request) {
	var req models.SubscriptionConfirmRequest
	if !decode(w, r, &req) {
		return
	}
	uid := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	in, found := s.intents[req.PaymentIntentID]
	if !found || in.userID != uid || in.planID != req.PlanID || in.consumed {
		fail(w, http.StatusBadRequest, "Payment not found")
		return
	}
	plan := s.planLocked(req.PlanID)
	if plan == nil {
		fail(w, http.StatusNotFound, "Plan not found")
		return
	}
	in.consumed = true
	now := s.Now().UTC()
	p := *plan
	sub := &models.UserSubscription{
		ID:        uuid.NewString(),
		Plan:      &p,
		Status:    "active",
		StartDate: now,
		EndDate:   now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour),
	}
	s.subs[uid] = sub
	succeed(w, http.StatusOK, "Subscription activated", *sub)
}

func (s *Server) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[currentUser(r)]
	if !sub.Active(s.Now()) {
		fail(w, http.StatusBadRequest, "No active subscription")
		return
	}
	sub.Status = "cancelled"
	succeed(w, http.StatusOK, "Subscription cancelled", *sub)
}

func (s *Server) upsertPlan(w http.ResponseWriter, r *http.Request) {
	var in models.SubscriptionPlan
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" || in.DurationDays <= 0 || in.Price < 0 {
		invalid(w, fieldError{Msg: "Name, price and duration are required", Path: "name"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.planLocked(in.ID); existing != nil {
		*existing = in
		succeed(w, http.StatusOK, "Plan updated", in)
		return
	}
	in.ID = uuid.NewString()
	s.plans = append(s.plans, in)
	succeed(w, http.StatusCreated, "Plan created", in)
}

// checkout pages are opened by the payment widget; the fake intent has
// already succeeded.
func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, found := s.intents[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !found {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("payment succeeded\n"))
}
