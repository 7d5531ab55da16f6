package apitest

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meetly-app/meetly/pkg/models"
)

func (s *Server) adminUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.user)
	}
	slices.SortFunc(out, func(a, b models.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Email, b.Email)
	})
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) adminSetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsActive bool `json:"isActive"`
	}
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, found := s.accounts[chi.URLParam(r, "id")]
	if !found {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if acc.user.ID == currentUser(r) {
		fail(w, http.StatusBadRequest, "You cannot change your own status")
		return
	}
	acc.user.IsActive = body.IsActive
	succeed(w, http.StatusOK, "User status updated", acc.user)
}

func (s *Server) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.accounts[id]; !found {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if id == currentUser(r) {
		fail(w, http.StatusBadRequest, "You cannot delete yourself")
		return
	}
	delete(s.accounts, id)
	succeed(w, http.StatusOK, "User deleted", nil)
}

func (s *Server) adminEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var approved *bool
	if v, err := strconv.ParseBool(q.Get("approved")); err == nil {
		approved = &v
	}
	status := models.EventStatus(q.Get("status"))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Event{}
	for _, id := range s.eventOrder {
		ev := s.events[id]
		if approved != nil && ev.IsApproved != *approved {
			continue
		}
		if status != "" && ev.Status != status {
			continue
		}
		out = append(out, *ev)
	}
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) adminApprove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsApproved bool `json:"isApproved"`
	}
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, found := s.events[chi.URLParam(r, "id")]
	if !found {
		fail(w, http.StatusNotFound, "Event not found")
		return
	}
	ev.IsApproved = body.IsApproved
	if !body.IsApproved {
		ev.Status = models.StatusCancelled
	}
	succeed(w, http.StatusOK, "Event updated", *ev)
}

func (s *Server) adminDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.events[id]; !found {
		fail(w, http.StatusNotFound, "Event not found")
		return
	}
	s.removeEventLocked(id)
	succeed(w, http.StatusOK, "Event deleted", nil)
}

func (s *Server) adminReviews(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	succeed(w, http.StatusOK, "", append([]models.Review{}, s.reviews...))
}

func (s *Server) adminDeleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.reviews)
	s.reviews = slices.DeleteFunc(s.reviews, func(rv models.Review) bool { return rv.ID == id })
	if len(s.reviews) == n {
		fail(w, http.StatusNotFound, "Review not found")
		return
	}
	succeed(w, http.StatusOK, "Review deleted", nil)
}

func (s *Server) adminStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st models.AdminStats
	for _, acc := range s.accounts {
		switch acc.user.Role {
		case models.RoleHost:
			st.Hosts++
		case models.RoleUser:
			st.Users++
		}
	}
	for _, ev := range s.events {
		st.Events++
		if !ev.IsApproved {
			st.PendingEvents++
		}
	}
	st.Reviews = len(s.reviews)
	for _, p := range s.payments {
		st.TotalRevenue += p.amount
	}
	for _, sub := range s.subs {
		if sub.Active(s.Now()) {
			st.ActiveSubs++
		}
	}
	succeed(w, http.StatusOK, "", st)
}
