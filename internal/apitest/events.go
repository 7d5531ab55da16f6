package apitest

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meetly-app/meetly/pkg/models"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	category := q.Get("category")
	status := models.EventStatus(q.Get("status"))
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	page = max(page, 1)
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Event
	for _, id := range s.eventOrder {
		ev := s.events[id]
		if !ev.IsApproved {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(ev.Title+" "+ev.Description), search) {
			continue
		}
		if category != "" && !strings.EqualFold(ev.Category, category) {
			continue
		}
		if status != "" && ev.Status != status {
			continue
		}
		matched = append(matched, *ev)
	}

	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	succeed(w, http.StatusOK, "", models.EventPage{
		Events: matched[start:end],
		Pagination: models.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	})
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cats []string
	for _, ev := range s.events {
		if ev.Category != "" && !slices.Contains(cats, ev.Category) {
			cats = append(cats, ev.Category)
		}
	}
	slices.Sort(cats)
	succeed(w, http.StatusOK, "", cats)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, found := s.events[chi.URLParam(r, "id")]
	if !found {
		fail(w, http.StatusNotFound, "Event not found")
		return
	}
	succeed(w, http.StatusOK, "", *ev)
}

func validateEvent(in models.EventInput) []fieldError {
	var errs []fieldError
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, fieldError{Msg: "Title is required", Path: "title"})
	}
	if strings.TrimSpace(in.Description) == "" {
		errs = append(errs, fieldError{Msg: "Description is required", Path: "description"})
	}
	if in.Date.IsZero() {
		errs = append(errs, fieldError{Msg: "Date is required", Path: "date"})
	}
	if in.MaxParticipants < 1 {
		errs = append(errs, fieldError{Msg: "Max participants must be at least 1", Path: "maxParticipants"})
	}
	if in.IsPaid && in.Price <= 0 {
		errs = append(errs, fieldError{Msg: "Paid events need a price", Path: "price"})
	}
	return errs
}

func applyEventInput(ev *models.Event, in models.EventInput) {
	ev.Title = in.Title
	ev.Description = in.Description
	ev.Category = in.Category
	ev.Location = in.Location
	ev.Date = in.Date
	ev.Time = in.Time
	ev.MaxParticipants = in.MaxParticipants
	ev.IsPaid = in.IsPaid
	ev.Price = in.Price
	if !in.IsPaid {
		ev.Price = 0
	}
	ev.ImageURL = in.ImageURL
	ev.Tags = in.Tags
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if !decode(w, r, &in) {
		return
	}
	if errs := validateEvent(in); len(errs) > 0 {
		invalid(w, errs...)
		return
	}

	s.mu.Lock()
	role := s.accounts[currentUser(r)].user.Role
	s.mu.Unlock()
	if role != models.RoleHost && role != models.RoleAdmin {
		fail(w, http.StatusForbidden, "Only hosts can create events")
		return
	}

	var ev models.Event
	applyEventInput(&ev, in)
	ev.ID = uuid.NewString()
	ev.Status = models.StatusUpcoming
	ev.IsApproved = role == models.RoleAdmin
	succeed(w, http.StatusCreated, "Event created and awaiting approval", s.AddEvent(ev, currentUser(r)))
}

// ownedEventLocked returns the event if the caller hosts it or is an admin.
func (s *Server) ownedEventLocked(w http.ResponseWriter, r *http.Request) *models.Event {
	ev, found := s.events[chi.URLParam(r, "id")]
	if !found {
		fail(w, http.StatusNotFound, "Event not found")
		return nil
	}
	uid := currentUser(r)
	if !ev.HostedBy(uid) && s.accounts[uid].user.Role != models.RoleAdmin {
		fail(w, http.StatusForbidden, "Not authorized to modify this event")
		return nil
	}
	return ev
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if !decode(w, r, &in) {
		return
	}
	if errs := validateEvent(in); len(errs) > 0 {
		invalid(w, errs...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.ownedEventLocked(w, r)
	if ev == nil {
		return
	}
	if in.MaxParticipants < ev.CurrentParticipants {
		invalid(w, fieldError{Msg: "Max participants cannot be below current participants", Path: "maxParticipants"})
		return
	}
	applyEventInput(ev, in)
	succeed(w, http.StatusOK, "Event updated", *ev)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.ownedEventLocked(w, r)
	if ev == nil {
		return
	}
	s.removeEventLocked(ev.ID)
	succeed(w, http.StatusOK, "Event deleted", nil)
}

func (s *Server) removeEventLocked(id string) {
	delete(s.events, id)
	s.eventOrder = slices.DeleteFunc(s.eventOrder, func(e string) bool { return e == id })
}

// joinLocked adds uid to ev, enforcing capacity and status.
func (s *Server) joinLocked(w http.ResponseWriter, ev *models.Event, uid string) bool {
	switch {
	case !ev.IsApproved:
		fail(w, http.StatusBadRequest, "Event is not approved yet")
	case ev.Status != models.StatusUpcoming:
		fail(w, http.StatusBadRequest, "Event is not open for joining")
	case ev.HasParticipant(uid):
		fail(w, http.StatusBadRequest, "You have already joined this event")
	case ev.IsFull():
		fail(w, http.StatusBadRequest, "Event is full")
	default:
		ev.Participants = append(ev.Participants, *s.userLocked(uid))
		ev.CurrentParticipants++
		return true
	}
	return false
}

func (s *Server) joinEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, found := s.events[chi.URLParam(r, "id")]
	if !found {
		fail(w, http.StatusNotFound, "Event not found")
		return
	}
	if ev.IsPaid {
		fail(w, http.StatusPaymentRequired, "This is a paid event. Please complete payment to join.")
		return
	}
	if s.joinLocked(w, ev, currentUser(r)) {
		succeed(w, http.StatusOK, "Successfully joined event", *ev)
	}
}

func (s *Server) leaveEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, found := s.events[chi.URLParam(r, "id")]
	if !found {
		fail(w, http.StatusNotFound, "Event not found")
		return
	}
	uid := currentUser(r)
	if !ev.HasParticipant(uid) {
		fail(w, http.StatusBadRequest, "You have not joined this event")
		return
	}
	ev.Participants = slices.DeleteFunc(ev.Participants, func(u models.User) bool { return u.ID == uid })
	ev.CurrentParticipants--
	succeed(w, http.StatusOK, "Successfully left event", *ev)
}

func (s *Server) userEvents(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Event{}
	for _, id := range s.eventOrder {
		if ev := s.events[id]; ev.HasParticipant(uid) {
			out = append(out, *ev)
		}
	}
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) hostedEvents(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Event{}
	for _, id := range s.eventOrder {
		if ev := s.events[id]; ev.HostedBy(uid) {
			out = append(out, *ev)
		}
	}
	succeed(w, http.StatusOK, "", out)
}
