package apitest

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meetly-app/meetly/pkg/models"
)

// toggleReaction adds uid under emoji, or removes it if already present.
func toggleReaction(reactions []models.Reaction, emoji, uid string) []models.Reaction {
	for i := range reactions {
		if reactions[i].Emoji != emoji {
			continue
		}
		if slices.Contains(reactions[i].Users, uid) {
			reactions[i].Users = slices.DeleteFunc(reactions[i].Users, func(u string) bool { return u == uid })
		} else {
			reactions[i].Users = append(reactions[i].Users, uid)
		}
		return reactions
	}
	return append(reactions, models.Reaction{Emoji: emoji, Users: []string{uid}})
}

func ratingErrors(rating int, text string) []fieldError {
	var errs []fieldError
	if !models.ValidRating(rating) {
		errs = append(errs, fieldError{Msg: "Rating must be between 1 and 5", Path: "rating"})
	}
	if strings.TrimSpace(text) == "" {
		errs = append(errs, fieldError{Msg: "Comment is required", Path: "comment"})
	}
	return errs
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	hostID := r.URL.Query().Get("hostId")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Review{}
	for _, rv := range s.reviews {
		if eventID != "" && rv.Event != eventID {
			continue
		}
		if hostID != "" && rv.Host != hostID {
			continue
		}
		out = append(out, rv)
	}
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	var in models.ReviewInput
	if !decode(w, r, &in) {
		return
	}
	if errs := ratingErrors(in.Rating, in.Comment); len(errs) > 0 {
		invalid(w, errs...)
		return
	}
	if in.EventID == "" && in.HostID == "" {
		fail(w, http.StatusBadRequest, "A review needs an event or a host")
		return
	}
	uid := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if in.EventID != "" {
		ev, found := s.events[in.EventID]
		if !found {
			fail(w, http.StatusNotFound, "Event not found")
			return
		}
		if !ev.HasParticipant(uid) {
			fail(w, http.StatusForbidden, "Only participants can review this event")
			return
		}
	}
	rv := models.Review{
		ID:        uuid.NewString(),
		Event:     in.EventID,
		Host:      in.HostID,
		User:      s.userLocked(uid),
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.Now().UTC(),
	}
	s.reviews = append(s.reviews, rv)
	succeed(w, http.StatusCreated, "Review added", rv)
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.reviews, func(rv models.Review) bool { return rv.ID == id })
	if i < 0 {
		fail(w, http.StatusNotFound, "Review not found")
		return
	}
	if s.reviews[i].User == nil || s.reviews[i].User.ID != uid {
		fail(w, http.StatusForbidden, "Not authorized to delete this review")
		return
	}
	s.reviews = slices.Delete(s.reviews, i, i+1)
	succeed(w, http.StatusOK, "Review deleted", nil)
}

func (s *Server) reactReview(w http.ResponseWriter, r *http.Request) {
	var in models.ReactionInput
	if !decode(w, r, &in) {
		return
	}
	if in.Emoji == "" {
		invalid(w, fieldError{Msg: "Emoji is required", Path: "emoji"})
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.reviews, func(rv models.Review) bool { return rv.ID == id })
	if i < 0 {
		fail(w, http.StatusNotFound, "Review not found")
		return
	}
	s.reviews[i].Reactions = toggleReaction(s.reviews[i].Reactions, in.Emoji, currentUser(r))
	succeed(w, http.StatusOK, "", s.reviews[i])
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.comments {
		if eventID == "" || c.Event == eventID {
			out = append(out, c)
		}
	}
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var in models.CommentInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		invalid(w, fieldError{Msg: "Comment cannot be empty", Path: "content"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.events[in.EventID]; !found {
		fail(w, http.StatusNotFound, "Event not found")
		return
	}
	c := models.Comment{
		ID:        uuid.NewString(),
		Event:     in.EventID,
		User:      s.userLocked(currentUser(r)),
		Content:   in.Content,
		CreatedAt: s.Now().UTC(),
	}
	s.comments = append(s.comments, c)
	succeed(w, http.StatusCreated, "Comment added", c)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.comments, func(c models.Comment) bool { return c.ID == id })
	if i < 0 {
		fail(w, http.StatusNotFound, "Comment not found")
		return
	}
	owner := s.comments[i].User != nil && s.comments[i].User.ID == uid
	if !owner && s.accounts[uid].user.Role != models.RoleAdmin {
		fail(w, http.StatusForbidden, "Not authorized to delete this comment")
		return
	}
	s.comments = slices.Delete(s.comments, i, i+1)
	succeed(w, http.StatusOK, "Comment deleted", nil)
}

func (s *Server) reactComment(w http.ResponseWriter, r *http.Request) {
	var in models.ReactionInput
	if !decode(w, r, &in) {
		return
	}
	if in.Emoji == "" {
		invalid(w, fieldError{Msg: "Emoji is required", Path: "emoji"})
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.comments, func(c models.Comment) bool { return c.ID == id })
	if i < 0 {
		fail(w, http.StatusNotFound, "Comment not found")
		return
	}
	s.comments[i].Reactions = toggleReaction(s.comments[i].Reactions, in.Emoji, currentUser(r))
	succeed(w, http.StatusOK, "", s.comments[i])
}

func (s *Server) listSiteReviews(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	succeed(w, http.StatusOK, "", append([]models.WebsiteReview{}, s.siteReviews...))
}

func (s *Server) createSiteReview(w http.ResponseWriter, r *http.Request) {
	var in models.WebsiteReviewInput
	if !decode(w, r, &in) {
		return
	}
	if errs := ratingErrors(in.Rating, in.Comment); len(errs) > 0 {
		invalid(w, errs...)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rv := models.WebsiteReview{
		ID:        uuid.NewString(),
		User:      s.userLocked(currentUser(r)),
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.Now().UTC(),
	}
	s.siteReviews = append(s.siteReviews, rv)
	succeed(w, http.StatusCreated, "Thank you for your feedback", rv)
}

func (s *Server) deleteSiteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.siteReviews, func(rv models.WebsiteReview) bool { return rv.ID == id })
	if i < 0 {
		fail(w, http.StatusNotFound, "Review not found")
		return
	}
	owner := s.siteReviews[i].User != nil && s.siteReviews[i].User.ID == uid
	if !owner && s.accounts[uid].user.Role != models.RoleAdmin {
		fail(w, http.StatusForbidden, "Not authorized to delete this review")
		return
	}
	s.siteReviews = slices.Delete(s.siteReviews, i, i+1)
	succeed(w, http.StatusOK, "Review deleted", nil)
}
