package apitest

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meetly-app/meetly/pkg/models"
)

// pairLocked finds the conversation between two users, if any.
func (s *Server) pairLocked(a, b string) *models.Conversation {
	for _, c := range s.conversations {
		if c.Requester == nil || c.Recipient == nil {
			continue
		}
		if (c.Requester.ID == a && c.Recipient.ID == b) || (c.Requester.ID == b && c.Recipient.ID == a) {
			return c
		}
	}
	return nil
}

func isParticipant(c *models.Conversation, uid string) bool {
	return slices.ContainsFunc(c.Participants, func(u models.User) bool { return u.ID == uid })
}

// viewLocked decorates c with the caller's unread count and last message.
func (s *Server) viewLocked(c *models.Conversation, uid string) models.Conversation {
	out := *c
	out.UnreadCount = 0
	msgs := s.messages[c.ID]
	for _, m := range msgs {
		if !m.IsRead && (m.Sender == nil || m.Sender.ID != uid) {
			out.UnreadCount++
		}
	}
	if n := len(msgs); n > 0 {
		last := msgs[n-1]
		out.LastMessage = &last
	}
	return out
}

func (s *Server) requestConversation(w http.ResponseWriter, r *http.Request) {
	var req models.ConversationRequest
	if !decode(w, r, &req) {
		return
	}
	uid := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	recipient := s.userLocked(req.RecipientID)
	switch {
	case recipient == nil:
		fail(w, http.StatusNotFound, "User not found")
		return
	case req.RecipientID == uid:
		fail(w, http.StatusBadRequest, "You cannot message yourself")
		return
	}

	conv := s.pairLocked(uid, req.RecipientID)
	if conv != nil {
		switch conv.Status {
		case models.ConversationPending:
			fail(w, http.StatusBadRequest, "A request is already pending")
			return
		case models.ConversationAccepted:
			fail(w, http.StatusBadRequest, "Conversation already exists")
			return
		}
		delete(s.conversations, conv.ID)
		delete(s.messages, conv.ID)
	}

	requester := s.userLocked(uid)
	conv = &models.Conversation{
		ID:           uuid.NewString(),
		Participants: []models.User{*requester, *recipient},
		Requester:    requester,
		Recipient:    recipient,
		Status:       models.ConversationPending,
		UpdatedAt:    s.Now().UTC(),
	}
	s.conversations[conv.ID] = conv
	if text := strings.TrimSpace(req.Message); text != "" {
		s.messages[conv.ID] = append(s.messages[conv.ID], models.Message{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			Sender:         requester,
			Content:        text,
			CreatedAt:      s.Now().UTC(),
		})
	}
	succeed(w, http.StatusCreated, "Chat request sent", s.viewLocked(conv, uid))
}

func (s *Server) cancelConversation(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, found := s.conversations[chi.URLParam(r, "id")]
	switch {
	case !found:
		fail(w, http.StatusNotFound, "Conversation not found")
		return
	case conv.Requester.ID != uid:
		fail(w, http.StatusForbidden, "Only the requester can cancel")
		return
	case conv.Status != models.ConversationPending:
		fail(w, http.StatusBadRequest, "Only pending requests can be cancelled")
		return
	}
	delete(s.conversations, conv.ID)
	delete(s.messages, conv.ID)

	out := *conv
	out.Status = models.ConversationNone
	succeed(w, http.StatusOK, "Chat request cancelled", out)
}

func (s *Server) respondConversation(to models.ConversationStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := currentUser(r)
		s.mu.Lock()
		defer s.mu.Unlock()

		conv, found := s.conversations[chi.URLParam(r, "id")]
		switch {
		case !found:
			fail(w, http.StatusNotFound, "Conversation not found")
			return
		case conv.Recipient.ID != uid:
			fail(w, http.StatusForbidden, "Only the recipient can respond")
			return
		case conv.Status != models.ConversationPending:
			fail(w, http.StatusBadRequest, "Request is no longer pending")
			return
		}
		conv.Status = to
		conv.UpdatedAt = s.Now().UTC()
		succeed(w, http.StatusOK, "Chat request "+string(to), s.viewLocked(conv, uid))
	}
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Conversation{}
	for _, c := range s.conversations {
		if isParticipant(c, uid) {
			out = append(out, s.viewLocked(c, uid))
		}
	}
	slices.SortFunc(out, func(a, b models.Conversation) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) checkConversation(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	other := chi.URLParam(r, "userId")
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.pairLocked(uid, other)
	if conv == nil {
		succeed(w, http.StatusOK, "", models.ConversationCheck{Status: models.ConversationNone})
		return
	}
	view := s.viewLocked(conv, uid)
	succeed(w, http.StatusOK, "", models.ConversationCheck{
		Status:       conv.Status,
		Conversation: &view,
		IsRequester:  conv.Requester.ID == uid,
	})
}

func (s *Server) pendingCount(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.conversations {
		if c.Status == models.ConversationPending && c.Recipient.ID == uid {
			n++
		}
	}
	succeed(w, http.StatusOK, "", models.Count{Count: n})
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		invalid(w, fieldError{Msg: "Message content is required", Path: "content"})
		return
	}
	uid := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	conv, found := s.conversations[req.ConversationID]
	switch {
	case !found || !isParticipant(conv, uid):
		fail(w, http.StatusNotFound, "Conversation not found")
		return
	case conv.Status != models.ConversationAccepted:
		fail(w, http.StatusForbidden, "Chat request has not been accepted")
		return
	}

	msg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Sender:         s.userLocked(uid),
		Content:        req.Content,
		CreatedAt:      s.Now().UTC(),
	}
	s.messages[conv.ID] = append(s.messages[conv.ID], msg)
	conv.UpdatedAt = msg.CreatedAt
	succeed(w, http.StatusCreated, "Message sent", msg)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, found := s.conversations[chi.URLParam(r, "conversationId")]
	if !found || !isParticipant(conv, uid) {
		fail(w, http.StatusNotFound, "Conversation not found")
		return
	}
	out := append([]models.Message{}, s.messages[conv.ID]...)
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, found := s.conversations[chi.URLParam(r, "conversationId")]
	if !found || !isParticipant(conv, uid) {
		fail(w, http.StatusNotFound, "Conversation not found")
		return
	}
	msgs := s.messages[conv.ID]
	for i := range msgs {
		if msgs[i].Sender == nil || msgs[i].Sender.ID != uid {
			msgs[i].IsRead = true
		}
	}
	succeed(w, http.StatusOK, "Messages marked as read", nil)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.conversations {
		if isParticipant(c, uid) {
			n += s.viewLocked(c, uid).UnreadCount
		}
	}
	succeed(w, http.StatusOK, "", models.Count{Count: n})
}
