// Package conversation implements the chat request handshake that gates
// direct messages between two users.
//
//	none --request--> pending --accept--> accepted
//	                     |  \--reject--> rejected --request--> pending
//	                     \--cancel--> none
//
// Only the requester may cancel; only the recipient may accept or reject.
// The server decides the final state; the client checks the transition
// against the freshly fetched view before sending it.
package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/meetly-app/meetly/internal/notify"
	"github.com/meetly-app/meetly/pkg/models"
)

// ErrInvalidTransition is returned when an action is not allowed from the
// current state or by the current party.
var ErrInvalidTransition = errors.New("conversation: action not allowed in current state")

// Action is a handshake step.
type Action string

const (
	ActionRequest Action = "request"
	ActionCancel  Action = "cancel"
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
)

// Service is the subset of the conversations API the handshake drives.
type Service interface {
	Check(ctx context.Context, userID string) (*models.ConversationCheck, error)
	Request(ctx context.Context, req models.ConversationRequest) (*models.Conversation, error)
	Cancel(ctx context.Context, id string) (*models.Conversation, error)
	Accept(ctx context.Context, id string) (*models.Conversation, error)
	Reject(ctx context.Context, id string) (*models.Conversation, error)
}

// View is the handshake state between the current user and another user.
type View struct {
	Status       models.ConversationStatus
	Conversation *models.Conversation
	IsRequester  bool
}

// ChatUnlocked reports whether messages may be exchanged.
func (v View) ChatUnlocked() bool {
	return v.Status == models.ConversationAccepted
}

// Allowed returns the actions the current user may take.
func (v View) Allowed() []Action {
	switch v.Status {
	case models.ConversationNone, models.ConversationRejected, "":
		return []Action{ActionRequest}
	case models.ConversationPending:
		if v.IsRequester {
			return []Action{ActionCancel}
		}
		return []Action{ActionAccept, ActionReject}
	}
	return nil
}

// Can reports whether a is in Allowed.
func (v View) Can(a Action) bool {
	for _, allowed := range v.Allowed() {
		if allowed == a {
			return true
		}
	}
	return false
}

// Handshake drives the request flow with one other user.
type Handshake struct {
	svc Service
	bus *notify.Bus
}

// New returns a Handshake. bus may be nil.
func New(svc Service, bus *notify.Bus) *Handshake {
	return &Handshake{svc: svc, bus: bus}
}

// Status fetches the current view.
func (h *Handshake) Status(ctx context.Context, otherUserID string) (View, error) {
	chk, err := h.svc.Check(ctx, otherUserID)
	if err != nil {
		return View{}, err
	}
	v := View{Status: chk.Status, Conversation: chk.Conversation, IsRequester: chk.IsRequester}
	if v.Status == "" {
		v.Status = models.ConversationNone
	}
	return v, nil
}

// Request sends a chat request with an optional opening message.
func (h *Handshake) Request(ctx context.Context, otherUserID, message string) (View, error) {
	v, err := h.guard(ctx, otherUserID, ActionRequest)
	if err != nil {
		return v, err
	}
	conv, err := h.svc.Request(ctx, models.ConversationRequest{RecipientID: otherUserID, Message: message})
	if err != nil {
		return v, err
	}
	return View{Status: models.ConversationPending, Conversation: conv, IsRequester: true}, nil
}

// Cancel withdraws the current user's pending request.
func (h *Handshake) Cancel(ctx context.Context, otherUserID string) (View, error) {
	v, err := h.guard(ctx, otherUserID, ActionCancel)
	if err != nil {
		return v, err
	}
	if _, err := h.svc.Cancel(ctx, v.Conversation.ID); err != nil {
		return v, err
	}
	h.bus.Publish(notify.UnreadCountChanged)
	return View{Status: models.ConversationNone}, nil
}

// Accept accepts a pending request from otherUserID.
func (h *Handshake) Accept(ctx context.Context, otherUserID string) (View, error) {
	return h.respond(ctx, otherUserID, ActionAccept)
}

// Reject declines a pending request from otherUserID.
func (h *Handshake) Reject(ctx context.Context, otherUserID string) (View, error) {
	return h.respond(ctx, otherUserID, ActionReject)
}

func (h *Handshake) respond(ctx context.Context, otherUserID string, a Action) (View, error) {
	v, err := h.guard(ctx, otherUserID, a)
	if err != nil {
		return v, err
	}
	respond := h.svc.Accept
	if a == ActionReject {
		respond = h.svc.Reject
	}
	conv, err := respond(ctx, v.Conversation.ID)
	if err != nil {
		return v, err
	}
	h.bus.Publish(notify.UnreadCountChanged)

	out := View{Conversation: conv, Status: conv.Status}
	if out.Status == "" {
		out.Status = models.ConversationAccepted
		if a == ActionReject {
			out.Status = models.ConversationRejected
		}
	}
	return out, nil
}

// guard fetches the view and checks that a is allowed from it.
func (h *Handshake) guard(ctx context.Context, otherUserID string, a Action) (View, error) {
	v, err := h.Status(ctx, otherUserID)
	if err != nil {
		return v, err
	}
	if !v.Can(a) {
		return v, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, a, v.Status)
	}
	if a != ActionRequest && v.Conversation == nil {
		return v, fmt.Errorf("%w: %s without a conversation", ErrInvalidTransition, a)
	}
	return v, nil
}
