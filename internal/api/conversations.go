package api

import (
	"context"

	"github.com/meetly-app/meetly/pkg/models"
)

// ConversationsService covers /conversations, the request handshake that
// gates direct messages.
type ConversationsService struct {
	c *Client
}

// Request opens a pending conversation with another user.
func (s *ConversationsService) Request(ctx context.Context, req models.ConversationRequest) (*models.Conversation, error) {
	if req.RecipientID == "" {
		return nil, ErrMissingID
	}
	return conversationCall(ctx, s.c, post("/conversations/request", req))
}

// Cancel withdraws a pending request the current user sent.
func (s *ConversationsService) Cancel(ctx context.Context, id string) (*models.Conversation, error) {
	return s.transition(ctx, id, "cancel")
}

// Accept accepts a pending request addressed to the current user.
func (s *ConversationsService) Accept(ctx context.Context, id string) (*models.Conversation, error) {
	return s.transition(ctx, id, "accept")
}

// Reject declines a pending request addressed to the current user.
func (s *ConversationsService) Reject(ctx context.Context, id string) (*models.Conversation, error) {
	return s.transition(ctx, id, "reject")
}

func (s *ConversationsService) transition(ctx context.Context, id, action string) (*models.Conversation, error) {
	p, err := withSuffix("/conversations", id, action)
	if err != nil {
		return nil, err
	}
	return conversationCall(ctx, s.c, post(p, nil))
}

// List returns the current user's conversations.
func (s *ConversationsService) List(ctx context.Context) ([]models.Conversation, error) {
	return call[[]models.Conversation](ctx, s.c, get("/conversations", nil))
}

// Check returns the handshake state between the current user and userID.
func (s *ConversationsService) Check(ctx context.Context, userID string) (*models.ConversationCheck, error) {
	p, err := pathf("/conversations/check", userID)
	if err != nil {
		return nil, err
	}
	chk, err := call[models.ConversationCheck](ctx, s.c, get(p, nil))
	if err != nil {
		return nil, err
	}
	if chk.Status == "" {
		chk.Status = models.ConversationNone
	}
	return &chk, nil
}

// PendingCount returns the number of requests awaiting the current user.
func (s *ConversationsService) PendingCount(ctx context.Context) (int, error) {
	n, err := call[models.Count](ctx, s.c, get("/conversations/pending-count", nil))
	return n.Count, err
}

func conversationCall(ctx context.Context, c *Client, req request) (*models.Conversation, error) {
	conv, err := call[models.Conversation](ctx, c, req)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}
