package api

import (
	"context"
	"strings"

	"github.com/meetly-app/meetly/pkg/models"
)

// MessagesService covers /messages.
type MessagesService struct {
	c *Client
}

// Send posts a message to an accepted conversation.
func (s *MessagesService) Send(ctx context.Context, req models.SendMessageRequest) (*models.Message, error) {
	if req.ConversationID == "" {
		return nil, ErrMissingID
	}
	req.Content = strings.TrimSpace(req.Content)
	msg, err := call[models.Message](ctx, s.c, post("/messages", req))
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns a conversation's messages, oldest first.
func (s *MessagesService) List(ctx context.Context, conversationID string) ([]models.Message, error) {
	p, err := pathf("/messages", conversationID)
	if err != nil {
		return nil, err
	}
	return call[[]models.Message](ctx, s.c, get(p, nil))
}

// MarkRead marks every message in a conversation as read by the current
// user.
func (s *MessagesService) MarkRead(ctx context.Context, conversationID string) error {
	p, err := withSuffix("/messages", conversationID, "read")
	if err != nil {
		return err
	}
	return s.c.do(ctx, put(p, nil), nil)
}

// UnreadCount returns the current user's unread message total.
func (s *MessagesService) UnreadCount(ctx context.Context) (int, error) {
	n, err := call[models.Count](ctx, s.c, get("/messages/unread-count", nil))
	return n.Count, err
}
