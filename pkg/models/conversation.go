package models

import "time"

// ConversationStatus is the request/accept state of a direct-message thread
// as observed by the client.
type ConversationStatus string

const (
	ConversationNone     ConversationStatus = "none"
	ConversationPending  ConversationStatus = "pending"
	ConversationAccepted ConversationStatus = "accepted"
	ConversationRejected ConversationStatus = "rejected"
)

// Conversation is a direct-message thread between two users.
type Conversation struct {
	ID           string             `json:"_id"`
	Participants []User             `json:"participants"`
	Requester    *User              `json:"requester,omitempty"`
	Recipient    *User              `json:"recipient,omitempty"`
	Status       ConversationStatus `json:"status"`
	LastMessage  *Message           `json:"lastMessage,omitempty"`
	UnreadCount  int                `json:"unreadCount"`
	UpdatedAt    time.Time          `json:"updatedAt,omitzero"`
}

// Other returns the participant that is not userID, or nil.
func (c *Conversation) Other(userID string) *User {
	for i := range c.Participants {
		if c.Participants[i].ID != userID {
			return &c.Participants[i]
		}
	}
	return nil
}

// ConversationCheck is the data of GET /conversations/check/:userId.
type ConversationCheck struct {
	Status       ConversationStatus `json:"status"`
	Conversation *Conversation      `json:"conversation,omitempty"`
	IsRequester  bool               `json:"isRequester"`
}

// ConversationRequest is the payload for POST /conversations/request.
type ConversationRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message,omitempty"`
}

// Message is a single chat message.
type Message struct {
	ID             string    `json:"_id"`
	ConversationID string    `json:"conversationId"`
	Sender         *User     `json:"sender,omitempty"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SendMessageRequest is the payload for POST /messages.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

// Count is the data of the count endpoints.
type Count struct {
	Count int `json:"count"`
}
