package models

import (
	"cmp"
	"slices"
	"time"
)

// Reaction is an emoji-style reaction and the users who left it.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
}

// ReactionCount is an emoji with the number of users who used it.
type ReactionCount struct {
	Emoji string
	Count int
}

// countReactions folds reactions by emoji, most used first.
func countReactions(reactions []Reaction) []ReactionCount {
	byEmoji := make(map[string]int)
	var order []string
	for _, r := range reactions {
		if _, ok := byEmoji[r.Emoji]; !ok {
			order = append(order, r.Emoji)
		}
		byEmoji[r.Emoji] += len(r.Users)
	}
	out := make([]ReactionCount, 0, len(order))
	for _, e := range order {
		if byEmoji[e] > 0 {
			out = append(out, ReactionCount{Emoji: e, Count: byEmoji[e]})
		}
	}
	slices.SortStableFunc(out, func(a, b ReactionCount) int { return cmp.Compare(b.Count, a.Count) })
	return out
}

// Review is rating feedback attached to an event or a host.
type Review struct {
	ID        string     `json:"_id"`
	Event     string     `json:"event,omitempty"`
	Host      string     `json:"host,omitempty"`
	User      *User      `json:"user,omitempty"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	Reactions []Reaction `json:"reactions,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
}

// ReactionCounts folds the review's reactions by emoji.
func (r *Review) ReactionCounts() []ReactionCount { return countReactions(r.Reactions) }

// ReviewInput is the payload for POST /reviews.
type ReviewInput struct {
	EventID string `json:"eventId,omitempty"`
	HostID  string `json:"hostId,omitempty"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewFilter narrows GET /reviews.
type ReviewFilter struct {
	EventID string
	HostID  string
}

// Comment is free text attached to an event.
type Comment struct {
	ID        string     `json:"_id"`
	Event     string     `json:"event"`
	User      *User      `json:"user,omitempty"`
	Content   string     `json:"content"`
	Reactions []Reaction `json:"reactions,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
}

// ReactionCounts folds the comment's reactions by emoji.
func (c *Comment) ReactionCounts() []ReactionCount { return countReactions(c.Reactions) }

// CommentInput is the payload for POST /comments.
type CommentInput struct {
	EventID string `json:"eventId"`
	Content string `json:"content"`
}

// WebsiteReview is feedback about the platform itself.
type WebsiteReview struct {
	ID        string    `json:"_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// WebsiteReviewInput is the payload for POST /website-reviews.
type WebsiteReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReactionInput is the payload for the react endpoints.
type ReactionInput struct {
	Emoji string `json:"emoji"`
}

// ValidRating reports whether a star rating is within 1..5.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}
