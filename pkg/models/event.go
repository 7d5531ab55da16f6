package models

import (
	"math"
	"slices"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// ValidEventStatuses returns all valid lifecycle values.
func ValidEventStatuses() []EventStatus {
	return []EventStatus{StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled}
}

// IsValid checks if the status is a known value.
func (s EventStatus) IsValid() bool {
	return slices.Contains(ValidEventStatuses(), s)
}

// Event is a scheduled gathering created by a host.
type Event struct {
	ID                  string      `json:"_id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Category            string      `json:"category,omitempty"`
	Location            string      `json:"location,omitempty"`
	Date                time.Time   `json:"date"`
	Time                string      `json:"time,omitempty"`
	MaxParticipants     int         `json:"maxParticipants"`
	CurrentParticipants int         `json:"currentParticipants"`
	IsPaid              bool        `json:"isPaid"`
	Price               float64     `json:"price"`
	IsApproved          bool        `json:"isApproved"`
	Status              EventStatus `json:"status"`
	Host                *User       `json:"host,omitempty"`
	Participants        []User      `json:"participants,omitempty"`
	ImageURL            string      `json:"imageUrl,omitempty"`
	Tags                []string    `json:"tags,omitempty"`
	CreatedAt           time.Time   `json:"createdAt,omitzero"`
}

// IsFull reports whether no seats remain.
func (e *Event) IsFull() bool {
	return e.CurrentParticipants >= e.MaxParticipants
}

// SpotsLeft returns the number of open seats, never negative.
func (e *Event) SpotsLeft() int {
	return max(e.MaxParticipants-e.CurrentParticipants, 0)
}

// Joinable reports whether the join action should be offered: the event
// is upcoming, approved and has open capacity.
func (e *Event) Joinable() bool {
	return e.Status == StatusUpcoming && e.IsApproved && !e.IsFull()
}

// HasParticipant reports whether the user is in the participant list.
func (e *Event) HasParticipant(userID string) bool {
	return slices.ContainsFunc(e.Participants, func(u User) bool { return u.ID == userID })
}

// HostedBy reports whether the user hosts the event.
func (e *Event) HostedBy(userID string) bool {
	return e.Host != nil && e.Host.ID == userID
}

// DiscountedPrice applies a subscription discount percentage to the price,
// rounded to cents. Free events always cost zero.
func (e *Event) DiscountedPrice(percent float64) float64 {
	if !e.IsPaid {
		return 0
	}
	percent = min(max(percent, 0), 100)
	return math.Round(e.Price*(100-percent)) / 100
}

// EventInput is the payload for creating or updating an event.
type EventInput struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category,omitempty"`
	Location        string    `json:"location,omitempty"`
	Date            time.Time `json:"date"`
	Time            string    `json:"time,omitempty"`
	MaxParticipants int       `json:"maxParticipants"`
	IsPaid          bool      `json:"isPaid"`
	Price           float64   `json:"price"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
}

// EventFilter narrows GET /events.
type EventFilter struct {
	Search   string
	Category string
	Status   EventStatus
	Page     int
	Limit    int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// EventPage is the data of GET /events.
type EventPage struct {
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}
