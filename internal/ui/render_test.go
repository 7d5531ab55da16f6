package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meetly-app/meetly/pkg/models"
)

func plainRenderer() *Renderer {
	r := NewRenderer(NewTheme(true))
	r.Now = func() time.Time { return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC) }
	return r
}

func sampleEvent() models.Event {
	return models.Event{
		ID:                  "65f0c0ffee0000000000aaaa",
		Title:               "Go Meetup",
		Description:         "Talks about **Go**.",
		Category:            "Meetup",
		Location:            "Nairobi",
		Date:                time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC),
		Time:                "18:00",
		MaxParticipants:     4,
		CurrentParticipants: 2,
		IsApproved:          true,
		Status:              models.StatusUpcoming,
		Host:                &models.User{ID: "h1", Name: "Hana Host"},
		Participants:        []models.User{{ID: "u1"}},
	}
}

func TestAvailability(t *testing.T) {
	ev := sampleEvent()
	assert.Equal(t, "Open", Availability(&ev))

	ev.CurrentParticipants = ev.MaxParticipants
	assert.Equal(t, "Full", Availability(&ev))

	ev.Status = models.StatusCancelled
	assert.Equal(t, "Cancelled", Availability(&ev))

	ev.IsApproved = false
	assert.Equal(t, "Pending approval", Availability(&ev))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "65f0c0ff", ShortID("65f0c0ffee0000000000aaaa"))
}

func TestEventTable(t *testing.T) {
	r := plainRenderer()
	assert.Equal(t, "No events found.", r.EventTable(nil, ""))

	ev := sampleEvent()
	paid := sampleEvent()
	paid.ID = "paid"
	paid.Title = "Concert"
	paid.IsPaid = true
	paid.Price = 25
	paid.Participants = nil

	out := r.EventTable([]models.Event{ev, paid}, "u1")
	assert.Contains(t, out, "Go Meetup")
	assert.Contains(t, out, "Joined")
	assert.Contains(t, out, "$25.00")
	assert.Contains(t, out, "2/4")
	assert.Contains(t, out, "Open")
}

func TestEventDetail(t *testing.T) {
	r := plainRenderer()
	ev := sampleEvent()
	out := r.EventDetail(&ev, "u1")
	assert.Contains(t, out, "Go Meetup")
	assert.Contains(t, out, "Hana Host")
	assert.Contains(t, out, "You are attending")
	assert.Contains(t, out, "Free")
	assert.Contains(t, out, "Go")

	out = r.EventDetail(&ev, "someone-else")
	assert.NotContains(t, out, "You are attending")
}

func TestCapacityBar(t *testing.T) {
	r := plainRenderer()
	ev := sampleEvent()
	bar := r.CapacityBar(&ev)
	assert.True(t, strings.HasSuffix(bar, " 2/4"))
	assert.Equal(t, 12, strings.Count(bar, "#"))

	ev.MaxParticipants = 0
	assert.NotPanics(t, func() { r.CapacityBar(&ev) })
}

func TestProfile(t *testing.T) {
	r := plainRenderer()
	u := &models.User{ID: "u1", Name: "Uma", Email: "uma@example.com", Role: models.RoleUser, Interests: []string{"go", "music"}}
	out := r.Profile(u)
	assert.Contains(t, out, "Uma")
	assert.Contains(t, out, "go, music")
	assert.Contains(t, out, "Account suspended")

	u.IsActive = true
	assert.NotContains(t, r.Profile(u), "Account suspended")
}

func TestConversationsAndMessages(t *testing.T) {
	r := plainRenderer()
	me := models.User{ID: "u1", Name: "Uma"}
	other := models.User{ID: "u2", Name: "Oscar"}

	conv := models.Conversation{
		ID:           "c1",
		Participants: []models.User{me, other},
		Status:       models.ConversationAccepted,
		LastMessage:  &models.Message{Content: "see you there"},
		UnreadCount:  3,
	}
	out := r.Conversations([]models.Conversation{conv}, "u1")
	assert.Contains(t, out, "Oscar")
	assert.Contains(t, out, "Accepted")
	assert.Contains(t, out, "see you there")

	msgs := []models.Message{
		{Sender: &me, Content: "hi"},
		{Sender: &other, Content: "hello"},
	}
	out = r.Messages(msgs, "u1")
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "You: hi")
	assert.Contains(t, lines[1], "Oscar: hello")

	assert.Contains(t, r.Messages(nil, "u1"), "Say hello")
}

func TestReviewsAndComments(t *testing.T) {
	r := plainRenderer()
	at := r.Now().Add(-2 * time.Hour)
	reviews := []models.Review{{
		ID:        "r1",
		User:      &models.User{Name: "Uma"},
		Rating:    4,
		Comment:   "Great night",
		Reactions: []models.Reaction{{Emoji: "👍", Users: []string{"a", "b"}}},
		CreatedAt: at,
	}}
	out := r.Reviews(reviews)
	assert.Contains(t, out, "★★★★☆")
	assert.Contains(t, out, "Great night")
	assert.Contains(t, out, "👍 2")
	assert.Contains(t, out, "2h ago")

	comments := []models.Comment{{ID: "c1", User: &models.User{Name: "Oscar"}, Content: "Parking?"}}
	out = r.Comments(comments)
	assert.Contains(t, out, "Oscar")
	assert.NotContains(t, out, "★")

	assert.Equal(t, "No reviews yet.", r.WebsiteReviews(nil))
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "★★★★★", Stars(9))
	assert.Equal(t, "☆☆☆☆☆", Stars(-1))
}

func TestPaymentIntent(t *testing.T) {
	r := plainRenderer()
	out := r.PaymentIntent(&models.PaymentIntent{
		PaymentIntentID: "pi_1",
		Amount:          20,
		OriginalAmount:  25,
		Discount:        5,
		Currency:        "usd",
		CheckoutURL:     "http://localhost/checkout/pi_1",
	})
	assert.Contains(t, out, "$20.00")
	assert.Contains(t, out, "$25.00")
	assert.Contains(t, out, "-$5.00")
	assert.Contains(t, out, "/checkout/pi_1")
}

func TestSubscription(t *testing.T) {
	r := plainRenderer()
	assert.Equal(t, "You have no subscription.", r.Subscription(nil))

	sub := &models.UserSubscription{
		Plan:      &models.SubscriptionPlan{Name: "Premium", DiscountPercent: 20},
		Status:    "active",
		StartDate: r.Now().AddDate(0, 0, -1),
		EndDate:   r.Now().AddDate(0, 0, 29),
	}
	out := r.Subscription(sub)
	assert.Contains(t, out, "Premium")
	assert.Contains(t, out, "20% off")
	assert.NotContains(t, out, "Not active")
}

func TestCounts(t *testing.T) {
	r := plainRenderer()
	out := r.Counts(1, 2, time.Time{})
	assert.Contains(t, out, "1 unread message")
	assert.Contains(t, out, "2 pending requests")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
