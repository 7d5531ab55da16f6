package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/meetly-app/meetly/pkg/models"
)

func TestRoleDashboardPath(t *testing.T) {
	tests := []struct {
		role models.Role
		want string
	}{
		{models.RoleUser, "/dashboard/user"},
		{models.RoleHost, "/dashboard/host"},
		{models.RoleAdmin, "/dashboard/admin"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.DashboardPath(); got != tt.want {
				t.Errorf("DashboardPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Role
		wantErr bool
	}{
		{"user", models.RoleUser, false},
		{"HOST", models.RoleHost, false},
		{" Admin ", models.RoleAdmin, false},
		{"superuser", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := models.ParseRole(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEventCapacity(t *testing.T) {
	tests := []struct {
		name     string
		ev       models.Event
		full     bool
		left     int
		joinable bool
	}{
		{
			name:     "open upcoming",
			ev:       models.Event{MaxParticipants: 10, CurrentParticipants: 3, Status: models.StatusUpcoming, IsApproved: true},
			left:     7,
			joinable: true,
		},
		{
			name: "exactly full",
			ev:   models.Event{MaxParticipants: 5, CurrentParticipants: 5, Status: models.StatusUpcoming, IsApproved: true},
			full: true,
		},
		{
			name: "over capacity",
			ev:   models.Event{MaxParticipants: 5, CurrentParticipants: 6, Status: models.StatusUpcoming, IsApproved: true},
			full: true,
		},
		{
			name: "not approved",
			ev:   models.Event{MaxParticipants: 5, CurrentParticipants: 1, Status: models.StatusUpcoming},
			left: 4,
		},
		{
			name: "completed",
			ev:   models.Event{MaxParticipants: 5, CurrentParticipants: 1, Status: models.StatusCompleted, IsApproved: true},
			left: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.IsFull(); got != tt.full {
				t.Errorf("IsFull() = %v, want %v", got, tt.full)
			}
			if got := tt.ev.SpotsLeft(); got != tt.left {
				t.Errorf("SpotsLeft() = %d, want %d", got, tt.left)
			}
			if got := tt.ev.Joinable(); got != tt.joinable {
				t.Errorf("Joinable() = %v, want %v", got, tt.joinable)
			}
		})
	}
}

func TestEventDiscountedPrice(t *testing.T) {
	ev := models.Event{IsPaid: true, Price: 25}
	if got := ev.DiscountedPrice(20); got != 20 {
		t.Errorf("DiscountedPrice(20) = %v, want 20", got)
	}
	if got := ev.DiscountedPrice(150); got != 0 {
		t.Errorf("DiscountedPrice(150) = %v, want 0", got)
	}
	if got := ev.DiscountedPrice(-5); got != 25 {
		t.Errorf("DiscountedPrice(-5) = %v, want 25", got)
	}
	free := models.Event{Price: 25}
	if got := free.DiscountedPrice(0); got != 0 {
		t.Errorf("free event DiscountedPrice = %v, want 0", got)
	}
}

func TestEventParticipantsAndHost(t *testing.T) {
	ev := models.Event{
		Host:         &models.User{ID: "h1"},
		Participants: []models.User{{ID: "u1"}, {ID: "u2"}},
	}
	if !ev.HasParticipant("u2") {
		t.Error("expected u2 to be a participant")
	}
	if ev.HasParticipant("u3") {
		t.Error("u3 should not be a participant")
	}
	if !ev.HostedBy("h1") || ev.HostedBy("u1") {
		t.Error("HostedBy mismatch")
	}
}

func TestEventDecodesAPIShape(t *testing.T) {
	raw := `{"_id":"e1","title":"Go meetup","date":"2026-11-02T00:00:00Z","time":"18:30",
		"maxParticipants":20,"currentParticipants":4,"isPaid":false,"price":0,
		"isApproved":true,"status":"upcoming","host":{"_id":"h1","name":"Ana","role":"Host"}}`
	var ev models.Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.ID != "e1" || ev.Host == nil || ev.Host.Role != models.RoleHost {
		t.Errorf("decoded event = %+v", ev)
	}
	if !ev.Date.Equal(time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", ev.Date)
	}
}

func TestConversationOther(t *testing.T) {
	c := models.Conversation{Participants: []models.User{{ID: "a"}, {ID: "b"}}}
	if other := c.Other("a"); other == nil || other.ID != "b" {
		t.Errorf("Other(a) = %v, want b", other)
	}
	solo := models.Conversation{Participants: []models.User{{ID: "a"}}}
	if other := solo.Other("a"); other != nil {
		t.Errorf("Other on single participant = %v, want nil", other)
	}
}

func TestReactionCounts(t *testing.T) {
	r := models.Review{Reactions: []models.Reaction{
		{Emoji: "👍", Users: []string{"a"}},
		{Emoji: "❤️", Users: []string{"a", "b", "c"}},
		{Emoji: "👍", Users: []string{"d"}},
		{Emoji: "😮", Users: nil},
	}}
	got := r.ReactionCounts()
	if len(got) != 2 {
		t.Fatalf("ReactionCounts() len = %d, want 2 (%v)", len(got), got)
	}
	if got[0].Emoji != "❤️" || got[0].Count != 3 {
		t.Errorf("first = %+v, want ❤️ x3", got[0])
	}
	if got[1].Emoji != "👍" || got[1].Count != 2 {
		t.Errorf("second = %+v, want 👍 x2", got[1])
	}
}

func TestUserSubscriptionActive(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := &models.UserSubscription{Status: "active", StartDate: start, EndDate: start.AddDate(0, 1, 0)}

	if !sub.Active(start.AddDate(0, 0, 10)) {
		t.Error("expected active inside the window")
	}
	if sub.Active(start.AddDate(0, 2, 0)) {
		t.Error("expected inactive after the window")
	}
	sub.Status = "cancelled"
	if sub.Active(start.AddDate(0, 0, 10)) {
		t.Error("cancelled subscription should not be active")
	}
	var none *models.UserSubscription
	if none.Active(start) {
		t.Error("nil subscription should not be active")
	}
}

func TestValidRating(t *testing.T) {
	for r, want := range map[int]bool{0: false, 1: true, 5: true, 6: false} {
		if got := models.ValidRating(r); got != want {
			t.Errorf("ValidRating(%d) = %v, want %v", r, got, want)
		}
	}
}
