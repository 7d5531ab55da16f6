// Package apitest runs an in-memory Meetly API for tests. It implements the
// endpoints the client uses with the same envelope, status codes and
// authorization rules as the real server, and issues HS256 bearer tokens.
package apitest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/meetly-app/meetly/pkg/models"
)

// Seeded credentials. Every seeded account shares Password.
const (
	UserEmail  = "user@gmail.com"
	HostEmail  = "host@gmail.com"
	AdminEmail = "admin@gmail.com"
	Password   = "Password@123"
)

// Seed holds the ids of the fixtures New creates.
type Seed struct {
	User  string
	Host  string
	Admin string

	// FreeEvent is upcoming, approved, free and has room.
	FreeEvent string
	// FullEvent is upcoming and approved but at capacity.
	FullEvent string
	// PaidEvent is upcoming, approved and costs money.
	PaidEvent string
	// PendingEvent is awaiting admin approval.
	PendingEvent string

	Plan string
}

// Recorded is a request the server received.
type Recorded struct {
	Method string
	Path   string
	Header http.Header
}

type account struct {
	user     models.User
	password string
}

type intent struct {
	id       string
	userID   string
	eventID  string
	planID   string
	amount   float64
	consumed bool
}

type payment struct {
	eventID string
	userID  string
	amount  float64
}

// Server is a fake API. Fields are guarded by mu.
type Server struct {
	*httptest.Server

	// Now is the server clock.
	Now func() time.Time

	Seed Seed

	mu            sync.Mutex
	secret        []byte
	accounts      map[string]*account
	events        map[string]*models.Event
	eventOrder    []string
	conversations map[string]*models.Conversation
	messages      map[string][]models.Message
	reviews       []models.Review
	comments      []models.Comment
	siteReviews   []models.WebsiteReview
	plans         []models.SubscriptionPlan
	subs          map[string]*models.UserSubscription
	intents       map[string]*intent
	payments      []payment
	recorded      []Recorded
}

// New starts a seeded server that closes when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := NewUnstarted()
	s.Start()
	t.Cleanup(s.Close)
	return s
}

// NewUnstarted builds a seeded server without listening. Call Start.
func NewUnstarted() *Server {
	s := &Server{
		Now:           time.Now,
		secret:        []byte(uuid.NewString()),
		accounts:      make(map[string]*account),
		events:        make(map[string]*models.Event),
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]models.Message),
		subs:          make(map[string]*models.UserSubscription),
		intents:       make(map[string]*intent),
	}
	s.Server = httptest.NewUnstartedServer(s.routes())
	s.seed()
	return s
}

func (s *Server) seed() {
	s.Seed.User = s.AddUser(models.User{Name: "Demo User", Email: UserEmail, Role: models.RoleUser}, Password).ID
	s.Seed.Host = s.AddUser(models.User{Name: "Demo Host", Email: HostEmail, Role: models.RoleHost}, Password).ID
	s.Seed.Admin = s.AddUser(models.User{Name: "Demo Admin", Email: AdminEmail, Role: models.RoleAdmin}, Password).ID

	week := s.Now().Add(7 * 24 * time.Hour).Truncate(24 * time.Hour)
	base := models.Event{
		Date:            week,
		Time:            "18:00",
		Category:        "Meetup",
		Location:        "Community Hall",
		MaxParticipants: 20,
		IsApproved:      true,
		Status:          models.StatusUpcoming,
	}

	free := base
	free.Title, free.Description = "Board Game Night", "Bring a friend and a **favourite game**."
	s.Seed.FreeEvent = s.AddEvent(free, s.Seed.Host).ID

	full := base
	full.Title, full.Description, full.MaxParticipants, full.CurrentParticipants = "Sold Out Supper", "No seats left.", 2, 2
	s.Seed.FullEvent = s.AddEvent(full, s.Seed.Host).ID

	paid := base
	paid.Title, paid.Description, paid.Category, paid.IsPaid, paid.Price = "Jazz Evening", "Live quartet.", "Music", true, 25
	s.Seed.PaidEvent = s.AddEvent(paid, s.Seed.Host).ID

	pending := base
	pending.Title, pending.Description, pending.IsApproved = "Rooftop Yoga", "Sunrise session.", false
	s.Seed.PendingEvent = s.AddEvent(pending, s.Seed.Host).ID

	s.plans = append(s.plans, models.SubscriptionPlan{
		ID:              uuid.NewString(),
		Name:            "Premium",
		Description:     "Discounts on paid events",
		Price:           9.99,
		DurationDays:    30,
		DiscountPercent: 20,
		Features:        []string{"20% off tickets", "Priority support"},
		IsActive:        true,
	})
	s.Seed.Plan = s.plans[0].ID
}

// AddUser creates an account and returns its user record.
func (s *Server) AddUser(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.IsActive = true
	u.CreatedAt = s.Now().UTC()
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

// AddEvent stores ev hosted by hostID and returns it.
func (s *Server) AddEvent(ev models.Event, hostID string) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if acc, ok := s.accounts[hostID]; ok {
		host := acc.user
		ev.Host = &host
	}
	if ev.Status == "" {
		ev.Status = models.StatusUpcoming
	}
	ev.CreatedAt = s.Now().UTC()
	s.events[ev.ID] = &ev
	s.eventOrder = append(s.eventOrder, ev.ID)
	return ev
}

// Event returns a copy of the stored event.
func (s *Server) Event(id string) (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return models.Event{}, false
	}
	return *ev, true
}

// Token signs a bearer token for userID valid for ttl.
func (s *Server) Token(userID string, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signLocked(userID, ttl)
}

func (s *Server) signLocked(userID string, ttl time.Duration) string {
	claims := jwt.MapClaims{"id": userID, "iat": s.Now().Unix(), "exp": s.Now().Add(ttl).Unix()}
	if acc, ok := s.accounts[userID]; ok {
		claims["role"] = string(acc.user.Role)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return tok
}

// RotateSecret invalidates every token issued so far.
func (s *Server) RotateSecret() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(uuid.NewString())
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.recorded))
	copy(out, s.recorded)
	return out
}

// APIURL is the base URL clients should use.
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Get("/checkout/{id}", s.checkout)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)
		r.Post("/auth/social-login", s.socialLogin)

		r.Get("/events", s.listEvents)
		r.Get("/events/categories", s.categories)
		r.Get("/events/{id}", s.getEvent)
		r.Get("/users/{id}", s.getUser)
		r.Get("/reviews", s.listReviews)
		r.Get("/comments", s.listComments)
		r.Get("/website-reviews", s.listSiteReviews)
		r.Get("/subscriptions/plans", s.listPlans)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.me)

			r.Post("/events", s.createEvent)
			r.Put("/events/{id}", s.updateEvent)
			r.Delete("/events/{id}", s.deleteEvent)
			r.Post("/events/{id}/join", s.joinEvent)
			r.Post("/events/{id}/leave", s.leaveEvent)

			r.Put("/users/profile", s.updateProfile)
			r.Get("/users/{id}/events", s.userEvents)
			r.Get("/users/{id}/hosted-events", s.hostedEvents)

			r.Post("/conversations/request", s.requestConversation)
			r.Post("/conversations/{id}/cancel", s.cancelConversation)
			r.Post("/conversations/{id}/accept", s.respondConversation(models.ConversationAccepted))
			r.Post("/conversations/{id}/reject", s.respondConversation(models.ConversationRejected))
			r.Get("/conversations", s.listConversations)
			r.Get("/conversations/check/{userId}", s.checkConversation)
			r.Get("/conversations/pending-count", s.pendingCount)

			r.Post("/messages", s.sendMessage)
			r.Get("/messages/unread-count", s.unreadCount)
			r.Get("/messages/{conversationId}", s.listMessages)
			r.Put("/messages/{conversationId}/read", s.markRead)

			r.Post("/payments/create-intent", s.createIntent)
			r.Post("/payments/confirm-and-join", s.confirmAndJoin)
			r.Get("/payments/revenue", s.revenue)

			r.Get("/subscriptions/me", s.mySubscription)
			r.Post("/subscriptions/subscribe", s.subscribe)
			r.Post("/subscriptions/confirm", s.confirmSubscription)
			r.Post("/subscriptions/cancel", s.cancelSubscription)

			r.Post("/reviews", s.createReview)
			r.Delete("/reviews/{id}", s.deleteReview)
			r.Post("/reviews/{id}/react", s.reactReview)
			r.Post("/comments", s.createComment)
			r.Delete("/comments/{id}", s.deleteComment)
			r.Post("/comments/{id}/react", s.reactComment)
			r.Post("/website-reviews", s.createSiteReview)
			r.Delete("/website-reviews/{id}", s.deleteSiteReview)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(models.RoleAdmin))

				r.Post("/subscriptions/admin/plans", s.upsertPlan)
				r.Get("/admin/users", s.adminUsers)
				r.Patch("/admin/users/{id}/status", s.adminSetStatus)
				r.Delete("/admin/users/{id}", s.adminDeleteUser)
				r.Get("/admin/events", s.adminEvents)
				r.Patch("/admin/events/{id}/approve", s.adminApprove)
				r.Delete("/admin/events/{id}", s.adminDeleteEvent)
				r.Get("/admin/reviews", s.adminReviews)
				r.Delete("/admin/reviews/{id}", s.adminDeleteReview)
				r.Get("/admin/stats", s.adminStats)
			})
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.recorded = append(s.recorded, Recorded{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type userKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			fail(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		s.mu.Lock()
		secret := s.secret
		s.mu.Unlock()

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(s.Now))
		if err != nil {
			fail(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		id, _ := claims["id"].(string)

		s.mu.Lock()
		acc, ok := s.accounts[id]
		active := ok && acc.user.IsActive
		s.mu.Unlock()
		if !ok {
			fail(w, http.StatusUnauthorized, "User not found")
			return
		}
		if !active {
			fail(w, http.StatusForbidden, "Account is deactivated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}

func (s *Server) requireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			acc := s.accounts[currentUser(r)]
			s.mu.Unlock()
			if acc == nil || acc.user.Role != role {
				fail(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}

// userLocked returns a copy of the account's public record.
func (s *Server) userLocked(id string) *models.User {
	acc, ok := s.accounts[id]
	if !ok {
		return nil
	}
	u := acc.user
	return &u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func succeed(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, map[string]any{"success": true, "message": message, "data": data})
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

type fieldError struct {
	Msg  string `json:"msg"`
	Path string `json:"path"`
}

// invalid mimics express-validator output: no message, only errors.
func invalid(w http.ResponseWriter, errs ...fieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": errs})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
