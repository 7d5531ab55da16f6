package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetly-app/meetly/internal/api"
	"github.com/meetly-app/meetly/internal/apitest"
	"github.com/meetly-app/meetly/pkg/models"
)

type tokenBox struct{ token string }

func (b *tokenBox) Token() string { return b.token }

func setup(t *testing.T) (*apitest.Server, *api.Client, *tokenBox) {
	t.Helper()
	srv := apitest.New(t)
	box := &tokenBox{}
	c, err := api.New(api.Options{BaseURL: srv.APIURL(), Tokens: box, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return srv, c, box
}

func login(t *testing.T, c *api.Client, box *tokenBox, email string) models.User {
	t.Helper()
	res, err := c.Auth.Login(context.Background(), models.LoginRequest{Email: email, Password: apitest.Password})
	require.NoError(t, err)
	box.token = res.Token
	return res.User
}

func TestLoginAndMe(t *testing.T) {
	_, c, box := setup(t)
	ctx := context.Background()

	_, err := c.Auth.Login(ctx, models.LoginRequest{Email: apitest.UserEmail, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", api.Message(err))

	u := login(t, c, box, apitest.UserEmail)
	assert.Equal(t, models.RoleUser, u.Role)

	me, err := c.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
}

func TestRegisterValidation(t *testing.T) {
	_, c, _ := setup(t)

	_, err := c.Auth.Register(context.Background(), models.RegisterRequest{Name: "", Email: "bad", Password: "1"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Name is required", apiErr.Message)
	assert.Len(t, apiErr.Errors, 3)

	res, err := c.Auth.Register(context.Background(), models.RegisterRequest{
		Name: "New Host", Email: "new@host.io", Password: "secret1", Role: models.RoleHost,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleHost, res.User.Role)
}

func TestJoinFreeEventIncrementsParticipants(t *testing.T) {
	srv, c, box := setup(t)
	ctx := context.Background()
	u := login(t, c, box, apitest.UserEmail)

	before, err := c.Events.Get(ctx, srv.Seed.FreeEvent)
	require.NoError(t, err)
	require.True(t, before.Joinable())

	_, err = c.Events.Join(ctx, srv.Seed.FreeEvent)
	require.NoError(t, err)

	after, err := c.Events.Get(ctx, srv.Seed.FreeEvent)
	require.NoError(t, err)
	assert.Equal(t, before.CurrentParticipants+1, after.CurrentParticipants)
	assert.True(t, after.HasParticipant(u.ID))

	joined, err := c.Users.Events(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, srv.Seed.FreeEvent, joined[0].ID)

	_, err = c.Events.Join(ctx, srv.Seed.FreeEvent)
	assert.Equal(t, "You have already joined this event", api.Message(err))

	left, err := c.Events.Leave(ctx, srv.Seed.FreeEvent)
	require.NoError(t, err)
	assert.Equal(t, before.CurrentParticipants, left.CurrentParticipants)
}

func TestJoinFullEventRejected(t *testing.T) {
	srv, c, box := setup(t)
	login(t, c, box, apitest.UserEmail)

	_, err := c.Events.Join(context.Background(), srv.Seed.FullEvent)
	assert.Equal(t, "Event is full", api.Message(err))
}

func TestListEventsFilters(t *testing.T) {
	_, c, _ := setup(t)
	ctx := context.Background()

	page, err := c.Events.List(ctx, models.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.Total, "unapproved events are hidden")

	page, err = c.Events.List(ctx, models.EventFilter{Category: "Music"})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "Jazz Evening", page.Events[0].Title)

	page, err = c.Events.List(ctx, models.EventFilter{Search: "board", Limit: 1, Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Events, 1)
	assert.Equal(t, 1, page.Pagination.Pages)

	cats, err := c.Events.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Meetup", "Music"}, cats)
}

func TestHostEventLifecycle(t *testing.T) {
	_, c, box := setup(t)
	ctx := context.Background()
	host := login(t, c, box, apitest.HostEmail)

	in := models.EventInput{
		Title: "Code & Coffee", Description: "Pair programming.", Category: "Tech",
		Date: time.Now().Add(72 * time.Hour), MaxParticipants: 10,
	}
	ev, err := c.Events.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, ev.IsApproved)
	assert.True(t, ev.HostedBy(host.ID))

	in.MaxParticipants = 12
	ev, err = c.Events.Update(ctx, ev.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 12, ev.MaxParticipants)

	hosted, err := c.Users.HostedEvents(ctx, host.ID)
	require.NoError(t, err)
	assert.Len(t, hosted, 5)

	require.NoError(t, c.Events.Delete(ctx, ev.ID))
	_, err = c.Events.Get(ctx, ev.ID)
	assert.True(t, api.IsNotFound(err))
}

func TestUserCannotCreateEvent(t *testing.T) {
	_, c, box := setup(t)
	login(t, c, box, apitest.UserEmail)

	_, err := c.Events.Create(context.Background(), models.EventInput{
		Title: "x", Description: "y", Date: time.Now(), MaxParticipants: 1,
	})
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))
}

func TestConversationHandshakeAndMessages(t *testing.T) {
	srv, c, box := setup(t)
	ctx := context.Background()
	user := login(t, c, box, apitest.UserEmail)
	hostToken := srv.Token(srv.Seed.Host, time.Hour)
	userToken := box.token

	chk, err := c.Conversations.Check(ctx, srv.Seed.Host)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationNone, chk.Status)

	conv, err := c.Conversations.Request(ctx, models.ConversationRequest{RecipientID: srv.Seed.Host, Message: "Hi!"})
	require.NoError(t, err)
	assert.Equal(t, models.ConversationPending, conv.Status)

	_, err = c.Messages.Send(ctx, models.SendMessageRequest{ConversationID: conv.ID, Content: "too early"})
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))

	box.token = hostToken
	n, err := c.Conversations.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	unread, err := c.Messages.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	accepted, err := c.Conversations.Accept(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationAccepted, accepted.Status)

	require.NoError(t, c.Messages.MarkRead(ctx, conv.ID))
	unread, err = c.Messages.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = c.Messages.Send(ctx, models.SendMessageRequest{ConversationID: conv.ID, Content: "Welcome"})
	require.NoError(t, err)

	box.token = userToken
	msgs, err := c.Messages.List(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, user.ID, msgs[0].Sender.ID)

	chk, err = c.Conversations.Check(ctx, srv.Seed.Host)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationAccepted, chk.Status)
	assert.True(t, chk.IsRequester)

	list, err := c.Conversations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].UnreadCount)
}

func TestCancelPendingRequest(t *testing.T) {
	srv, c, box := setup(t)
	ctx := context.Background()
	login(t, c, box, apitest.UserEmail)

	conv, err := c.Conversations.Request(ctx, models.ConversationRequest{RecipientID: srv.Seed.Host})
	require.NoError(t, err)

	_, err = c.Conversations.Accept(ctx, conv.ID)
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err), "requester cannot accept")

	_, err = c.Conversations.Cancel(ctx, conv.ID)
	require.NoError(t, err)

	chk, err := c.Conversations.Check(ctx, srv.Seed.Host)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationNone, chk.Status)
}

func TestPaidJoinWithSubscriptionDiscount(t *testing.T) {
	srv, c, box := setup(t)
	ctx := context.Background()
	login(t, c, box, apitest.UserEmail)

	plans, err := c.Subscriptions.Plans(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	mine, err := c.Subscriptions.Mine(ctx)
	require.NoError(t, err)
	assert.Nil(t, mine)

	subIntent, err := c.Subscriptions.Subscribe(ctx, plans[0].ID)
	require.NoError(t, err)
	sub, err := c.Subscriptions.Confirm(ctx, models.SubscriptionConfirmRequest{PlanID: plans[0].ID, PaymentIntentID: subIntent.PaymentIntentID})
	require.NoError(t, err)
	assert.True(t, sub.Active(time.Now()))

	_, err = c.Events.Join(ctx, srv.Seed.PaidEvent)
	assert.Equal(t, http.StatusPaymentRequired, api.StatusCode(err))

	pi, err := c.Payments.CreateIntent(ctx, srv.Seed.PaidEvent)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, pi.OriginalAmount, 0.001)
	assert.InDelta(t, 5.0, pi.Discount, 0.001)
	assert.InDelta(t, 20.0, pi.Amount, 0.001)

	req := models.ConfirmJoinRequest{EventID: srv.Seed.PaidEvent, PaymentIntentID: pi.PaymentIntentID}
	ev, err := c.Payments.ConfirmAndJoin(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, ev.CurrentParticipants)

	ev, err = c.Payments.ConfirmAndJoin(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, ev.CurrentParticipants, "repeat confirm must not join twice")

	var keys []string
	for _, r := range srv.Requests() {
		if r.Path == "/api/payments/confirm-and-join" {
			keys = append(keys, r.Header.Get(api.HeaderIdempotencyKey))
		}
	}
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, api.IdempotencyKey(pi.PaymentIntentID), keys[0])

	box.token = srv.Token(srv.Seed.Host, time.Hour)
	rev, err := c.Payments.Revenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, rev.Total, 0.001)
	require.Len(t, rev.Events, 1)
	assert.Equal(t, 1, rev.Events[0].Tickets)

	box.token = srv.Token(srv.Seed.User, time.Hour)
	require.NoError(t, c.Subscriptions.Cancel(ctx))
}

func TestAdminModeration(t *testing.T) {
	srv, c, box := setup(t)
	ctx := context.Background()

	login(t, c, box, apitest.UserEmail)
	_, err := c.Admin.Stats(ctx)
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))

	login(t, c, box, apitest.AdminEmail)
	pending := false
	events, err := c.Admin.Events(ctx, models.AdminEventFilter{Approved: &pending})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, srv.Seed.PendingEvent, events[0].ID)

	ev, err := c.Admin.ApproveEvent(ctx, srv.Seed.PendingEvent, true)
	require.NoError(t, err)
	assert.True(t, ev.IsApproved)

	u, err := c.Admin.SetUserActive(ctx, srv.Seed.User, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	stats, err := c.Admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Events)
	assert.Zero(t, stats.PendingEvents)

	users, err := c.Admin.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	require.NoError(t, c.Admin.DeleteEvent(ctx, srv.Seed.FullEvent))

	plan, err := c.Subscriptions.UpsertPlan(ctx, models.SubscriptionPlan{Name: "Basic", Price: 4.99, DurationDays: 30, IsActive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
}

func TestReviewsCommentsReactions(t *testing.T) {
	srv, c, box := setup(t)
	ctx := context.Background()
	login(t, c, box, apitest.UserEmail)

	_, err := c.Reviews.Create(ctx, models.ReviewInput{EventID: srv.Seed.FreeEvent, Rating: 5, Comment: "Great"})
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err), "must join before reviewing")

	_, err = c.Events.Join(ctx, srv.Seed.FreeEvent)
	require.NoError(t, err)

	_, err = c.Reviews.Create(ctx, models.ReviewInput{EventID: srv.Seed.FreeEvent, Rating: 9, Comment: "x"})
	assert.Equal(t, "Rating must be between 1 and 5", api.Message(err))

	rv, err := c.Reviews.Create(ctx, models.ReviewInput{EventID: srv.Seed.FreeEvent, Rating: 5, Comment: "Great"})
	require.NoError(t, err)

	rv, err = c.Reviews.React(ctx, rv.ID, "👍")
	require.NoError(t, err)
	assert.Equal(t, []models.ReactionCount{{Emoji: "👍", Count: 1}}, rv.ReactionCounts())
	rv, err = c.Reviews.React(ctx, rv.ID, "👍")
	require.NoError(t, err)
	assert.Empty(t, rv.ReactionCounts())

	reviews, err := c.Reviews.List(ctx, models.ReviewFilter{EventID: srv.Seed.FreeEvent})
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	require.NoError(t, c.Reviews.Delete(ctx, rv.ID))

	cm, err := c.Comments.Create(ctx, models.CommentInput{EventID: srv.Seed.FreeEvent, Content: "See you there"})
	require.NoError(t, err)
	cm, err = c.Comments.React(ctx, cm.ID, "🎉")
	require.NoError(t, err)
	assert.Len(t, cm.ReactionCounts(), 1)
	comments, err := c.Comments.List(ctx, srv.Seed.FreeEvent)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	require.NoError(t, c.Comments.Delete(ctx, cm.ID))

	wr, err := c.WebsiteReviews.Create(ctx, models.WebsiteReviewInput{Rating: 4, Comment: "Handy"})
	require.NoError(t, err)
	all, err := c.WebsiteReviews.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	require.NoError(t, c.WebsiteReviews.Delete(ctx, wr.ID))
}

func TestProfileUpdate(t *testing.T) {
	_, c, box := setup(t)
	ctx := context.Background()
	u := login(t, c, box, apitest.UserEmail)

	bio := "Loves board games"
	updated, err := c.Users.UpdateProfile(ctx, models.ProfileUpdate{Bio: &bio, Interests: []string{"games"}})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, u.Name, updated.Name)

	got, err := c.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"games"}, got.Interests)
}

func TestRotatedSecretIsUnauthorized(t *testing.T) {
	srv, c, box := setup(t)
	login(t, c, box, apitest.UserEmail)
	srv.RotateSecret()

	_, err := c.Auth.Me(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}
