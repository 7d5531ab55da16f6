package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetly-app/meetly/pkg/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL + "/api"
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:5000", "ftp://example.com", "http://"} {
		_, err := New(Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"u1","email":"a@b.c","role":"User"}}`))
	}, Options{Tokens: StaticToken("tok-123"), UserAgent: "meetly-test/1"})

	u, err := c.Auth.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "/api/auth/me", path)
	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "meetly-test/1", got.Get("User-Agent"))
	assert.Len(t, got.Get(HeaderRequestID), 36)
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}, Options{Tokens: StaticToken("")})

	_, err := c.Events.Categories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestErrorMessageResolution(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		fields int
	}{
		{"message", 400, `{"success":false,"message":"Event is full"}`, "Event is full", 0},
		{"error field", 500, `{"error":"database down"}`, "database down", 0},
		{"validation errors", 400, `{"success":false,"errors":[{"msg":"Title is required","path":"title"},{"msg":"Date is required","path":"date"}]}`, "Title is required", 2},
		{"not json", 502, `<html>Bad gateway</html>`, GenericMessage, 0},
		{"empty", 500, ``, GenericMessage, 0},
		{"success false on 200", 200, `{"success":false,"message":"Nope"}`, "Nope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, Options{})

			_, err := c.Events.Get(context.Background(), "e1")
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, tt.want, Message(err))
			assert.Len(t, apiErr.Errors, tt.fields)
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestMalformedSuccessEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}, Options{})

	_, err := c.Events.Categories(context.Background())
	assert.ErrorIs(t, err, ErrEnvelope)
	assert.Equal(t, GenericMessage, Message(err))
}

func TestUnauthorizedHookRunsPerResponse(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Not authorized, token failed"}`))
	}, Options{
		Tokens: StaticToken("stale"),
		OnUnauthorized: func(err *Error) {
			calls.Add(1)
			assert.Equal(t, "Not authorized, token failed", err.Message)
		},
	})

	_, err := c.Auth.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = c.Messages.UnreadCount(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(2), calls.Load())
}

func TestForbiddenIsNotUnauthorized(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"message":"Access denied"}`))
	}, Options{OnUnauthorized: func(*Error) { called = true }})

	_, err := c.Admin.Stats(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
}

func TestNoRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, Options{})

	_, err := c.Events.List(context.Background(), eventFilterAll())
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, Options{Timeout: 50 * time.Millisecond})

	_, err := c.Auth.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, GenericMessage, Message(err))
}

func TestMissingIDFailsLocally(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { hits.Add(1) }, Options{})

	_, err := c.Events.Get(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingID)
	assert.ErrorIs(t, c.Messages.MarkRead(context.Background(), ""), ErrMissingID)

	_, err = c.Events.Get(context.Background(), "..")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, c.Events.Delete(context.Background(), "."), ErrInvalidID)
	assert.ErrorIs(t, c.Messages.MarkRead(context.Background(), " .. "), ErrInvalidID)
	assert.Zero(t, hits.Load())
}

func TestIdempotencyKeyIsStable(t *testing.T) {
	assert.Equal(t, IdempotencyKey("pi_1"), IdempotencyKey("pi_1"))
	assert.NotEqual(t, IdempotencyKey("pi_1"), IdempotencyKey("pi_2"))
}

func eventFilterAll() models.EventFilter { return models.EventFilter{} }
