package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	client := NewClient("test-token")
	client.BaseURL = server.URL
	client.UserAgent = "guilded-test"
	return client
}

func TestDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "guilded-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "/channels/channel-id", r.URL.Path)

		switch r.Method {
		case "GET":
			w.Write([]byte(`{"channel":{"id":"channel-id"}}`))
		case "POST":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"channel":{"id":"channel-id"}}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()
	client := newTestClient(server)

	var out struct {
		Channel struct {
			ID string `json:"id"`
		} `json:"channel"`
	}
	require.NoError(t, client.Do(context.Background(), "GET", "/channels/channel-id", nil, &out))
	assert.Equal(t, "channel-id", out.Channel.ID)

	in := map[string]string{"name": "general"}
	require.NoError(t, client.Do(context.Background(), "POST", "/channels/channel-id", in, &out))
}

func TestDo_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"ChannelNotFound","message":"The requested channel was not found"}`))
	}))
	defer server.Close()
	client := newTestClient(server)

	err := client.Do(context.Background(), "GET", "/channels/nope", nil, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "ChannelNotFound", apiErr.Code)
	assert.Equal(t, "The requested channel was not found", apiErr.Message)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsForbidden(err))
}

func TestDo_RateLimitRetry(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&requests, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"code":"TooManyRequests","message":"slow down"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()
	client := newTestClient(server)

	require.NoError(t, client.Do(context.Background(), "GET", "/users/user-id", nil, nil))
	assert.EqualValues(t, 2, atomic.LoadInt64(&requests))
}

func TestDo_RateLimitExhausted(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":"TooManyRequests","message":"slow down"}`))
	}))
	defer server.Close()
	client := newTestClient(server)

	err := client.Do(context.Background(), "GET", "/users/user-id", nil, nil)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.EqualValues(t, 1+maxRateLimitRetries, atomic.LoadInt64(&requests))
}
