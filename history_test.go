package guilded

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}

func TestHistoryCursorRoundTrip(t *testing.T) {
	cursor := historyCursor{
		ChannelID:      "channel-id",
		Before:         time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Limit:          25,
		IncludePrivate: true,
	}
	s, err := serializeCursor(cursor)
	require.NoError(t, err)
	require.NotEmpty(t, s)

	parsed, err := deserializeCursor(s)
	require.NoError(t, err)
	assert.Equal(t, cursor.ChannelID, parsed.ChannelID)
	assert.True(t, cursor.Before.Equal(parsed.Before))
	assert.Equal(t, cursor.Limit, parsed.Limit)
	assert.Equal(t, cursor.IncludePrivate, parsed.IncludePrivate)
}

func TestDeserializeCursor_Malformed(t *testing.T) {
	_, err := deserializeCursor("not a cursor!")
	assert.Error(t, err)
	_, err = deserializeCursor("bm90IG1zZ3BhY2s")
	assert.Error(t, err)
}

func TestMessageHistory(t *testing.T) {
	// Five messages, newest first, one minute apart.
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var all []*Message
	for i := 0; i < 5; i++ {
		all = append(all, &Message{
			ID:        fmt.Sprintf("m%d", 5-i),
			ChannelID: "channel-id",
			Content:   fmt.Sprintf("message %d", 5-i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/channels/channel-id/messages", r.URL.Path)
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			parsed, err := strconv.Atoi(s)
			require.NoError(t, err)
			limit = parsed
		}
		var before time.Time
		if s := r.URL.Query().Get("before"); s != "" {
			parsed, err := time.Parse(time.RFC3339, s)
			require.NoError(t, err)
			before = parsed
		}

		page := []*Message{}
		for _, m := range all {
			if !before.IsZero() && !m.CreatedAt.Before(before) {
				continue
			}
			page = append(page, m)
			if len(page) >= limit {
				break
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, writeJSON(w, map[string]interface{}{"messages": page}))
	}))
	defer server.Close()

	client := NewClient("test-token", &Config{
		Logger:  newTestLogger(),
		RestURL: server.URL,
	})

	page, err := client.MessageHistory(context.Background(), "channel-id", &MessagesOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "m5", page.Messages[0].ID)
	assert.Equal(t, "m4", page.Messages[1].ID)
	require.NotEmpty(t, page.NextCursor)

	page, err = client.MessagesAfterCursor(context.Background(), page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "m3", page.Messages[0].ID)
	assert.Equal(t, "m2", page.Messages[1].ID)
	require.NotEmpty(t, page.NextCursor)

	page, err = client.MessagesAfterCursor(context.Background(), page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "m1", page.Messages[0].ID)
	assert.Empty(t, page.NextCursor)

	// Fetched messages end up in the cache.
	assert.NotNil(t, client.CachedMessage("m3"))
}

func TestMessagesAfterCursor_Malformed(t *testing.T) {
	client := NewClient("test-token", &Config{Logger: newTestLogger()})
	_, err := client.MessagesAfterCursor(context.Background(), "garbage!")
	assert.Error(t, err)
}
