package tiktok

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ssrPage(username, id, secUID string, followers int) string {
	return `<html><head></head><body>` +
		`<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">` +
		fmt.Sprintf(`{"__DEFAULT_SCOPE__":{"webapp.user-detail":{"userInfo":{"user":{"id":"%v","uniqueId":"%v","nickname":"Test User","avatarLarger":"https://img.example.com/avatar.jpg","signature":"test bio","verified":true,"secUid":"%v"},"stats":{"followerCount":%v,"videoCount":42}}}}}`, id, username, secUID, followers) +
		`</script></body></html>`
}

func itemListJSON(ids ...string) string {
	items := ""
	for idx, id := range ids {
		if idx > 0 {
			items += ","
		}

		items += fmt.Sprintf(`{
			"id": %q,
			"desc": "video %v",
			"createTime": %v,
			"author": {"uniqueId": "testuser", "id": "1", "nickname": "Test User", "verified": false},
			"video": {"cover": "https://img.example.com/cover%v.jpg"},
			"stats": {"playCount": 100, "diggCount": 50, "shareCount": 10, "commentCount": 5}
		}`, id, idx, 1706000000+idx, idx)
	}

	return fmt.Sprintf(`{"itemList": [%v], "hasMore": false, "cursor": "0", "statusCode": 0}`, items)
}

func newTestClient(serverURL string) *Client {
	return New().WithBaseURL(serverURL).WithDelays(0, 0)
}

func TestGetUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/@testuser":
			fmt.Fprint(w, ssrPage("testuser", "12345", "sec123", 1000))
		case "/@noscript":
			fmt.Fprint(w, "<html><body>nothing here</body></html>")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	t.Run("resolves profile from ssr data", func(t *testing.T) {
		author, err := client.GetUser(context.Background(), "testuser")
		require.NoError(t, err)

		assert.Equal(t, "testuser", author.Username)
		assert.Equal(t, "12345", author.ID)
		assert.Equal(t, "sec123", author.SecUID)
		assert.Equal(t, "Test User", author.Nickname)
		assert.Equal(t, 1000, author.Followers)
		assert.Equal(t, 42, author.VideoCount)
		assert.True(t, author.Verified)
	})

	t.Run("missing rehydration script", func(t *testing.T) {
		_, err := client.GetUser(context.Background(), "noscript")
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := client.GetUser(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty username", func(t *testing.T) {
		_, err := client.GetUser(context.Background(), "")
		assert.Error(t, err)
	})
}

func TestRecentVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/post/item_list/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch r.URL.Query().Get("secUid") {
		case "sec123":
			fmt.Fprint(w, itemListJSON("300", "200", "100"))
		case "secEmpty":
			fmt.Fprint(w, `{"itemList": [], "hasMore": false, "statusCode": 0}`)
		case "secBroken":
			fmt.Fprint(w, `{"statusCode": 10201}`)
		case "secLimited":
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	t.Run("parses items newest first", func(t *testing.T) {
		videos, err := client.RecentVideos(context.Background(), "sec123", 10)
		require.NoError(t, err)
		require.Len(t, videos, 3)

		assert.Equal(t, "300", videos[0].ID)
		assert.Equal(t, "100", videos[2].ID)
		assert.Equal(t, "testuser", videos[0].Username)
		assert.Equal(t, "https://www.tiktok.com/@testuser/video/300", videos[0].URL())
		assert.Equal(t, 100, videos[0].Views)
		assert.Equal(t, "https://img.example.com/cover0.jpg", videos[0].Cover)
	})

	t.Run("empty item list", func(t *testing.T) {
		videos, err := client.RecentVideos(context.Background(), "secEmpty", 10)
		require.NoError(t, err)
		assert.Empty(t, videos)
	})

	t.Run("api error status", func(t *testing.T) {
		_, err := client.RecentVideos(context.Background(), "secBroken", 10)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("rate limited", func(t *testing.T) {
		_, err := client.RecentVideos(context.Background(), "secLimited", 10)
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("missing secUid", func(t *testing.T) {
		_, err := client.RecentVideos(context.Background(), "", 10)
		assert.Error(t, err)
	})
}

func TestExtractUniversalData(t *testing.T) {
	t.Run("malformed json inside script tag", func(t *testing.T) {
		page := `<html><body><script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">{not json</script></body></html>`

		_, err := extractUniversalData([]byte(page))
		assert.Error(t, err)
	})

	t.Run("user missing in ssr data", func(t *testing.T) {
		page := `<html><body><script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">{"__DEFAULT_SCOPE__":{}}</script></body></html>`

		data, err := extractUniversalData([]byte(page))
		require.NoError(t, err)

		_, err = extractUserFromSSR(data)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
