package messages

import (
	"errors"
	"testing"
	"time"

	"github.com/jaymaart/mummblebotv2/store"
	"github.com/jaymaart/mummblebotv2/tiktok"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0m"},
		{"minutes only", 42 * time.Minute, "42m"},
		{"rounds seconds", 90 * time.Second, "2m"},
		{"hours and minutes", 3*time.Hour + 5*time.Minute, "3h 5m"},
		{"days", 49*time.Hour + 30*time.Minute, "2d 1h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestVideoEmbed(t *testing.T) {
	feed := &store.Feed{
		Username: "testuser",
		Nickname: "Test User",
		Avatar:   "https://example.com/avatar.jpg",
	}

	video := tiktok.Video{
		ID:          "7300000000000000000",
		Username:    "testuser",
		Description: "first upload",
		Cover:       "https://example.com/cover.jpg",
		CreatedAt:   time.Unix(1700000000, 0),
	}

	msg := VideoEmbed(feed, video)

	assert.Equal(t, video.URL(), msg.Content, "raw link makes Discord render the player")

	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]

	assert.Equal(t, "New TikTok by Test User", embed.Title)
	assert.Equal(t, video.URL(), embed.URL)
	assert.Equal(t, "first upload", embed.Description)
	assert.Equal(t, "https://example.com/cover.jpg", embed.Image.URL)
	assert.Equal(t, "https://example.com/avatar.jpg", embed.Thumbnail.URL)
}

func TestVideoEmbedFallsBackToUsername(t *testing.T) {
	feed := &store.Feed{Username: "testuser"}
	video := tiktok.Video{ID: "123", Username: "testuser", CreatedAt: time.Now()}

	msg := VideoEmbed(feed, video)

	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "New TikTok by @testuser", msg.Embeds[0].Title)
}

func TestErrorEmbed(t *testing.T) {
	t.Run("user error shown verbatim", func(t *testing.T) {
		embed := ErrorEmbed(ErrNoFeeds())
		assert.Contains(t, embed.Description, "isn't watching any TikTok accounts")
	})

	t.Run("wrapped user error unwraps", func(t *testing.T) {
		wrapped := errors.Join(errors.New("outer"), ErrGuildOnly())
		embed := ErrorEmbed(wrapped)
		assert.Contains(t, embed.Description, "only works in a server")
	})

	t.Run("internal error stays generic", func(t *testing.T) {
		embed := ErrorEmbed(errors.New("mongo: connection reset"))
		assert.NotContains(t, embed.Description, "mongo")
		assert.Contains(t, embed.Description, "Something went wrong")
	})
}
