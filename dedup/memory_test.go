package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDetector(t *testing.T) {
	ctx := context.Background()

	t.Run("find unknown post", func(t *testing.T) {
		detector := NewMemory()
		defer detector.Close()

		_, err := detector.Find(ctx, "channel1", "video1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("create then find", func(t *testing.T) {
		detector := NewMemory()
		defer detector.Close()

		post := &Post{
			VideoID:   "video1",
			Username:  "testuser",
			GuildID:   "guild1",
			ChannelID: "channel1",
			MessageID: "message1",
		}

		require.NoError(t, detector.Create(ctx, post, time.Hour))

		found, err := detector.Find(ctx, "channel1", "video1")
		require.NoError(t, err)
		assert.Equal(t, "message1", found.MessageID)
		assert.Equal(t, "https://discord.com/channels/guild1/channel1/message1", found.String())
	})

	t.Run("same video in another channel is distinct", func(t *testing.T) {
		detector := NewMemory()
		defer detector.Close()

		require.NoError(t, detector.Create(ctx, &Post{VideoID: "video1", ChannelID: "channel1"}, time.Hour))

		_, err := detector.Find(ctx, "channel2", "video1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("entries expire", func(t *testing.T) {
		detector := NewMemory()
		defer detector.Close()

		require.NoError(t, detector.Create(ctx, &Post{VideoID: "video1", ChannelID: "channel1"}, 10*time.Millisecond))

		time.Sleep(25 * time.Millisecond)

		_, err := detector.Find(ctx, "channel1", "video1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
