package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/dedup"
	"github.com/jaymaart/mummblebotv2/store"
	"github.com/jaymaart/mummblebotv2/tiktok"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFeeds struct {
	mut   sync.Mutex
	feeds []*store.Feed

	cursorVideoID string
	cursorSet     int
}

func (f *fakeFeeds) Feeds(_ context.Context) ([]*store.Feed, error) {
	return f.feeds, nil
}

func (f *fakeFeeds) SetFeedCursor(_ context.Context, _, _, videoID string, _ time.Time) error {
	f.mut.Lock()
	defer f.mut.Unlock()

	f.cursorSet++
	if videoID != "" {
		f.cursorVideoID = videoID
	}

	return nil
}

type fakeSource struct {
	videos []tiktok.Video
	err    error
}

func (f *fakeSource) RecentVideos(_ context.Context, _ string, _ int) ([]tiktok.Video, error) {
	return f.videos, f.err
}

type fakeSender struct {
	mut  sync.Mutex
	sent []string // channelID:first embed URL
}

func (f *fakeSender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mut.Lock()
	defer f.mut.Unlock()

	f.sent = append(f.sent, channelID+":"+data.Embeds[0].URL)
	return &discordgo.Message{ID: "msg1"}, nil
}

func video(id string) tiktok.Video {
	return tiktok.Video{ID: id, Username: "testuser", CreatedAt: time.Now()}
}

func feed(lastVideoID string) *store.Feed {
	return &store.Feed{
		GuildID:     "guild1",
		Username:    "testuser",
		SecUID:      "sec123",
		ChannelID:   "channel1",
		Interval:    time.Minute,
		LastVideoID: lastVideoID,
	}
}

func newTestPoller(feeds *fakeFeeds, source *fakeSource, sender *fakeSender) *Poller {
	return New(feeds, source, dedup.NewMemory(), sender, nil, zap.NewNop().Sugar())
}

func TestCheckFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("first poll records cursor without posting", func(t *testing.T) {
		feeds := &fakeFeeds{}
		sender := &fakeSender{}
		p := newTestPoller(feeds, &fakeSource{videos: []tiktok.Video{video("300"), video("200"), video("100")}}, sender)

		require.NoError(t, p.CheckFeed(ctx, feed("")))

		assert.Empty(t, sender.sent)
		assert.Equal(t, "300", feeds.cursorVideoID)
	})

	t.Run("new uploads posted oldest first", func(t *testing.T) {
		feeds := &fakeFeeds{}
		sender := &fakeSender{}
		p := newTestPoller(feeds, &fakeSource{videos: []tiktok.Video{video("300"), video("200"), video("100")}}, sender)

		require.NoError(t, p.CheckFeed(ctx, feed("100")))

		require.Len(t, sender.sent, 2)
		assert.Equal(t, "channel1:https://www.tiktok.com/@testuser/video/200", sender.sent[0])
		assert.Equal(t, "channel1:https://www.tiktok.com/@testuser/video/300", sender.sent[1])
		assert.Equal(t, "300", feeds.cursorVideoID)
	})

	t.Run("nothing new keeps cursor", func(t *testing.T) {
		feeds := &fakeFeeds{}
		sender := &fakeSender{}
		p := newTestPoller(feeds, &fakeSource{videos: []tiktok.Video{video("300")}}, sender)

		require.NoError(t, p.CheckFeed(ctx, feed("300")))

		assert.Empty(t, sender.sent)
		assert.Equal(t, "300", feeds.cursorVideoID)
	})

	t.Run("already announced videos are suppressed", func(t *testing.T) {
		feeds := &fakeFeeds{}
		sender := &fakeSender{}
		detector := dedup.NewMemory()
		p := New(feeds, &fakeSource{videos: []tiktok.Video{video("300"), video("200")}}, detector, sender, nil, zap.NewNop().Sugar())

		require.NoError(t, detector.Create(ctx, &dedup.Post{VideoID: "300", ChannelID: "channel1"}, time.Hour))
		require.NoError(t, p.CheckFeed(ctx, feed("200")))

		assert.Empty(t, sender.sent)
	})

	t.Run("empty feed only bumps checked time", func(t *testing.T) {
		feeds := &fakeFeeds{}
		sender := &fakeSender{}
		p := newTestPoller(feeds, &fakeSource{}, sender)

		require.NoError(t, p.CheckFeed(ctx, feed("")))

		assert.Empty(t, sender.sent)
		assert.Empty(t, feeds.cursorVideoID)
		assert.Equal(t, 1, feeds.cursorSet)
	})
}

func TestCheckDueFeeds(t *testing.T) {
	t.Run("skips feeds that are not due", func(t *testing.T) {
		notDue := feed("100")
		notDue.LastCheckedAt = time.Now()

		feeds := &fakeFeeds{feeds: []*store.Feed{notDue}}
		sender := &fakeSender{}
		p := newTestPoller(feeds, &fakeSource{videos: []tiktok.Video{video("300")}}, sender)

		require.NoError(t, p.CheckDueFeeds(context.Background()))
		assert.Empty(t, sender.sent)
		assert.Zero(t, feeds.cursorSet)
	})

	t.Run("checks due feeds", func(t *testing.T) {
		due := feed("100")
		due.LastCheckedAt = time.Now().Add(-time.Hour)

		feeds := &fakeFeeds{feeds: []*store.Feed{due}}
		sender := &fakeSender{}
		p := newTestPoller(feeds, &fakeSource{videos: []tiktok.Video{video("300")}}, sender)

		require.NoError(t, p.CheckDueFeeds(context.Background()))
		assert.Len(t, sender.sent, 1)
	})
}

func TestNewVideos(t *testing.T) {
	tests := []struct {
		name   string
		videos []tiktok.Video
		lastID string
		want   []string
	}{
		{
			name:   "cursor in the middle",
			videos: []tiktok.Video{video("300"), video("200"), video("100")},
			lastID: "200",
			want:   []string{"300"},
		},
		{
			name:   "cursor at head",
			videos: []tiktok.Video{video("300"), video("200")},
			lastID: "300",
			want:   []string{},
		},
		{
			name:   "cursor out of window",
			videos: []tiktok.Video{video("300"), video("200")},
			lastID: "50",
			want:   []string{"200", "300"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewVideos(tt.videos, tt.lastID)

			ids := make([]string, 0, len(got))
			for _, v := range got {
				ids = append(ids, v.ID)
			}

			assert.Equal(t, tt.want, ids)
		})
	}
}
