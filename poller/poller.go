package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/dedup"
	"github.com/jaymaart/mummblebotv2/messages"
	"github.com/jaymaart/mummblebotv2/stats"
	"github.com/jaymaart/mummblebotv2/store"
	"github.com/jaymaart/mummblebotv2/tiktok"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// tickInterval is the scheduler granularity. Feed intervals are
	// multiples of this in practice, never below it.
	tickInterval = 15 * time.Second

	// maxConcurrentChecks caps parallel TikTok requests per tick.
	maxConcurrentChecks = 4

	// fetchCount is how many recent uploads are requested per check.
	fetchCount = 10

	// dedupTTL is how long posted video markers are retained.
	dedupTTL = 90 * 24 * time.Hour

	checkTimeout = time.Minute
)

// Feeds is the slice of the store the poller needs.
type Feeds interface {
	Feeds(ctx context.Context) ([]*store.Feed, error)
	SetFeedCursor(ctx context.Context, guildID, username, videoID string, checkedAt time.Time) error
}

// VideoSource fetches an account's recent uploads. Satisfied by
// *tiktok.Client.
type VideoSource interface {
	RecentVideos(ctx context.Context, secUID string, count int) ([]tiktok.Video, error)
}

// Sender posts announcement messages. Satisfied by *discordgo.Session.
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Poller periodically checks watched TikTok accounts and announces new
// uploads.
type Poller struct {
	store    Feeds
	source   VideoSource
	detector dedup.Detector
	sender   Sender
	stats    *stats.Stats
	log      *zap.SugaredLogger

	tick time.Duration
}

func New(feeds Feeds, source VideoSource, detector dedup.Detector, sender Sender, st *stats.Stats, log *zap.SugaredLogger) *Poller {
	return &Poller{
		store:    feeds,
		source:   source,
		detector: detector,
		sender:   sender,
		stats:    st,
		log:      log,
		tick:     tickInterval,
	}
}

// Start blocks until ctx is cancelled. Every tick it checks all feeds whose
// interval has elapsed; individual feed failures are logged and skipped.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.CheckDueFeeds(ctx); err != nil {
				p.log.With("error", err).Warn("feed sweep failed")
			}
		}
	}
}

// CheckDueFeeds runs one sweep over all feeds.
func (p *Poller) CheckDueFeeds(ctx context.Context) error {
	feeds, err := p.store.Feeds(ctx)
	if err != nil {
		return fmt.Errorf("list feeds: %w", err)
	}

	now := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentChecks)

	for _, feed := range feeds {
		feed := feed
		if !feed.Due(now) {
			continue
		}

		eg.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			if err := p.CheckFeed(checkCtx, feed); err != nil {
				p.log.With("error", err).Warnw("feed check failed",
					"guild_id", feed.GuildID,
					"username", feed.Username,
				)
			}

			return nil
		})
	}

	return eg.Wait()
}

// CheckFeed fetches one feed's recent uploads and announces the new ones,
// oldest first. The first check of a fresh feed only records the newest
// upload so configuring a feed never floods the channel with history.
func (p *Poller) CheckFeed(ctx context.Context, feed *store.Feed) error {
	videos, err := p.source.RecentVideos(ctx, feed.SecUID, fetchCount)
	if err != nil {
		return fmt.Errorf("recent videos: %w", err)
	}

	now := time.Now()

	if len(videos) == 0 {
		return p.store.SetFeedCursor(ctx, feed.GuildID, feed.Username, "", now)
	}

	newest := videos[0].ID

	if feed.LastVideoID == "" {
		return p.store.SetFeedCursor(ctx, feed.GuildID, feed.Username, newest, now)
	}

	fresh := NewVideos(videos, feed.LastVideoID)

	for _, video := range fresh {
		if _, err := p.detector.Find(ctx, feed.ChannelID, video.ID); err == nil {
			continue
		} else if !errors.Is(err, dedup.ErrNotFound) {
			return fmt.Errorf("dedup find: %w", err)
		}

		if err := p.announce(ctx, feed, video); err != nil {
			return fmt.Errorf("announce %v: %w", video.ID, err)
		}
	}

	return p.store.SetFeedCursor(ctx, feed.GuildID, feed.Username, newest, now)
}

func (p *Poller) announce(ctx context.Context, feed *store.Feed, video tiktok.Video) error {
	msg, err := p.sender.ChannelMessageSendComplex(feed.ChannelID, messages.VideoEmbed(feed, video))
	if err != nil {
		return err
	}

	post := &dedup.Post{
		VideoID:   video.ID,
		Username:  feed.Username,
		GuildID:   feed.GuildID,
		ChannelID: feed.ChannelID,
		MessageID: msg.ID,
	}

	if err := p.detector.Create(ctx, post, dedupTTL); err != nil {
		return fmt.Errorf("dedup create: %w", err)
	}

	if p.stats != nil {
		p.stats.VideosPosted.Inc()
	}

	p.log.Infow("posted video",
		"guild_id", feed.GuildID,
		"channel_id", feed.ChannelID,
		"username", feed.Username,
		"video_id", video.ID,
	)

	return nil
}

// NewVideos returns the uploads above lastID in the newest-first list,
// reversed to oldest first. When the cursor video has dropped out of the
// window the whole window counts as new; the dedup detector still suppresses
// anything that was already announced.
func NewVideos(videos []tiktok.Video, lastID string) []tiktok.Video {
	cut := len(videos)
	for idx, video := range videos {
		if video.ID == lastID {
			cut = idx
			break
		}
	}

	fresh := make([]tiktok.Video, 0, cut)
	for idx := cut - 1; idx >= 0; idx-- {
		fresh = append(fresh, videos[idx])
	}

	return fresh
}
