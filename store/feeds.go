package store

import (
	"context"
	"time"
)

type FeedStore interface {
	Feed(ctx context.Context, guildID, username string) (*Feed, error)
	Feeds(ctx context.Context) ([]*Feed, error)
	GuildFeeds(ctx context.Context, guildID string) ([]*Feed, error)
	UpsertFeed(ctx context.Context, feed *Feed) (*Feed, error)
	DeleteFeed(ctx context.Context, guildID, username string) error
	DeleteGuildFeeds(ctx context.Context, guildID string) error
	SetFeedCursor(ctx context.Context, guildID, username, videoID string, checkedAt time.Time) error
}

// Feed is a single TikTok subscription: one account watched for one guild,
// posting into one channel. At most one feed exists per (guild, username) pair.
type Feed struct {
	GuildID   string `json:"guild_id" bson:"guild_id"`
	Username  string `json:"username" bson:"username"`
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// SecUID is TikTok's stable account identifier, resolved when the feed
	// is configured and reused by the poller for item list requests.
	SecUID   string `json:"sec_uid" bson:"sec_uid"`
	Nickname string `json:"nickname" bson:"nickname"`
	Avatar   string `json:"avatar" bson:"avatar"`

	Interval time.Duration `json:"interval" bson:"interval"`

	// LastVideoID is the newest video already posted (or skipped on the
	// first poll). Empty until the feed has been polled once.
	LastVideoID   string    `json:"last_video_id" bson:"last_video_id"`
	LastCheckedAt time.Time `json:"last_checked_at" bson:"last_checked_at"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Due reports whether the feed should be polled at the given time.
func (f *Feed) Due(now time.Time) bool {
	return !now.Before(f.LastCheckedAt.Add(f.Interval))
}
