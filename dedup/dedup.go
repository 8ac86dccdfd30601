package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("post not found")
)

// Detector remembers which videos have already been posted to which channel,
// so restarts and overlapping feeds never produce duplicate announcements.
type Detector interface {
	Find(ctx context.Context, channelID, videoID string) (*Post, error)
	Create(ctx context.Context, post *Post, ttl time.Duration) error
	Close() error
}

// Post is a record of one announced video.
type Post struct {
	VideoID   string `redis:"video_id"`
	Username  string `redis:"username"`
	GuildID   string `redis:"guild_id"`
	ChannelID string `redis:"channel_id"`
	MessageID string `redis:"message_id"`
	ExpiresAt time.Time
}

func (p *Post) String() string {
	return fmt.Sprintf("https://discord.com/channels/%v/%v/%v", p.GuildID, p.ChannelID, p.MessageID)
}
