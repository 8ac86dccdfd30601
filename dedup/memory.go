package dedup

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
)

type inMemory struct {
	cache *cache.Cache
}

func NewMemory() Detector {
	return &inMemory{cache: cache.New(0, 5*time.Minute)}
}

func (d inMemory) Create(_ context.Context, post *Post, ttl time.Duration) error {
	post.ExpiresAt = time.Now().Add(ttl)
	d.cache.Set(d.key(post.ChannelID, post.VideoID), post, ttl)

	return nil
}

func (d inMemory) Find(_ context.Context, channelID, videoID string) (*Post, error) {
	post, ok := d.cache.Get(d.key(channelID, videoID))
	if !ok {
		return nil, ErrNotFound
	}

	return post.(*Post), nil
}

func (d inMemory) key(channelID, videoID string) string {
	return fmt.Sprintf("%v:%v", channelID, videoID)
}

func (d inMemory) Close() error {
	d.cache.Flush()
	return nil
}
