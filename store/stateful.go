package store

import (
	"context"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// StatefulStore caches feed lookups in front of the backing store.
// Feeds are copied on every cache read and write: the poller writes cursors
// while handlers read feeds on other goroutines, so no pointer may be shared.
type StatefulStore struct {
	Store
	cache *cache.Cache
}

func NewStatefulStore(store Store, c *cache.Cache) Store {
	return &StatefulStore{
		Store: store,
		cache: c,
	}
}

func feedKey(guildID, username string) string {
	return "feeds:" + guildID + ":" + username
}

func (s *StatefulStore) Feed(ctx context.Context, guildID, username string) (*Feed, error) {
	if f, ok := s.cache.Get(feedKey(guildID, username)); ok {
		feed := *f.(*Feed)
		return &feed, nil
	}

	feed, err := s.Store.Feed(ctx, guildID, username)
	if err != nil {
		return nil, err
	}

	cached := *feed
	s.cache.Set(feedKey(guildID, username), &cached, 0)
	return feed, nil
}

func (s *StatefulStore) UpsertFeed(ctx context.Context, feed *Feed) (*Feed, error) {
	feed, err := s.Store.UpsertFeed(ctx, feed)
	if err != nil {
		return nil, err
	}

	cached := *feed
	s.cache.Set(feedKey(feed.GuildID, feed.Username), &cached, 0)
	return feed, nil
}

func (s *StatefulStore) DeleteFeed(ctx context.Context, guildID, username string) error {
	if err := s.Store.DeleteFeed(ctx, guildID, username); err != nil {
		return err
	}

	s.cache.Delete(feedKey(guildID, username))
	return nil
}

func (s *StatefulStore) DeleteGuildFeeds(ctx context.Context, guildID string) error {
	if err := s.Store.DeleteGuildFeeds(ctx, guildID); err != nil {
		return err
	}

	for key := range s.cache.Items() {
		if strings.HasPrefix(key, "feeds:") && keyGuild(key) == guildID {
			s.cache.Delete(key)
		}
	}

	return nil
}

func (s *StatefulStore) SetFeedCursor(ctx context.Context, guildID, username, videoID string, checkedAt time.Time) error {
	if err := s.Store.SetFeedCursor(ctx, guildID, username, videoID, checkedAt); err != nil {
		return err
	}

	if f, ok := s.cache.Get(feedKey(guildID, username)); ok {
		feed := *f.(*Feed)
		if videoID != "" {
			feed.LastVideoID = videoID
		}
		feed.LastCheckedAt = checkedAt
		s.cache.Set(feedKey(guildID, username), &feed, 0)
	}

	return nil
}

func keyGuild(key string) string {
	guildID, _, _ := strings.Cut(strings.TrimPrefix(key, "feeds:"), ":")
	return guildID
}
