package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/jaymaart/mummblebotv2/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type feedStore struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func (f *feedStore) Feed(ctx context.Context, guildID, username string) (*store.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	res := f.col.FindOne(ctx, bson.M{"guild_id": guildID, "username": username})

	var feed store.Feed
	if err := res.Decode(&feed); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrFeedNotFound
		}

		return nil, err
	}

	return &feed, nil
}

func (f *feedStore) Feeds(ctx context.Context) ([]*store.Feed, error) {
	return f.find(ctx, bson.M{})
}

func (f *feedStore) GuildFeeds(ctx context.Context, guildID string) ([]*store.Feed, error) {
	return f.find(ctx, bson.M{"guild_id": guildID})
}

func (f *feedStore) find(ctx context.Context, filter bson.M) ([]*store.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cur, err := f.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	feeds := make([]*store.Feed, 0)
	if err := cur.All(ctx, &feeds); err != nil {
		return nil, err
	}

	return feeds, nil
}

func (f *feedStore) UpsertFeed(ctx context.Context, feed *store.Feed) (*store.Feed, error) {
	now := time.Now()
	feed.UpdatedAt = now
	if feed.CreatedAt.IsZero() {
		feed.CreatedAt = now
	}

	_, err := f.col.ReplaceOne(
		ctx,
		bson.M{"guild_id": feed.GuildID, "username": feed.Username},
		feed,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}

	return feed, nil
}

func (f *feedStore) DeleteFeed(ctx context.Context, guildID, username string) error {
	res, err := f.col.DeleteOne(ctx, bson.M{"guild_id": guildID, "username": username})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return store.ErrFeedNotFound
	}

	return nil
}

func (f *feedStore) DeleteGuildFeeds(ctx context.Context, guildID string) error {
	_, err := f.col.DeleteMany(ctx, bson.M{"guild_id": guildID})
	return err
}

// SetFeedCursor advances the feed's poll cursor. An empty videoID keeps the
// stored LastVideoID and only bumps LastCheckedAt.
func (f *feedStore) SetFeedCursor(ctx context.Context, guildID, username, videoID string, checkedAt time.Time) error {
	set := bson.M{"last_checked_at": checkedAt, "updated_at": time.Now()}
	if videoID != "" {
		set["last_video_id"] = videoID
	}

	res, err := f.col.UpdateOne(
		ctx,
		bson.M{"guild_id": guildID, "username": username},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return store.ErrFeedNotFound
	}

	return nil
}
