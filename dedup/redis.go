package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type redisDetector struct {
	client *redis.Client
}

func NewRedis(addr string) (Detector, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		MaxRetries: 5,
	})

	status := client.Ping(context.Background())
	if status.Err() != nil {
		return nil, status.Err()
	}

	return &redisDetector{client}, nil
}

func key(channelID, videoID string) string {
	return fmt.Sprintf("channel:%v:video:%v", channelID, videoID)
}

func (d redisDetector) exists(ctx context.Context, key string) error {
	exists, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}

	if exists == 0 {
		return ErrNotFound
	}

	return nil
}

func (d redisDetector) Find(ctx context.Context, channelID, videoID string) (*Post, error) {
	k := key(channelID, videoID)
	if err := d.exists(ctx, k); err != nil {
		return nil, err
	}

	var (
		postResult *redis.StringStringMapCmd
		ttlResult  *redis.DurationCmd
	)

	_, err := d.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		postResult = pipe.HGetAll(ctx, k)
		if err := postResult.Err(); err != nil {
			return err
		}

		ttlResult = pipe.TTL(ctx, k)
		return ttlResult.Err()
	})
	if err != nil {
		return nil, err
	}

	var post Post
	if err := postResult.Scan(&post); err != nil {
		return nil, err
	}

	post.ExpiresAt = time.Now().Add(ttlResult.Val())
	return &post, nil
}

func (d redisDetector) Create(ctx context.Context, post *Post, ttl time.Duration) error {
	k := key(post.ChannelID, post.VideoID)
	_, err := d.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		if _, err := pipe.HSet(ctx, k, map[string]any{
			"video_id":   post.VideoID,
			"username":   post.Username,
			"guild_id":   post.GuildID,
			"channel_id": post.ChannelID,
			"message_id": post.MessageID,
		}).Result(); err != nil {
			return err
		}

		if _, err := pipe.ExpireAt(ctx, k, time.Now().Add(ttl)).Result(); err != nil {
			return err
		}

		return nil
	})

	return err
}

func (d redisDetector) Close() error {
	return d.client.Close()
}
