package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VTGare/embeds"
	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/bot"
	"github.com/jaymaart/mummblebotv2/internal/config"
	"github.com/jaymaart/mummblebotv2/messages"
	"github.com/jaymaart/mummblebotv2/store"
	"github.com/jaymaart/mummblebotv2/tiktok"
)

func init() {
	minInterval := float64(config.MinCheckInterval / time.Second)

	register(&Command{
		GuildOnly: true,
		AdminOnly: true,
		CreateData: &discordgo.ApplicationCommand{
			Name:        "tiktok_config",
			Description: "Watch a TikTok account and post new uploads to a channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tiktok_username",
					Description: "TikTok username to watch, without the @",
					Required:    true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel to post new uploads to",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
					Required:     true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "check_interval",
					Description: "Seconds between checks (default 300, minimum 60)",
					MinValue:    &minInterval,
					Required:    false,
				},
			},
		},
		Exec: tiktokConfig,
	})

	register(&Command{
		GuildOnly: true,
		AdminOnly: true,
		CreateData: &discordgo.ApplicationCommand{
			Name:        "tiktok_remove",
			Description: "Stop watching a TikTok account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tiktok_username",
					Description: "TikTok username to stop watching",
					Required:    true,
				},
			},
		},
		Exec: tiktokRemove,
	})

	register(&Command{
		GuildOnly: true,
		CreateData: &discordgo.ApplicationCommand{
			Name:        "tiktok_list",
			Description: "List the TikTok accounts watched on this server",
		},
		Exec: tiktokList,
	})
}

func tiktokConfig(ctx context.Context, b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := options(i)

	username := NormalizeUsername(opts["tiktok_username"].StringValue())

	// Discord enforces the ChannelTypes restriction; the state lookup only
	// re-checks when it can resolve the channel.
	channel := opts["channel"].ChannelValue(s)
	if channel.Type != 0 && channel.Type != discordgo.ChannelTypeGuildText && channel.Type != discordgo.ChannelTypeGuildNews {
		return messages.ErrNotTextChannel(channel.ID)
	}

	interval := config.DefaultCheckInterval
	if opt, ok := opts["check_interval"]; ok {
		interval = ClampInterval(time.Duration(opt.IntValue()) * time.Second)
	}

	author, err := b.TikTok.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, tiktok.ErrNotFound) {
			return messages.ErrUserNotFound(username)
		}

		return fmt.Errorf("validate tiktok user: %w", err)
	}

	feed := &store.Feed{
		GuildID:   i.GuildID,
		Username:  author.Username,
		ChannelID: channel.ID,
		SecUID:    author.SecUID,
		Nickname:  author.Nickname,
		Avatar:    author.AvatarURL,
		Interval:  interval,
	}

	// Reconfiguring an existing feed keeps its poll cursor so old videos
	// don't get reposted.
	if existing, err := b.Store.Feed(ctx, i.GuildID, author.Username); err == nil {
		feed.LastVideoID = existing.LastVideoID
		feed.LastCheckedAt = existing.LastCheckedAt
		feed.CreatedAt = existing.CreatedAt
	}

	if _, err := b.Store.UpsertFeed(ctx, feed); err != nil {
		return fmt.Errorf("upsert feed: %w", err)
	}

	b.Log.Infow("feed configured",
		"guild_id", i.GuildID,
		"username", author.Username,
		"channel_id", channel.ID,
		"interval", interval,
	)

	eb := embeds.NewBuilder()
	eb.SuccessTemplate(fmt.Sprintf("Watching [@%v](https://www.tiktok.com/@%v). New uploads will be posted to <#%v>.", author.Username, author.Username, channel.ID)).
		AddField("Check interval", interval.String(), true)

	if author.AvatarURL != "" {
		eb.Thumbnail(author.AvatarURL)
	}

	return replyEmbed(s, i, eb.Finalize(), true)
}

func tiktokRemove(ctx context.Context, b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	username := NormalizeUsername(options(i)["tiktok_username"].StringValue())

	if err := b.Store.DeleteFeed(ctx, i.GuildID, username); err != nil {
		if errors.Is(err, store.ErrFeedNotFound) {
			return messages.ErrFeedNotFound(username)
		}

		return fmt.Errorf("delete feed: %w", err)
	}

	eb := embeds.NewBuilder()
	eb.SuccessTemplate(fmt.Sprintf("Stopped watching `@%v`.", username))

	return replyEmbed(s, i, eb.Finalize(), true)
}

func tiktokList(ctx context.Context, b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	feeds, err := b.Store.GuildFeeds(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("guild feeds: %w", err)
	}

	if len(feeds) == 0 {
		return messages.ErrNoFeeds()
	}

	return replyEmbed(s, i, feedListEmbed(feeds), true)
}

// maxListedFeeds is Discord's embed field limit.
const maxListedFeeds = 25

func feedListEmbed(feeds []*store.Feed) *discordgo.MessageEmbed {
	eb := embeds.NewBuilder()
	eb.Title("Watched TikTok accounts")

	shown := feeds
	if len(shown) > maxListedFeeds {
		shown = shown[:maxListedFeeds]
	}

	for _, feed := range shown {
		eb.AddField(
			"@"+feed.Username,
			fmt.Sprintf("Posts to <#%v> every %v", feed.ChannelID, feed.Interval),
		)
	}

	if extra := len(feeds) - len(shown); extra > 0 {
		eb.Footer(fmt.Sprintf("and %v more", extra), "")
	}

	return eb.Finalize()
}

// NormalizeUsername strips the leading @ and whitespace from user input.
func NormalizeUsername(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(strings.ToLower(username)), "@")
}

// ClampInterval enforces the check interval floor.
func ClampInterval(interval time.Duration) time.Duration {
	if interval < config.MinCheckInterval {
		return config.MinCheckInterval
	}

	return interval
}
