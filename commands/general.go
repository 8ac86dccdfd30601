package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/bot"
	"github.com/jaymaart/mummblebotv2/messages"
)

func init() {
	register(&Command{
		CreateData: &discordgo.ApplicationCommand{
			Name:        "ping",
			Description: "Check if the bot is online",
		},
		Exec: ping,
	})

	register(&Command{
		CreateData: &discordgo.ApplicationCommand{
			Name:        "about",
			Description: "Bot stats and source code",
		},
		Exec: about,
	})
}

func ping(_ context.Context, _ *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return replyContent(s, i, fmt.Sprintf("🏓 Pong! Heartbeat latency: %v", s.HeartbeatLatency().Round(time.Millisecond)))
}

func about(ctx context.Context, b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	feeds, err := b.Store.Feeds(ctx)
	if err != nil {
		return fmt.Errorf("count feeds: %w", err)
	}

	embed := messages.AboutEmbed(
		b.Config.Repository,
		b.Stats.Uptime(),
		len(feeds),
		b.Stats.VideosPosted.Load(),
		b.Stats.CommandsExecuted(),
	)

	return replyEmbed(s, i, embed, false)
}
