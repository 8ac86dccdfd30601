package handlers

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/bot"
	"github.com/jaymaart/mummblebotv2/commands"
	"github.com/jaymaart/mummblebotv2/messages"
)

const commandTimeout = 30 * time.Second

// All returns every gateway handler. Register them on the session before
// opening it.
func All(b *bot.Bot) []any {
	return []any{
		OnReady(b), OnGuildDelete(b), OnInteractionCreate(b),
	}
}

func OnReady(b *bot.Bot) func(*discordgo.Session, *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		b.Log.Infow("logged in",
			"user", r.User.String(),
			"guilds", len(r.Guilds),
		)

		if err := s.UpdateWatchStatus(0, "TikTok uploads"); err != nil {
			b.Log.With("error", err).Warn("failed to update status")
		}
	}
}

// OnGuildDelete purges the guild's feeds when the bot is removed from it.
func OnGuildDelete(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		// Discord also fires this event on outages. Only clean up on a
		// real removal.
		if g.Unavailable {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := b.Store.DeleteGuildFeeds(ctx, g.ID); err != nil {
			b.Log.With("error", err).Errorw("failed to delete guild feeds", "guild_id", g.ID)
			return
		}

		b.Log.Infow("left guild, feeds deleted", "guild_id", g.ID)
	}
}

// OnInteractionCreate routes slash commands, message components and modal
// submissions.
func OnInteractionCreate(b *bot.Bot) func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			handleCommand(b, s, i)
		case discordgo.InteractionMessageComponent:
			if i.MessageComponentData().CustomID == commands.WhitelistButtonID {
				handleWhitelistButton(b, s, i)
			}
		case discordgo.InteractionModalSubmit:
			if i.ModalSubmitData().CustomID == commands.WhitelistModalID {
				handleWhitelistModal(b, s, i)
			}
		}
	}
}

func handleCommand(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name

	cmd, ok := commands.Find(name)
	if !ok {
		return
	}

	log := b.Log.With(
		"command", name,
		"guild_id", i.GuildID,
		"user_id", interactionUserID(i),
	)

	err := func() error {
		if cmd.GuildOnly && i.GuildID == "" {
			return messages.ErrGuildOnly()
		}

		if cmd.AdminOnly && (i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0) {
			return messages.ErrAdminOnly()
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		return cmd.Exec(ctx, b, s, i)
	}()

	b.Stats.IncrementCommand(name)

	if err != nil {
		log.With("error", err).Warn("command failed")
		respondError(s, i, err)
	}
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{messages.ErrorEmbed(err)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}

	if i.User != nil {
		return i.User.ID
	}

	return ""
}
