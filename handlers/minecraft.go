package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/bot"
	"github.com/jaymaart/mummblebotv2/commands"
	"github.com/jaymaart/mummblebotv2/messages"
	"github.com/jaymaart/mummblebotv2/rcon"
)

const whitelistTimeout = 15 * time.Second

// handleWhitelistButton opens the username modal.
func handleWhitelistButton(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: commands.WhitelistModalID,
			Title:    "Enter Minecraft Username",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    commands.WhitelistInputID,
							Label:       "Minecraft Username",
							Placeholder: "Enter your exact Minecraft username",
							Style:       discordgo.TextInputShort,
							MinLength:   3,
							MaxLength:   16,
							Required:    true,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.Log.With("error", err).Warn("failed to open whitelist modal")
	}
}

// handleWhitelistModal runs the whitelist command and reports the outcome.
func handleWhitelistModal(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	log := b.Log.With(
		"guild_id", i.GuildID,
		"user_id", interactionUserID(i),
	)

	// RCON can be slow; defer and edit the response later.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.With("error", err).Warn("failed to defer whitelist response")
		return
	}

	username := modalInput(i, commands.WhitelistInputID)

	embed := func() *discordgo.MessageEmbed {
		if b.WhitelistOnCooldown(interactionUserID(i)) {
			return messages.WhitelistFailureEmbed(messages.ErrWhitelistCooldown().Error())
		}

		if err := rcon.ValidateUsername(username); err != nil {
			return messages.WhitelistFailureEmbed(messages.ErrInvalidMinecraftName().Error())
		}

		ctx, cancel := context.WithTimeout(context.Background(), whitelistTimeout)
		defer cancel()

		response, err := b.Whitelister.WhitelistAdd(ctx, username)
		if err != nil {
			b.Stats.WhitelistFailed.Inc()
			log.With("error", err).Errorw("whitelist failed", "minecraft_username", username)

			var rejected *rcon.RejectedError
			switch {
			case errors.Is(err, rcon.ErrNotConfigured):
				return messages.WhitelistFailureEmbed("RCON password not configured")
			case errors.As(err, &rejected):
				return messages.WhitelistFailureEmbed("Failed to whitelist " + username + ". Response: " + rejected.Response)
			default:
				return messages.WhitelistFailureEmbed("Failed to connect to server: " + err.Error())
			}
		}

		b.Stats.WhitelistSucceeded.Inc()
		b.StartWhitelistCooldown(interactionUserID(i))
		log.Infow("whitelisted player", "minecraft_username", username, "response", response)

		return messages.WhitelistSuccessEmbed(username)
	}()

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.With("error", err).Warn("failed to edit whitelist response")
	}
}

// modalInput digs a text input value out of a modal submission.
func modalInput(i *discordgo.InteractionCreate, customID string) string {
	for _, component := range i.ModalSubmitData().Components {
		actionsRow, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}

		for _, inner := range actionsRow.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return strings.TrimSpace(input.Value)
			}
		}
	}

	return ""
}
