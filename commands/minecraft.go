package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/bot"
	"github.com/jaymaart/mummblebotv2/messages"
)

// Component and modal identifiers for the whitelist flow. The interaction
// router dispatches on these.
const (
	WhitelistButtonID = "minecraft_whitelist"
	WhitelistModalID  = "minecraft_username_modal"
	WhitelistInputID  = "minecraft_username"
)

func init() {
	register(&Command{
		GuildOnly: true,
		AdminOnly: true,
		CreateData: &discordgo.ApplicationCommand{
			Name:        "minecraft",
			Description: "Get Minecraft server information and request whitelist access",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel to send the info to. Defaults to the current channel.",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
					Required:     false,
				},
			},
		},
		Exec: minecraftInfo,
	})

	register(&Command{
		GuildOnly: true,
		CreateData: &discordgo.ApplicationCommand{
			Name:        "schedule",
			Description: "Show the weekly stream schedule",
		},
		Exec: streamSchedule,
	})
}

func minecraftInfo(_ context.Context, b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	targetChannelID := i.ChannelID

	if opt, ok := options(i)["channel"]; ok {
		// Sending to another channel requires Manage Messages, matching
		// the original bot's behavior.
		if i.Member.Permissions&discordgo.PermissionManageMessages == 0 {
			return messages.ErrManageMessages(opt.ChannelValue(s).ID)
		}

		targetChannelID = opt.ChannelValue(s).ID
	}

	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{messages.ServerInfoEmbed(b.Config.Minecraft)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Whitelist Me",
						Style:    discordgo.PrimaryButton,
						CustomID: WhitelistButtonID,
						Emoji:    &discordgo.ComponentEmoji{Name: "📋"},
					},
				},
			},
		},
	}

	if _, err := s.ChannelMessageSendComplex(targetChannelID, send); err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == 403 {
			return replyContent(s, i, fmt.Sprintf("❌ I don't have permission to send messages in <#%v>", targetChannelID))
		}

		return fmt.Errorf("send minecraft info: %w", err)
	}

	return replyContent(s, i, fmt.Sprintf("✅ Minecraft server information sent to <#%v>", targetChannelID))
}

func streamSchedule(_ context.Context, b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if b.Schedule == nil {
		return messages.ErrNoSchedule()
	}

	occurrences := b.Schedule.NextOccurrences(time.Now())

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{messages.ScheduleEmbed(occurrences)},
		},
	})
}
