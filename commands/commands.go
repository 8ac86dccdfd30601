package commands

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/bot"
)

type ExecFunc func(ctx context.Context, b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) error

type Command struct {
	GuildOnly  bool
	AdminOnly  bool
	CreateData *discordgo.ApplicationCommand
	Exec       ExecFunc
}

var commands = map[string]*Command{}

func register(cmd *Command) {
	commands[cmd.CreateData.Name] = cmd
}

// Find looks a command up by its slash command name.
func Find(name string) (*Command, bool) {
	cmd, ok := commands[name]
	return cmd, ok
}

// CreateData returns registration payloads for every command.
func CreateData() []*discordgo.ApplicationCommand {
	data := make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, cmd := range commands {
		data = append(data, cmd.CreateData)
	}

	return data
}

// options flattens interaction options into a name-keyed map.
func options(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}

	return m
}

func replyEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func replyContent(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
