package messages

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VTGare/embeds"
	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/internal/config"
	"github.com/jaymaart/mummblebotv2/schedule"
	"github.com/jaymaart/mummblebotv2/store"
	"github.com/jaymaart/mummblebotv2/tiktok"
)

// UserErr is an error shown to the user verbatim in an ephemeral reply.
type UserErr struct {
	msg string
	err error
}

func (ue *UserErr) Error() string {
	return ue.msg
}

func (ue *UserErr) Unwrap() error {
	return ue.err
}

func newUserError(msg string, errs ...error) *UserErr {
	var err error
	if len(errs) > 0 {
		err = errs[0]
	}

	return &UserErr{
		msg: msg,
		err: err,
	}
}

func ErrUserNotFound(username string) error {
	return newUserError(fmt.Sprintf("TikTok account `@%v` wasn't found. Double-check the username.", username))
}

func ErrNotTextChannel(channelID string) error {
	return newUserError(fmt.Sprintf("<#%v> isn't a text channel I can post in.", channelID))
}

func ErrFeedNotFound(username string) error {
	return newUserError(fmt.Sprintf("This server isn't watching `@%v`.", username))
}

func ErrNoFeeds() error {
	return newUserError("This server isn't watching any TikTok accounts yet. Add one with `/tiktok_config`.")
}

func ErrGuildOnly() error {
	return newUserError("This command only works in a server.")
}

func ErrAdminOnly() error {
	return newUserError("You need the `Administrator` permission to use this command.")
}

func ErrManageMessages(channelID string) error {
	return newUserError(fmt.Sprintf("You need `Manage Messages` permission to send to <#%v>.", channelID))
}

func ErrWhitelistCooldown() error {
	return newUserError("You've requested whitelisting recently. Try again in a few minutes.")
}

func ErrNoSchedule() error {
	return newUserError("No stream schedule is configured.")
}

func ErrInvalidMinecraftName() error {
	return newUserError("That doesn't look like a Minecraft username. Use 3-16 letters, digits or underscores.")
}

// VideoEmbed builds the announcement for a new TikTok upload.
func VideoEmbed(feed *store.Feed, video tiktok.Video) *discordgo.MessageSend {
	eb := embeds.NewBuilder()

	author := feed.Nickname
	if author == "" {
		author = "@" + feed.Username
	}

	eb.Title(fmt.Sprintf("New TikTok by %v", author)).
		URL(video.URL()).
		Timestamp(video.CreatedAt)

	if video.Description != "" {
		eb.Description(video.Description)
	}

	if video.Cover != "" {
		eb.Image(video.Cover)
	}

	if feed.Avatar != "" {
		eb.Thumbnail(feed.Avatar)
	}

	eb.Footer(fmt.Sprintf("@%v on TikTok", feed.Username), "")

	return &discordgo.MessageSend{
		Content: video.URL(),
		Embeds:  []*discordgo.MessageEmbed{eb.Finalize()},
	}
}

// ServerInfoEmbed is the Minecraft server welcome card posted by /minecraft.
func ServerInfoEmbed(mc *config.Minecraft) *discordgo.MessageEmbed {
	eb := embeds.NewBuilder()

	var sb strings.Builder
	sb.WriteString("Welcome to our Minecraft SMP server! Here's everything you need to get started.\n\n")
	if mc.ServerAddress != "" {
		sb.WriteString(fmt.Sprintf("🌐 **Server Address:** `%v`\n", mc.ServerAddress))
	}
	if mc.Version != "" {
		sb.WriteString(fmt.Sprintf("🖥️ **Version:** `%v`\n", mc.Version))
	}
	sb.WriteString("\n📋 Getting Access\n")
	sb.WriteString("To gain access to the server, click the Whitelist Me button below!\n\n")
	sb.WriteString("This will open a form where you can enter your Minecraft username to be added to the whitelist.\n\n")
	sb.WriteString("Note: Make sure to enter your exact Minecraft username (case-sensitive).")

	eb.Title("Minecraft Server Information").
		Description(sb.String()).
		Timestamp(time.Now())

	return eb.Finalize()
}

// WhitelistSuccessEmbed confirms a whitelist addition.
func WhitelistSuccessEmbed(username string) *discordgo.MessageEmbed {
	eb := embeds.NewBuilder()

	eb.SuccessTemplate(fmt.Sprintf("**%v** has been added to the Minecraft server whitelist!", username)).
		Timestamp(time.Now()).
		AddField("📝 Next Steps", strings.Join([]string{
			fmt.Sprintf("1. Make sure you're using the username: **%v**", username),
			"2. Launch Minecraft",
			"3. Connect to the server and enjoy!",
		}, "\n"))

	return eb.Finalize()
}

// WhitelistFailureEmbed explains a failed whitelist attempt.
func WhitelistFailureEmbed(detail string) *discordgo.MessageEmbed {
	eb := embeds.NewBuilder()

	eb.FailureTemplate("There was an issue adding you to the whitelist.").
		Timestamp(time.Now()).
		AddField("Error Details", detail).
		AddField("📞 Need Help?", "Contact a server administrator if this problem persists.")

	return eb.Finalize()
}

// ScheduleEmbed lists the next occurrence of every stream slot using
// Discord's dynamic timestamps, so every reader sees local time.
func ScheduleEmbed(occurrences []schedule.Occurrence) *discordgo.MessageEmbed {
	eb := embeds.NewBuilder()

	eb.Title("📺 Weekly Stream Schedule").
		Description("Here's when you can catch our streams this week!").
		Timestamp(time.Now()).
		Footer("Schedule updates every week • All times are in your local time", "")

	for _, occ := range occurrences {
		eb.AddField(
			fmt.Sprintf("🎮 %v Stream", occ.Weekday),
			fmt.Sprintf("**Time:** <t:%v:F> - <t:%v:F>", occ.Start.Unix(), occ.End.Unix()),
		)
	}

	return eb.Finalize()
}

// AboutEmbed reports uptime, counters and the source repository.
func AboutEmbed(repository string, uptime time.Duration, feeds int, videosPosted, commandsExecuted int64) *discordgo.MessageEmbed {
	eb := embeds.NewBuilder()

	eb.Title("About").
		Timestamp(time.Now()).
		AddField("Uptime", FormatDuration(uptime), true).
		AddField("Feeds", fmt.Sprintf("%v", feeds), true).
		AddField("Videos posted", fmt.Sprintf("%v", videosPosted), true).
		AddField("Commands executed", fmt.Sprintf("%v", commandsExecuted), true)

	if repository != "" {
		eb.AddField("Source", fmt.Sprintf("https://github.com/%v", repository))
	}

	return eb.Finalize()
}

// ErrorEmbed wraps an unexpected error for an ephemeral reply.
func ErrorEmbed(err error) *discordgo.MessageEmbed {
	eb := embeds.NewBuilder()

	var userErr *UserErr
	if errors.As(err, &userErr) {
		eb.FailureTemplate(userErr.Error())
	} else {
		eb.FailureTemplate("Something went wrong. Please try again later.")
	}

	return eb.Finalize()
}

// FormatDuration renders an uptime as "Xd Yh Zm".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%vd %vh %vm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%vh %vm", hours, minutes)
	default:
		return fmt.Sprintf("%vm", minutes)
	}
}
