package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/ReneKroon/ttlcache"
	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/dedup"
	"github.com/jaymaart/mummblebotv2/internal/config"
	"github.com/jaymaart/mummblebotv2/rcon"
	"github.com/jaymaart/mummblebotv2/schedule"
	"github.com/jaymaart/mummblebotv2/stats"
	"github.com/jaymaart/mummblebotv2/store"
	"github.com/jaymaart/mummblebotv2/tiktok"
	"go.uber.org/zap"
)

// whitelistCooldown is how long a user has to wait between whitelist
// requests.
const whitelistCooldown = 5 * time.Minute

// TikTokService is the part of the TikTok client the bot needs. Satisfied by
// *tiktok.Client, replaced with fakes in tests.
type TikTokService interface {
	GetUser(ctx context.Context, username string) (tiktok.Author, error)
	RecentVideos(ctx context.Context, secUID string, count int) ([]tiktok.Video, error)
}

type Bot struct {
	Session *discordgo.Session

	Store       store.Store
	Log         *zap.SugaredLogger
	Config      *config.Config
	Dedup       dedup.Detector
	TikTok      TikTokService
	Whitelister rcon.Whitelister
	Stats       *stats.Stats

	// Schedule is nil when no stream schedule is configured.
	Schedule *schedule.Schedule

	// Cooldowns throttles whitelist requests per Discord user.
	Cooldowns *ttlcache.Cache
}

func New(cfg *config.Config, st store.Store, log *zap.SugaredLogger, detector dedup.Detector, tk TikTokService, wl rcon.Whitelister) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create a session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	cooldowns := ttlcache.NewCache()
	cooldowns.SetTTL(whitelistCooldown)

	return &Bot{
		Session:     session,
		Store:       st,
		Log:         log,
		Config:      cfg,
		Dedup:       detector,
		TikTok:      tk,
		Whitelister: wl,
		Stats:       stats.New(),
		Cooldowns:   cooldowns,
	}, nil
}

// WithSchedule attaches the stream schedule used by /schedule.
func (b *Bot) WithSchedule(s *schedule.Schedule) {
	b.Schedule = s
}

// AddHandlers registers gateway event handlers. Must be called before Open.
func (b *Bot) AddHandlers(handlers []any) {
	for _, handler := range handlers {
		b.Session.AddHandler(handler)
	}
}

func (b *Bot) Open() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("failed to open a session: %w", err)
	}

	b.Log.Infow("opened a connection to gateway", "user_id", b.Session.State.User.ID)
	return nil
}

// RegisterCommands registers slash commands: bulk-overwritten on the test
// guild in development, created or edited globally in production.
func (b *Bot) RegisterCommands(commands []*discordgo.ApplicationCommand) error {
	appID := b.Config.Discord.ApplicationID
	if appID == "" {
		appID = b.Session.State.User.ID
	}

	if b.Config.Env == config.DevEnvironment {
		_, err := b.Session.ApplicationCommandBulkOverwrite(appID, b.Config.Discord.TestGuildID, commands)
		if err != nil {
			return fmt.Errorf("failed to overwrite guild commands: %w", err)
		}

		return nil
	}

	registered, err := b.Session.ApplicationCommands(appID, "")
	if err != nil {
		return fmt.Errorf("failed to get current commands: %w", err)
	}

	takenNames := make(map[string]string)
	for _, cmd := range registered {
		takenNames[cmd.Name] = cmd.ID
	}

	for _, cmd := range commands {
		if id, ok := takenNames[cmd.Name]; ok {
			if _, err := b.Session.ApplicationCommandEdit(appID, "", id, cmd); err != nil {
				return fmt.Errorf("failed to edit a command: %w", err)
			}
		} else {
			if _, err := b.Session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return fmt.Errorf("failed to create a command: %w", err)
			}
		}
	}

	return nil
}

// WhitelistOnCooldown reports whether the user recently completed a
// whitelist request. Checking never starts the cooldown: a failed attempt
// must not lock the user out.
func (b *Bot) WhitelistOnCooldown(userID string) bool {
	_, ok := b.Cooldowns.Get(userID)
	return ok
}

// StartWhitelistCooldown begins the user's cooldown window. Called only
// after the server accepted the whitelist command.
func (b *Bot) StartWhitelistCooldown(userID string) {
	b.Cooldowns.Set(userID, struct{}{})
}

func (b *Bot) Close() error {
	return b.Session.Close()
}
