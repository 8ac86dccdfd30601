package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jaymaart/mummblebotv2/bot"
	"github.com/jaymaart/mummblebotv2/commands"
	"github.com/jaymaart/mummblebotv2/dedup"
	"github.com/jaymaart/mummblebotv2/handlers"
	"github.com/jaymaart/mummblebotv2/internal/config"
	"github.com/jaymaart/mummblebotv2/internal/logger"
	"github.com/jaymaart/mummblebotv2/messages"
	"github.com/jaymaart/mummblebotv2/poller"
	"github.com/jaymaart/mummblebotv2/rcon"
	"github.com/jaymaart/mummblebotv2/schedule"
	"github.com/jaymaart/mummblebotv2/store"
	"github.com/jaymaart/mummblebotv2/store/mongo"
	"github.com/jaymaart/mummblebotv2/tiktok"
	cache "github.com/patrickmn/go-cache"
)

func loadConfig() (*config.Config, error) {
	if _, err := os.Stat("config.json"); err == nil {
		return config.FromFile("config.json")
	}

	return config.FromEnv()
}

func newDetector(cfg *config.Dedup) (dedup.Detector, error) {
	if cfg.Type == "redis" {
		return dedup.NewRedis(cfg.RedisURI)
	}

	return dedup.NewMemory(), nil
}

func initStore(mongoURI, database string) (store.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongo, err := mongo.New(ctx, mongoURI, database)
	if err != nil {
		return nil, err
	}

	if err := mongo.Init(ctx); err != nil {
		return nil, err
	}

	return store.NewStatefulStore(mongo, cache.New(30*time.Minute, 1*time.Hour)), nil
}

// webhookPoster posts schedule embeds through a Discord webhook URL.
func webhookPoster(session *discordgo.Session, webhookURL string) (schedule.PostFunc, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, occurrences []schedule.Occurrence) error {
		_, err := session.WebhookExecute(id, token, false, &discordgo.WebhookParams{
			Username: "Stream Scheduler",
			Embeds:   []*discordgo.MessageEmbed{messages.ScheduleEmbed(occurrences)},
		}, discordgo.WithContext(ctx))

		return err
	}, nil
}

// parseWebhookURL splits https://discord.com/api/webhooks/<id>/<token>.
func parseWebhookURL(url string) (id, token string, err error) {
	const marker = "/webhooks/"

	idx := strings.Index(url, marker)
	if idx == -1 {
		return "", "", fmt.Errorf("not a discord webhook url: %v", url)
	}

	parts := strings.Split(strings.Trim(url[idx+len(marker):], "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("not a discord webhook url: %v", url)
	}

	return parts[0], parts[1], nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println("failed to load configuration: ", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Sentry)
	if err != nil {
		fmt.Println("failed to initialise logger: ", err)
		os.Exit(1)
	}
	defer logger.Flush()

	detector, err := newDetector(cfg.Dedup)
	if err != nil {
		log.Fatalf("failed to initialise a dedup detector: %v", err)
	}

	st, err := initStore(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatalf("failed to initialise a database: %v", err)
	}

	whitelister := rcon.NewClient(cfg.Minecraft.RconAddress(), cfg.Minecraft.RconPassword)

	b, err := bot.New(cfg, st, log, detector, tiktok.New(), whitelister)
	if err != nil {
		log.Fatalf("failed to create a new bot: %v", err)
	}

	b.AddHandlers(handlers.All(b))

	if err := b.Open(); err != nil {
		log.Fatalf("failed to open a session: %v", err)
	}

	if err := b.RegisterCommands(commands.CreateData()); err != nil {
		log.Fatalf("failed to register commands: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := poller.New(st, b.TikTok, detector, b.Session, b.Stats, log)
	go p.Start(ctx)

	if cfg.Schedule != nil && len(cfg.Schedule.Slots) > 0 {
		sched, err := schedule.New(cfg.Schedule)
		if err != nil {
			log.Fatalf("failed to build stream schedule: %v", err)
		}

		b.WithSchedule(sched)

		if cfg.Schedule.WebhookURL != "" {
			post, err := webhookPoster(b.Session, cfg.Schedule.WebhookURL)
			if err != nil {
				log.Fatalf("failed to parse schedule webhook: %v", err)
			}

			notifier := schedule.NewNotifier(sched, post, log, cfg.Schedule.AnchorWeekday, cfg.Schedule.AnchorHour)
			go notifier.Start(ctx)
		}
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	cancel()
	st.Close(context.Background())
	detector.Close()
	b.Close()
}
