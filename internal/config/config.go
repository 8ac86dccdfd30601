package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Environment string

const (
	DevEnvironment  Environment = "development"
	ProdEnvironment Environment = "production"
)

const (
	// DefaultCheckInterval is used when /tiktok_config omits check_interval.
	DefaultCheckInterval = 5 * time.Minute

	// MinCheckInterval is the floor for user-provided check intervals.
	MinCheckInterval = time.Minute

	defaultRconPort = 25575
)

// Config is an application configuration struct.
type Config struct {
	Discord   *Discord   `json:"discord"`
	Mongo     *Mongo     `json:"mongo"`
	Dedup     *Dedup     `json:"dedup"`
	Minecraft *Minecraft `json:"minecraft"`
	Schedule  *Schedule  `json:"schedule"`
	Sentry    string     `json:"sentry"`

	// Repository is the public source repository, shown by the about command.
	Repository string `json:"repository"`

	Env Environment `json:"env"`
}

// Discord stores Discord bot configuration. Acquire bot token on Discord's Developer Portal.
// TestGuildID is only used in the development environment.
type Discord struct {
	Token         string `json:"token"`
	ApplicationID string `json:"application_id"`
	TestGuildID   string `json:"test_guild_id"`
}

// Mongo stores Mongo connection configuration. Required.
type Mongo struct {
	URI      string `json:"uri"`
	Database string `json:"default_db"`
}

// Dedup stores posted-video detector configuration. Supported types: "memory", "redis".
// RedisURI is not required for in-memory storage.
type Dedup struct {
	Type     string `json:"type"`
	RedisURI string `json:"redis_uri"`
}

// Minecraft stores the RCON endpoint and the server facts shown in the info embed.
// Whitelisting is disabled while RconPassword is empty.
type Minecraft struct {
	RconHost      string `json:"rcon_host"`
	RconPort      int    `json:"rcon_port"`
	RconPassword  string `json:"rcon_password"`
	ServerAddress string `json:"server_address"`
	Version       string `json:"version"`
}

// Schedule stores stream schedule configuration. Slots are weekly recurring
// stream windows in the configured IANA timezone. WebhookURL receives the
// weekly schedule embed; leave empty to disable the notifier.
type Schedule struct {
	WebhookURL string  `json:"webhook_url"`
	Timezone   string  `json:"timezone"`
	Slots      []*Slot `json:"slots"`

	// Anchor of the weekly post, e.g. Sunday 9:00.
	AnchorWeekday time.Weekday `json:"anchor_weekday"`
	AnchorHour    int          `json:"anchor_hour"`
}

// Slot is a single weekly stream window. Start and End are "HH:MM" strings.
// An End earlier than Start means the stream crosses midnight.
type Slot struct {
	Weekday time.Weekday `json:"weekday"`
	Start   string       `json:"start"`
	End     string       `json:"end"`
}

func FromFile(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FromEnv builds a configuration from environment variables alone.
// Used when no config file is mounted into the container.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Discord == nil {
		c.Discord = &Discord{}
	}

	if c.Mongo == nil {
		c.Mongo = &Mongo{}
	}

	if c.Dedup == nil {
		c.Dedup = &Dedup{Type: "memory"}
	}

	if c.Minecraft == nil {
		c.Minecraft = &Minecraft{}
	}

	if c.Minecraft.RconPort == 0 {
		c.Minecraft.RconPort = defaultRconPort
	}

	if c.Env == "" {
		c.Env = ProdEnvironment
	}
}

// applyEnv overrides file values with the environment variables documented
// in the README. Environment always wins over the file.
func (c *Config) applyEnv() {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		c.Discord.Token = token
	}

	if host := os.Getenv("MINECRAFT_RCON_HOST"); host != "" {
		c.Minecraft.RconHost = host
	}

	if port := os.Getenv("MINECRAFT_RCON_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Minecraft.RconPort = p
		}
	}

	if password := os.Getenv("MINECRAFT_RCON_PASSWORD"); password != "" {
		c.Minecraft.RconPassword = password
	}

	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" {
		c.Repository = repo
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		c.Sentry = dsn
	}

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		c.Mongo.URI = uri
	}
}

func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord token is required, set DISCORD_TOKEN or discord.token")
	}

	if c.Minecraft.RconPort < 1 || c.Minecraft.RconPort > 65535 {
		return fmt.Errorf("invalid rcon port: %v", c.Minecraft.RconPort)
	}

	if c.Schedule != nil {
		for _, slot := range c.Schedule.Slots {
			if _, err := time.Parse("15:04", slot.Start); err != nil {
				return fmt.Errorf("invalid slot start %q: %w", slot.Start, err)
			}

			if _, err := time.Parse("15:04", slot.End); err != nil {
				return fmt.Errorf("invalid slot end %q: %w", slot.End, err)
			}
		}
	}

	return nil
}

// RconAddress returns the host:port RCON endpoint.
func (m *Minecraft) RconAddress() string {
	return fmt.Sprintf("%v:%v", m.RconHost, m.RconPort)
}
