package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("fails without token", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")

		_, err := FromEnv()
		assert.ErrorContains(t, err, "discord token")
	})

	t.Run("reads documented variables", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token123")
		t.Setenv("MINECRAFT_RCON_HOST", "mc.example.com")
		t.Setenv("MINECRAFT_RCON_PORT", "25580")
		t.Setenv("MINECRAFT_RCON_PASSWORD", "hunter2")
		t.Setenv("GITHUB_REPOSITORY", "jaymaart/mummblebotv2")
		t.Setenv("SENTRY_DSN", "https://sentry.example.com/1")
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, "token123", cfg.Discord.Token)
		assert.Equal(t, "mc.example.com:25580", cfg.Minecraft.RconAddress())
		assert.Equal(t, "hunter2", cfg.Minecraft.RconPassword)
		assert.Equal(t, "jaymaart/mummblebotv2", cfg.Repository)
		assert.Equal(t, "https://sentry.example.com/1", cfg.Sentry)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token123")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, ProdEnvironment, cfg.Env)
		assert.Equal(t, "memory", cfg.Dedup.Type)
		assert.Equal(t, 25575, cfg.Minecraft.RconPort)
	})

	t.Run("rejects bad port", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token123")
		t.Setenv("MINECRAFT_RCON_PORT", "70000")

		_, err := FromEnv()
		assert.ErrorContains(t, err, "invalid rcon port")
	})
}

func TestFromFile(t *testing.T) {
	write := func(t *testing.T, body string) string {
		t.Helper()

		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	t.Run("parses full config", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")

		path := write(t, `{
			"discord": {"token": "filetoken", "test_guild_id": "guild1"},
			"mongo": {"uri": "mongodb://db:27017", "default_db": "mummblebot"},
			"dedup": {"type": "redis", "redis_uri": "redis://cache:6379"},
			"minecraft": {"rcon_host": "mc", "rcon_password": "pw", "server_address": "play.example.com"},
			"schedule": {
				"timezone": "America/Los_Angeles",
				"slots": [{"weekday": 3, "start": "20:00", "end": "22:00"}],
				"anchor_weekday": 0,
				"anchor_hour": 9
			},
			"env": "development"
		}`)

		cfg, err := FromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "filetoken", cfg.Discord.Token)
		assert.Equal(t, DevEnvironment, cfg.Env)
		assert.Equal(t, "redis", cfg.Dedup.Type)
		assert.Equal(t, "mc:25575", cfg.Minecraft.RconAddress())

		require.NotNil(t, cfg.Schedule)
		require.Len(t, cfg.Schedule.Slots, 1)
		assert.Equal(t, time.Wednesday, cfg.Schedule.Slots[0].Weekday)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "envtoken")

		path := write(t, `{"discord": {"token": "filetoken"}}`)

		cfg, err := FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "envtoken", cfg.Discord.Token)
	})

	t.Run("rejects malformed slot", func(t *testing.T) {
		path := write(t, `{
			"discord": {"token": "filetoken"},
			"schedule": {"slots": [{"weekday": 1, "start": "8pm", "end": "22:00"}]}
		}`)

		_, err := FromFile(path)
		assert.ErrorContains(t, err, "invalid slot start")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FromFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}
