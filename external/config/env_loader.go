package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/adhan/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                     string        `env:"ENV" envDefault:"production"`
	DiscordToken            string        `env:"DISCORD_TOKEN,required"`
	DiscordGuildID          string        `env:"DISCORD_GUILD_ID"`
	Latitude                float64       `env:"PRAYER_LATITUDE" envDefault:"31.7767"`
	Longitude               float64       `env:"PRAYER_LONGITUDE" envDefault:"35.2345"`
	CalculationMethod       int           `env:"PRAYER_CALCULATION_METHOD" envDefault:"3"`
	Timezone                string        `env:"PRAYER_TIMEZONE" envDefault:"Asia/Jerusalem"`
	PrayerAPIBaseURL        string        `env:"PRAYER_API_BASE_URL" envDefault:"https://api.aladhan.com/v1"`
	PrayerAPITimeout        time.Duration `env:"PRAYER_API_TIMEOUT" envDefault:"10s"`
	AnnouncementLeadMinutes int           `env:"ANNOUNCEMENT_LEAD_MINUTES" envDefault:"5"`
	PollInterval            time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	StatusInterval          time.Duration `env:"STATUS_INTERVAL" envDefault:"120s"`
	VoiceReadyTimeout       time.Duration `env:"VOICE_READY_TIMEOUT" envDefault:"10s"`
	TriggerRetentionDays    int           `env:"TRIGGER_RETENTION_DAYS" envDefault:"2"`
	AdhanAudioPath          string        `env:"ADHAN_AUDIO_PATH" envDefault:"voice.mp3"`
	PrayerImageBackground   string        `env:"PRAYER_IMAGE_BACKGROUND" envDefault:"bg.png"`
	PrayerImageFont         string        `env:"PRAYER_IMAGE_FONT"`
	DatabaseURL             string        `env:"DATABASE_URL"`
	BroadcastWebhookURL     string        `env:"BROADCAST_WEBHOOK_URL"`
	HTTPBindAddr            string        `env:"HTTP_BIND_ADDR" envDefault:":8080"`
	MetricsNamespace        string        `env:"METRICS_NAMESPACE" envDefault:"adhan"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*internalconfig.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file; continuing with process environment", "error", err)
	}
	return parse()
}

func parse() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                     raw.Env,
		DiscordToken:            raw.DiscordToken,
		DiscordGuildID:          raw.DiscordGuildID,
		Latitude:                raw.Latitude,
		Longitude:               raw.Longitude,
		CalculationMethod:       raw.CalculationMethod,
		Timezone:                raw.Timezone,
		PrayerAPIBaseURL:        raw.PrayerAPIBaseURL,
		PrayerAPITimeout:        raw.PrayerAPITimeout,
		AnnouncementLeadMinutes: raw.AnnouncementLeadMinutes,
		PollInterval:            raw.PollInterval,
		StatusInterval:          raw.StatusInterval,
		VoiceReadyTimeout:       raw.VoiceReadyTimeout,
		TriggerRetentionDays:    raw.TriggerRetentionDays,
		AdhanAudioPath:          raw.AdhanAudioPath,
		PrayerImageBackground:   raw.PrayerImageBackground,
		PrayerImageFont:         raw.PrayerImageFont,
		DatabaseURL:             raw.DatabaseURL,
		BroadcastWebhookURL:     raw.BroadcastWebhookURL,
		HTTPBindAddr:            raw.HTTPBindAddr,
		MetricsNamespace:        raw.MetricsNamespace,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
