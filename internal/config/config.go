package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env                     string
	DiscordToken            string
	DiscordGuildID          string
	Latitude                float64
	Longitude               float64
	CalculationMethod       int
	Timezone                string
	PrayerAPIBaseURL        string
	PrayerAPITimeout        time.Duration
	AnnouncementLeadMinutes int
	PollInterval            time.Duration
	StatusInterval          time.Duration
	VoiceReadyTimeout       time.Duration
	TriggerRetentionDays    int
	AdhanAudioPath          string
	PrayerImageBackground   string
	PrayerImageFont         string
	DatabaseURL             string
	BroadcastWebhookURL     string
	HTTPBindAddr            string
	MetricsNamespace        string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("PRAYER_LATITUDE must be within [-90, 90], got %v", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("PRAYER_LONGITUDE must be within [-180, 180], got %v", c.Longitude)
	}
	if c.CalculationMethod < 0 {
		return fmt.Errorf("PRAYER_CALCULATION_METHOD must not be negative, got %d", c.CalculationMethod)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("PRAYER_TIMEZONE is invalid: %w", err)
	}
	if c.PrayerAPITimeout <= 0 {
		return fmt.Errorf("PRAYER_API_TIMEOUT must be positive, got %s", c.PrayerAPITimeout)
	}
	if c.AnnouncementLeadMinutes <= 0 || c.AnnouncementLeadMinutes >= 24*60 {
		return fmt.Errorf("ANNOUNCEMENT_LEAD_MINUTES must be within (0, 1440), got %d", c.AnnouncementLeadMinutes)
	}
	// Triggers match a single whole minute, so every minute needs at least one tick.
	if c.PollInterval <= 0 || c.PollInterval >= time.Minute {
		return fmt.Errorf("POLL_INTERVAL must be positive and shorter than one minute, got %s", c.PollInterval)
	}
	if c.StatusInterval <= 0 {
		return fmt.Errorf("STATUS_INTERVAL must be positive, got %s", c.StatusInterval)
	}
	if c.VoiceReadyTimeout <= 0 {
		return fmt.Errorf("VOICE_READY_TIMEOUT must be positive, got %s", c.VoiceReadyTimeout)
	}
	if c.TriggerRetentionDays < 1 {
		return fmt.Errorf("TRIGGER_RETENTION_DAYS must be at least 1, got %d", c.TriggerRetentionDays)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "PRAYER_TIMEZONE", value: c.Timezone},
		{name: "PRAYER_API_BASE_URL", value: c.PrayerAPIBaseURL},
		{name: "ADHAN_AUDIO_PATH", value: c.AdhanAudioPath},
		{name: "METRICS_NAMESPACE", value: c.MetricsNamespace},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location returns the prayer timezone; Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
