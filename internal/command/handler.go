package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/adhan/internal/broadcast"
	"github.com/foxseedlab/adhan/internal/discord"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/foxseedlab/adhan/internal/render"
)

type Broadcaster interface {
	Launch(ctx context.Context, trigger broadcast.Trigger) <-chan broadcast.Result
}

type Handler struct {
	guildID     string
	source      prayer.TimeSource
	clock       prayer.Clock
	renderer    render.CardRenderer
	broadcaster Broadcaster
}

// NewHandler builds the slash command handler. When guildID is set, commands
// from other guilds are refused.
func NewHandler(guildID string, source prayer.TimeSource, clock prayer.Clock, renderer render.CardRenderer, b Broadcaster) *Handler {
	return &Handler{
		guildID:     guildID,
		source:      source,
		clock:       clock,
		renderer:    renderer,
		broadcaster: b,
	}
}

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: commandPrayerTimes, Description: slashCommandPrayerTimesDescription},
		{Name: commandTestReminder, Description: slashCommandTestReminderDescription},
	}
}

// Bind returns the event callback. Work started by a command runs under ctx.
func (h *Handler) Bind(ctx context.Context) func(discord.SlashCommandEvent) {
	return func(ev discord.SlashCommandEvent) {
		h.handle(ctx, ev)
	}
}

func (h *Handler) handle(ctx context.Context, ev discord.SlashCommandEvent) {
	if h.guildID != "" && ev.GuildID != "" && ev.GuildID != h.guildID {
		h.respondEphemeral(ev, messageEphemeralWrongGuild)
		return
	}
	switch ev.CommandName {
	case commandPrayerTimes:
		h.handlePrayerTimes(ctx, ev)
	case commandTestReminder:
		h.handleTestReminder(ctx, ev)
	default:
		h.respondEphemeral(ev, messageEphemeralUnknownCommand)
	}
}

func (h *Handler) handlePrayerTimes(ctx context.Context, ev discord.SlashCommandEvent) {
	if err := ev.Defer(); err != nil {
		slog.Error("failed to defer prayer times reply", "error", err, "user_id", ev.UserID)
		return
	}
	png, err := h.prayerTimesCard(ctx)
	if err != nil {
		slog.Error("failed to build prayer times card", "error", err, "user_id", ev.UserID)
		if err := ev.EditReply(messagePrayerTimesFailed, nil); err != nil {
			slog.Error("failed to send prayer times failure reply", "error", err, "user_id", ev.UserID)
		}
		return
	}
	file := &discord.File{Name: prayerTimesFilename, ContentType: "image/png", Body: png}
	if err := ev.EditReply(messagePrayerTimesTitle, file); err != nil {
		slog.Error("failed to send prayer times reply", "error", err, "user_id", ev.UserID)
		return
	}
	slog.Info("sent prayer times", "user_id", ev.UserID, "user_tag", ev.UserTag, "guild_id", ev.GuildID)
}

func (h *Handler) prayerTimesCard(ctx context.Context) ([]byte, error) {
	s, err := h.source.Fetch(ctx, h.clock.Now())
	if err != nil {
		return nil, err
	}
	png, err := h.renderer.Render(s)
	if err != nil {
		return nil, fmt.Errorf("render prayer times card: %w", err)
	}
	return png, nil
}

func (h *Handler) handleTestReminder(ctx context.Context, ev discord.SlashCommandEvent) {
	slog.Info("manual broadcast requested", "user_id", ev.UserID, "user_tag", ev.UserTag, "guild_id", ev.GuildID)
	h.respondEphemeral(ev, messageEphemeralTestReminderStarted)
	h.broadcaster.Launch(ctx, broadcast.ManualTrigger(ev.UserID))
}

func (h *Handler) respondEphemeral(ev discord.SlashCommandEvent, content string) {
	if err := ev.RespondEphemeral(content); err != nil {
		slog.Error("failed to respond to slash command", "error", err, "command", ev.CommandName, "user_id", ev.UserID)
	}
}
