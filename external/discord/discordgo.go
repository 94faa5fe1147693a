package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/adhan/internal/discord"
)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(token string) discordpkg.Client {
	return &Client{
		token: token,
		done:  make(chan struct{}),
	}
}

func (c *Client) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates)
	s.State.TrackChannels = true
	s.State.TrackVoice = true
	if err := s.Open(); err != nil {
		return err
	}
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if c.session != nil {
			err = c.session.Close()
		}
	})
	return err
}

func (c *Client) Run() error {
	<-c.done
	return nil
}

func (c *Client) JoinVoiceChannel(ctx context.Context, guildID, channelID string) (discordpkg.VoiceConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.session == nil {
		return nil, fmt.Errorf("discord session is not initialized")
	}
	conn := newVoiceConnection(guildID, channelID)
	conn.leave = func() error {
		return c.session.ChannelVoiceJoinManual(guildID, "", false, true)
	}
	go func() {
		// discordgo blocks here until the voice handshake completes or its own wait gives up.
		vc, err := c.session.ChannelVoiceJoin(guildID, channelID, false, true)
		conn.finishJoin(vc, err)
	}()
	return conn, nil
}

func (c *Client) UpdatePresence(text string) error {
	if c.session == nil {
		return fmt.Errorf("discord session is not initialized")
	}
	return c.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusIdle),
		Activities: []*discordgo.Activity{
			{Name: text, Type: discordgo.ActivityTypeWatching},
		},
	})
}

type guildSnapshot struct {
	id       string
	name     string
	channels []*discordgo.Channel
	states   []*discordgo.VoiceState
}

// ListVoiceChannels reads every cached guild's voice channels with their occupants.
// Guilds are ordered by id and channels by position, then id.
func (c *Client) ListVoiceChannels() ([]discordpkg.VoiceChannel, error) {
	if c.session == nil || c.session.State == nil {
		return nil, fmt.Errorf("discord session is not initialized")
	}
	snapshots := c.snapshotGuilds()

	out := make([]discordpkg.VoiceChannel, 0)
	for _, g := range snapshots {
		for _, ch := range g.channels {
			out = append(out, discordpkg.VoiceChannel{
				GuildID:      g.id,
				GuildName:    g.name,
				ChannelID:    ch.ID,
				ChannelName:  ch.Name,
				Participants: c.channelParticipants(g.id, ch.ID, g.states),
			})
		}
	}
	return out, nil
}

// snapshotGuilds copies what ListVoiceChannels needs so that bot resolution,
// which may take the state lock again or hit REST, runs without holding it.
func (c *Client) snapshotGuilds() []guildSnapshot {
	st := c.session.State
	st.RLock()
	snapshots := make([]guildSnapshot, 0, len(st.Guilds))
	for _, g := range st.Guilds {
		if g == nil {
			continue
		}
		snap := guildSnapshot{id: g.ID, name: g.Name}
		for _, ch := range g.Channels {
			if ch != nil && ch.Type == discordgo.ChannelTypeGuildVoice {
				snap.channels = append(snap.channels, ch)
			}
		}
		snap.states = append(snap.states, g.VoiceStates...)
		snapshots = append(snapshots, snap)
	}
	st.RUnlock()

	sort.SliceStable(snapshots, func(i, j int) bool { return snapshots[i].id < snapshots[j].id })
	for _, s := range snapshots {
		sort.SliceStable(s.channels, func(i, j int) bool {
			if s.channels[i].Position != s.channels[j].Position {
				return s.channels[i].Position < s.channels[j].Position
			}
			return s.channels[i].ID < s.channels[j].ID
		})
	}
	return snapshots
}

func (c *Client) channelParticipants(guildID, channelID string, states []*discordgo.VoiceState) []discordpkg.VoiceParticipant {
	participants := make([]discordpkg.VoiceParticipant, 0)
	seen := make(map[string]struct{})
	for _, state := range states {
		if state == nil || state.ChannelID != channelID || state.UserID == "" {
			continue
		}
		if _, exists := seen[state.UserID]; exists {
			continue
		}
		seen[state.UserID] = struct{}{}
		participants = append(participants, discordpkg.VoiceParticipant{
			UserID: state.UserID,
			IsBot:  c.resolveUserIsBot(guildID, state.UserID, state),
		})
	}
	return participants
}

func (c *Client) RegisterSlashCommandHandler(handler func(discordpkg.SlashCommandEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := ic.ApplicationCommandData()
		if data.Name == "" {
			return
		}
		user := interactionUser(ic)
		if user == nil {
			return
		}
		slog.Info("slash command interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "command", data.Name, "user_id", user.ID)
		handler(discordpkg.SlashCommandEvent{
			GuildID:     ic.GuildID,
			ChannelID:   ic.ChannelID,
			CommandName: data.Name,
			UserID:      user.ID,
			UserTag:     user.String(),
			RespondEphemeral: func(content string) error {
				return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
					Type: discordgo.InteractionResponseChannelMessageWithSource,
					Data: &discordgo.InteractionResponseData{
						Content: content,
						Flags:   discordgo.MessageFlagsEphemeral,
					},
				})
			},
			Defer: func() error {
				return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
					Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
				})
			},
			EditReply: func(content string, file *discordpkg.File) error {
				edit := &discordgo.WebhookEdit{Content: &content}
				if file != nil {
					edit.Files = []*discordgo.File{
						{Name: file.Name, ContentType: file.ContentType, Reader: bytes.NewReader(file.Body)},
					}
				}
				_, err := s.InteractionResponseEdit(ic.Interaction, edit)
				return err
			},
		})
	})
}

func interactionUser(ic *discordgo.InteractionCreate) *discordgo.User {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User
	}
	return ic.User
}

// UpsertSlashCommands registers defs in guildID, or globally when guildID is empty.
func (c *Client) UpsertSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	existing, err := c.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		existingByName[cmd.Name] = cmd
	}
	for _, def := range defs {
		if err := c.upsertSlashCommand(appID, guildID, def, existingByName); err != nil {
			return fmt.Errorf("upsert command %q: %w", def.Name, err)
		}
	}
	return nil
}

func (c *Client) upsertSlashCommand(appID, guildID string, def discordpkg.SlashCommandDefinition, existingByName map[string]*discordgo.ApplicationCommand) error {
	if def.Name == "" {
		return nil
	}
	payload := &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
	}
	cmd, ok := existingByName[def.Name]
	if !ok {
		_, err := c.session.ApplicationCommandCreate(appID, guildID, payload)
		return err
	}
	if cmd.Description == def.Description {
		return nil
	}
	_, err := c.session.ApplicationCommandEdit(appID, guildID, cmd.ID, payload)
	return err
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session == nil {
		return "", fmt.Errorf("discord session is not initialized")
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) resolveUserIsBot(guildID, userID string, state *discordgo.VoiceState) bool {
	if isBot, ok := botFlagFromVoiceState(state); ok {
		return isBot
	}
	if isBot, ok := c.botFlagFromSessionState(guildID, userID); ok {
		return isBot
	}
	return c.botFlagFromUserAPI(userID)
}

func botFlagFromVoiceState(state *discordgo.VoiceState) (bool, bool) {
	if state != nil && state.Member != nil && state.Member.User != nil {
		return state.Member.User.Bot, true
	}
	return false, false
}

func (c *Client) botFlagFromSessionState(guildID, userID string) (bool, bool) {
	if c.session == nil || c.session.State == nil {
		return false, false
	}
	if c.session.State.User != nil && c.session.State.User.ID == userID {
		return true, true
	}
	member, err := c.session.State.Member(guildID, userID)
	if err == nil && member != nil && member.User != nil {
		return member.User.Bot, true
	}
	return false, false
}

func (c *Client) botFlagFromUserAPI(userID string) bool {
	u, err := c.session.User(userID)
	if err != nil {
		slog.Warn("failed to resolve user bot flag; treating as human", "error", err, "user_id", userID)
		return false
	}
	return u.Bot
}

func (c *Client) applicationID() string {
	if c.session == nil || c.session.State == nil {
		return ""
	}
	if c.session.State.Application != nil && c.session.State.Application.ID != "" {
		return c.session.State.Application.ID
	}
	if c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}
