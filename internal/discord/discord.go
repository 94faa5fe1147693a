package discord

import "context"

type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type SlashCommandDefinition struct {
	Name        string
	Description string
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	UserTag          string
	RespondEphemeral func(content string) error
	Defer            func() error
	EditReply        func(content string, file *File) error
}

type VoiceParticipant struct {
	UserID string
	IsBot  bool
}

type VoiceChannel struct {
	GuildID      string
	GuildName    string
	ChannelID    string
	ChannelName  string
	Participants []VoiceParticipant
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	JoinVoiceChannel(ctx context.Context, guildID, channelID string) (VoiceConnection, error)
	ListVoiceChannels() ([]VoiceChannel, error)
	UpdatePresence(text string) error
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	UpsertSlashCommands(guildID string, defs []SlashCommandDefinition) error
	GetBotUserID() (string, error)
	Run() error
}

// VoiceConnection is one joined voice channel. Disconnect is idempotent.
type VoiceConnection interface {
	WaitReady(ctx context.Context) error
	PlayOpus(ctx context.Context, frames [][]byte) error
	Disconnect() error
}
