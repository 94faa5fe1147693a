package webhook

import "context"

const BroadcastWebhookSchemaVersion = 1

type BroadcastTargetResult struct {
	GuildID     string `json:"guild_id"`
	GuildName   string `json:"guild_name"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	State       string `json:"state"`
	Error       string `json:"error,omitempty"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
}

type BroadcastWebhookPayload struct {
	SchemaVersion   int                     `json:"schema_version"`
	BroadcastID     string                  `json:"broadcast_id"`
	Trigger         string                  `json:"trigger"`
	RequestedBy     string                  `json:"requested_by,omitempty"`
	StartAt         string                  `json:"start_at"`
	EndAt           string                  `json:"end_at"`
	Timezone        string                  `json:"timezone"`
	DurationSeconds int64                   `json:"duration_seconds"`
	FinishedCount   int                     `json:"finished_count"`
	ErroredCount    int                     `json:"errored_count"`
	Targets         []BroadcastTargetResult `json:"targets"`
}

type Sender interface {
	SendBroadcast(ctx context.Context, payload BroadcastWebhookPayload) error
}
