package broadcast

import (
	"time"

	"github.com/foxseedlab/adhan/internal/webhook"
)

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func buildWebhookPayload(res Result, loc *time.Location) webhook.BroadcastWebhookPayload {
	loc = safeLocation(loc)
	durationSeconds := int64(res.EndedAt.Sub(res.StartedAt).Seconds())
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	targets := make([]webhook.BroadcastTargetResult, 0, len(res.Sessions))
	for _, sr := range res.Sessions {
		targets = append(targets, webhook.BroadcastTargetResult{
			GuildID:     sr.Target.GuildID,
			GuildName:   sr.Target.GuildName,
			ChannelID:   sr.Target.ChannelID,
			ChannelName: sr.Target.ChannelName,
			State:       sr.State.String(),
			Error:       errorMessage(sr.Err),
			StartAt:     sr.StartedAt.In(loc).Format(time.RFC3339),
			EndAt:       sr.EndedAt.In(loc).Format(time.RFC3339),
		})
	}
	return webhook.BroadcastWebhookPayload{
		SchemaVersion:   webhook.BroadcastWebhookSchemaVersion,
		BroadcastID:     res.ID,
		Trigger:         res.Trigger.String(),
		RequestedBy:     res.Trigger.RequestedBy,
		StartAt:         res.StartedAt.In(loc).Format(time.RFC3339),
		EndAt:           res.EndedAt.In(loc).Format(time.RFC3339),
		Timezone:        loc.String(),
		DurationSeconds: durationSeconds,
		FinishedCount:   res.Count(StateFinished),
		ErroredCount:    res.Count(StateErrored),
		Targets:         targets,
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
