package broadcast

import (
	"fmt"

	"github.com/foxseedlab/adhan/internal/discord"
)

// Target is an occupied voice channel that receives the announcement.
type Target struct {
	GuildID     string
	GuildName   string
	ChannelID   string
	ChannelName string
	HumanCount  int
}

func (t Target) String() string {
	return t.GuildID + "/" + t.ChannelID
}

type ChannelLister interface {
	ListVoiceChannels() ([]discord.VoiceChannel, error)
}

type Enumerator struct {
	lister ChannelLister
}

func NewEnumerator(lister ChannelLister) *Enumerator {
	return &Enumerator{lister: lister}
}

// ListTargets returns every voice channel with at least one non-bot occupant,
// in the order the lister reports them. No occupied channel yields an empty slice.
func (e *Enumerator) ListTargets() ([]Target, error) {
	channels, err := e.lister.ListVoiceChannels()
	if err != nil {
		return nil, fmt.Errorf("list voice channels: %w", err)
	}
	targets := make([]Target, 0, len(channels))
	for _, ch := range channels {
		humans := 0
		for _, p := range ch.Participants {
			if !p.IsBot {
				humans++
			}
		}
		if humans == 0 {
			continue
		}
		targets = append(targets, Target{
			GuildID:     ch.GuildID,
			GuildName:   ch.GuildName,
			ChannelID:   ch.ChannelID,
			ChannelName: ch.ChannelName,
			HumanCount:  humans,
		})
	}
	return targets, nil
}
