package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	frameStallTimeout = 5 * time.Second
	trailingSilence   = 5

	// discordgo gives up on a voice handshake after roughly 10s.
	joinReleaseTimeout = 15 * time.Second
)

var (
	silenceFrame       = []byte{0xF8, 0xFF, 0xFE}
	errFrameStalled    = errors.New("opus frame was not accepted in time")
	errNoOpusSendQueue = errors.New("voice connection has no opus send queue")
	errVoiceJoinFailed = errors.New("voice join failed")
	errReleaseTimedOut = errors.New("pending voice join did not return in time")
)

// voiceConnection wraps a join that discordgo performs synchronously. The join runs
// in the background so that the caller can bound the wait. Disconnect on a pending
// join asks the gateway to leave, then blocks until the join returns and releases it:
// discordgo keeps one connection per guild, so a join left running could close the
// next session's connection in that guild.
type voiceConnection struct {
	guildID        string
	channelID      string
	stallTimeout   time.Duration
	releaseTimeout time.Duration
	leave          func() error

	joined chan struct{}
	vc     *discordgo.VoiceConnection
	err    error

	closeOnce sync.Once
}

func newVoiceConnection(guildID, channelID string) *voiceConnection {
	return &voiceConnection{
		guildID:        guildID,
		channelID:      channelID,
		stallTimeout:   frameStallTimeout,
		releaseTimeout: joinReleaseTimeout,
		joined:         make(chan struct{}),
	}
}

func (v *voiceConnection) finishJoin(vc *discordgo.VoiceConnection, err error) {
	v.vc = vc
	if err != nil {
		v.err = fmt.Errorf("%w: %w", errVoiceJoinFailed, err)
	}
	close(v.joined)
}

func (v *voiceConnection) WaitReady(ctx context.Context) error {
	select {
	case <-v.joined:
		return v.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *voiceConnection) PlayOpus(ctx context.Context, frames [][]byte) error {
	select {
	case <-v.joined:
	default:
		return fmt.Errorf("voice connection is not ready")
	}
	if v.err != nil {
		return v.err
	}
	if v.vc == nil || v.vc.OpusSend == nil {
		return errNoOpusSendQueue
	}
	if err := v.vc.Speaking(true); err != nil {
		slog.Warn("failed to set speaking state", "error", err, "guild_id", v.guildID, "channel_id", v.channelID)
	}
	defer func() {
		if err := v.vc.Speaking(false); err != nil {
			slog.Debug("failed to clear speaking state", "error", err, "guild_id", v.guildID, "channel_id", v.channelID)
		}
	}()

	for _, frame := range frames {
		if err := v.send(ctx, frame); err != nil {
			return err
		}
	}
	for i := 0; i < trailingSilence; i++ {
		if err := v.send(ctx, silenceFrame); err != nil {
			return err
		}
	}
	return nil
}

func (v *voiceConnection) send(ctx context.Context, frame []byte) error {
	timer := time.NewTimer(v.stallTimeout)
	defer timer.Stop()
	select {
	case v.vc.OpusSend <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errFrameStalled
	}
}

func (v *voiceConnection) Disconnect() error {
	var err error
	v.closeOnce.Do(func() {
		if err = v.awaitPendingJoin(); err != nil {
			return
		}
		err = v.disconnectJoined()
	})
	return err
}

func (v *voiceConnection) awaitPendingJoin() error {
	select {
	case <-v.joined:
		return nil
	default:
	}
	if v.leave != nil {
		if err := v.leave(); err != nil {
			slog.Warn("failed to leave pending voice channel", "error", err, "guild_id", v.guildID, "channel_id", v.channelID)
		}
	}
	timer := time.NewTimer(v.releaseTimeout)
	defer timer.Stop()
	select {
	case <-v.joined:
		return nil
	case <-timer.C:
		slog.Error("pending voice join was not released", "guild_id", v.guildID, "channel_id", v.channelID, "waited", v.releaseTimeout)
		return errReleaseTimedOut
	}
}

func (v *voiceConnection) disconnectJoined() error {
	if v.vc == nil {
		return nil
	}
	return v.vc.Disconnect()
}
