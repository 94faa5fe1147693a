package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/adhan/internal/discord"
)

type State int

const (
	StateConnecting State = iota
	StateReady
	StatePlaying
	StateFinished
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) Terminal() bool {
	return s == StateFinished || s == StateErrored
}

var (
	ErrConnectionTimeout = errors.New("voice connection did not become ready in time")
	ErrConnectionFailed  = errors.New("voice connection failed")
	ErrPlaybackFault     = errors.New("audio playback failed")
)

// StateObserver is called on every state a session enters, terminal states
// included. Terminal states are reported after the connection was released.
type StateObserver func(target Target, state State)

type SessionResult struct {
	Target      Target
	State       State
	Err         error
	Transitions []State
	StartedAt   time.Time
	EndedAt     time.Time
}

type sessionDriver struct {
	joiner       VoiceJoiner
	readyTimeout time.Duration
	observe      StateObserver
	now          func() time.Time
}

type VoiceJoiner interface {
	JoinVoiceChannel(ctx context.Context, guildID, channelID string) (discord.VoiceConnection, error)
}

// run drives one target from connecting to a terminal state. It never returns
// with the connection still open and never panics.
func (d *sessionDriver) run(ctx context.Context, target Target, frames [][]byte) (res SessionResult) {
	res = SessionResult{Target: target, StartedAt: d.now()}
	var conn discord.VoiceConnection
	defer func() {
		if r := recover(); r != nil {
			slog.Error("voice session panicked", "panic", r, "guild_id", target.GuildID, "channel_id", target.ChannelID)
			res.Err = fmt.Errorf("voice session panic: %v", r)
		}
		if conn != nil {
			if err := conn.Disconnect(); err != nil {
				slog.Warn("failed to release voice connection", "error", err, "guild_id", target.GuildID, "channel_id", target.ChannelID)
			}
		}
		if res.Err != nil {
			d.enter(&res, StateErrored)
		} else {
			d.enter(&res, StateFinished)
		}
		res.EndedAt = d.now()
	}()

	d.enter(&res, StateConnecting)
	c, err := d.joiner.JoinVoiceChannel(ctx, target.GuildID, target.ChannelID)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		return res
	}
	conn = c

	readyCtx, cancel := context.WithTimeout(ctx, d.readyTimeout)
	err = conn.WaitReady(readyCtx)
	cancel()
	if err != nil {
		res.Err = d.readyError(ctx, err)
		return res
	}
	d.enter(&res, StateReady)

	d.enter(&res, StatePlaying)
	if err := conn.PlayOpus(ctx, frames); err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrPlaybackFault, err)
		return res
	}
	return res
}

func (d *sessionDriver) readyError(parent context.Context, err error) error {
	if perr := parent.Err(); perr != nil {
		return fmt.Errorf("voice session cancelled while connecting: %w", perr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w (waited %s)", ErrConnectionTimeout, d.readyTimeout)
	}
	return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
}

func (d *sessionDriver) enter(res *SessionResult, state State) {
	res.State = state
	res.Transitions = append(res.Transitions, state)
	slog.Debug("voice session state", "state", state.String(), "guild_id", res.Target.GuildID, "channel_id", res.Target.ChannelID)
	if d.observe != nil {
		d.observe(res.Target, state)
	}
}
