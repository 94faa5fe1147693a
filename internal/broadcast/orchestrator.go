package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/adhan/internal/audio"
	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/foxseedlab/adhan/internal/repository"
	"github.com/foxseedlab/adhan/internal/webhook"
	"github.com/google/uuid"
)

const (
	defaultReadyTimeout = 10 * time.Second
	reportTimeout       = 10 * time.Second
)

// Trigger describes why a broadcast started.
type Trigger struct {
	Prayer      prayer.Name
	Manual      bool
	RequestedBy string
}

func Scheduled(p prayer.Name) Trigger {
	return Trigger{Prayer: p}
}

func ManualTrigger(userID string) Trigger {
	return Trigger{Manual: true, RequestedBy: userID}
}

func (t Trigger) String() string {
	if t.Manual {
		return "manual"
	}
	return string(t.Prayer)
}

type Result struct {
	ID        string
	Trigger   Trigger
	StartedAt time.Time
	EndedAt   time.Time
	Sessions  []SessionResult
}

func (r Result) Count(state State) int {
	n := 0
	for _, s := range r.Sessions {
		if s.State == state {
			n++
		}
	}
	return n
}

type Options struct {
	ReadyTimeout time.Duration
	Observer     StateObserver
	Now          func() time.Time
	Location     *time.Location
}

type VoiceClient interface {
	ChannelLister
	VoiceJoiner
}

// Orchestrator plays the announcement into every occupied voice channel, one
// channel at a time. Concurrent BroadcastAll calls run one after another.
type Orchestrator struct {
	enumerator *Enumerator
	driver     *sessionDriver
	asset      *audio.Asset
	repo       repository.Repository
	webhook    webhook.Sender
	metrics    *observability.Metrics
	now        func() time.Time
	location   *time.Location

	mu sync.Mutex

	launchMu sync.Mutex
	draining bool
	launched sync.WaitGroup
}

func NewOrchestrator(vc VoiceClient, asset *audio.Asset, repo repository.Repository, wh webhook.Sender, metrics *observability.Metrics, opts Options) *Orchestrator {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = defaultReadyTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		enumerator: NewEnumerator(vc),
		driver: &sessionDriver{
			joiner:       vc,
			readyTimeout: opts.ReadyTimeout,
			observe:      opts.Observer,
			now:          opts.Now,
		},
		asset:    asset,
		repo:     repo,
		webhook:  wh,
		metrics:  metrics,
		now:      opts.Now,
		location: opts.Location,
	}
}

// BroadcastAll returns after every target has reached a terminal state. Session
// failures are reported in the result; only a failed enumeration is an error.
func (o *Orchestrator) BroadcastAll(ctx context.Context, trigger Trigger) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	res := Result{ID: uuid.NewString(), Trigger: trigger, StartedAt: o.now()}
	targets, err := o.enumerator.ListTargets()
	if err != nil {
		return res, err
	}
	if len(targets) == 0 {
		res.EndedAt = o.now()
		slog.Info("no occupied voice channels; broadcast skipped", "broadcast_id", res.ID, "trigger", trigger.String())
		o.metrics.ObserveBroadcast(trigger.String(), res.EndedAt.Sub(res.StartedAt))
		return res, nil
	}

	slog.Info("broadcast started", "broadcast_id", res.ID, "trigger", trigger.String(), "targets", len(targets), "requested_by", trigger.RequestedBy)
	o.recordStart(ctx, res, len(targets))

	frames := o.frames()
	for i, target := range targets {
		sr := o.driver.run(ctx, target, frames)
		res.Sessions = append(res.Sessions, sr)
		o.metrics.ObserveSession(sr.State.String())
		o.logSession(res.ID, i, sr)
		o.recordTarget(ctx, res.ID, i, sr)
	}

	res.EndedAt = o.now()
	o.metrics.ObserveBroadcast(trigger.String(), res.EndedAt.Sub(res.StartedAt))
	slog.Info("broadcast completed",
		"broadcast_id", res.ID,
		"trigger", trigger.String(),
		"finished", res.Count(StateFinished),
		"errored", res.Count(StateErrored),
		"duration", res.EndedAt.Sub(res.StartedAt),
	)
	o.recordCompletion(ctx, res)
	o.sendWebhook(ctx, res)
	return res, nil
}

func (o *Orchestrator) frames() [][]byte {
	if o.asset == nil {
		return nil
	}
	return o.asset.Frames
}

func (o *Orchestrator) logSession(broadcastID string, position int, sr SessionResult) {
	attrs := []any{
		"broadcast_id", broadcastID,
		"position", position,
		"guild_id", sr.Target.GuildID,
		"channel_id", sr.Target.ChannelID,
		"state", sr.State.String(),
		"duration", sr.EndedAt.Sub(sr.StartedAt),
	}
	if sr.Err == nil {
		slog.Info("voice session finished", attrs...)
		return
	}
	attrs = append(attrs, "error", sr.Err)
	switch {
	case errors.Is(sr.Err, ErrConnectionTimeout):
		slog.Warn("voice session timed out while connecting", attrs...)
	case errors.Is(sr.Err, context.Canceled):
		slog.Warn("voice session cancelled", attrs...)
	default:
		slog.Error("voice session errored", attrs...)
	}
}

// reportContext outlives a cancelled broadcast so that the outcome is still recorded.
func reportContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
}

func (o *Orchestrator) recordStart(ctx context.Context, res Result, targetCount int) {
	if o.repo == nil {
		return
	}
	rctx, cancel := reportContext(ctx)
	defer cancel()
	if err := o.repo.CreateBroadcast(rctx, repository.CreateBroadcastInput{
		ID:          res.ID,
		Trigger:     res.Trigger.String(),
		StartedAt:   res.StartedAt,
		TargetCount: targetCount,
	}); err != nil {
		slog.Error("failed to record broadcast", "error", err, "broadcast_id", res.ID)
	}
}

func (o *Orchestrator) recordTarget(ctx context.Context, broadcastID string, position int, sr SessionResult) {
	if o.repo == nil {
		return
	}
	rctx, cancel := reportContext(ctx)
	defer cancel()
	if err := o.repo.RecordTarget(rctx, repository.BroadcastTarget{
		BroadcastID:  broadcastID,
		Position:     position,
		GuildID:      sr.Target.GuildID,
		GuildName:    sr.Target.GuildName,
		ChannelID:    sr.Target.ChannelID,
		ChannelName:  sr.Target.ChannelName,
		State:        sr.State.String(),
		ErrorMessage: errorMessage(sr.Err),
		StartedAt:    sr.StartedAt,
		EndedAt:      sr.EndedAt,
	}); err != nil {
		slog.Error("failed to record broadcast target", "error", err, "broadcast_id", broadcastID, "channel_id", sr.Target.ChannelID)
	}
}

func (o *Orchestrator) recordCompletion(ctx context.Context, res Result) {
	if o.repo == nil {
		return
	}
	rctx, cancel := reportContext(ctx)
	defer cancel()
	if err := o.repo.CompleteBroadcast(rctx, repository.CompleteBroadcastInput{
		BroadcastID:   res.ID,
		EndedAt:       res.EndedAt,
		FinishedCount: res.Count(StateFinished),
		ErroredCount:  res.Count(StateErrored),
	}); err != nil {
		slog.Error("failed to complete broadcast record", "error", err, "broadcast_id", res.ID)
	}
}

func (o *Orchestrator) sendWebhook(ctx context.Context, res Result) {
	if o.webhook == nil {
		return
	}
	rctx, cancel := reportContext(ctx)
	defer cancel()
	if err := o.webhook.SendBroadcast(rctx, buildWebhookPayload(res, o.location)); err != nil {
		slog.Error("failed to send broadcast webhook", "error", err, "broadcast_id", res.ID)
	}
}

// Launch runs a broadcast in the background. A panic is logged instead of
// taking the process down. Wait blocks until every launched broadcast returned.
func (o *Orchestrator) Launch(ctx context.Context, trigger Trigger) <-chan Result {
	done := make(chan Result, 1)
	o.launchMu.Lock()
	if o.draining {
		o.launchMu.Unlock()
		slog.Warn("broadcast refused during shutdown", "trigger", trigger.String())
		close(done)
		return done
	}
	o.launched.Add(1)
	o.launchMu.Unlock()
	go func() {
		defer o.launched.Done()
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("broadcast panicked", "panic", r, "trigger", trigger.String())
			}
		}()
		res, err := o.BroadcastAll(ctx, trigger)
		if err != nil {
			slog.Error("broadcast failed", "error", fmt.Errorf("broadcast %s: %w", trigger.String(), err))
		}
		done <- res
	}()
	return done
}

// Wait returns once every broadcast started by Launch has released its
// connections and finished reporting. Launch refuses new work afterwards.
func (o *Orchestrator) Wait() {
	o.launchMu.Lock()
	o.draining = true
	o.launchMu.Unlock()
	o.launched.Wait()
}
