package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/adhan/internal/broadcast"
	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/foxseedlab/adhan/internal/prayer"
)

type Broadcaster interface {
	Launch(ctx context.Context, trigger broadcast.Trigger) <-chan broadcast.Result
}

type PresenceUpdater interface {
	UpdatePresence(text string) error
}

type Options struct {
	LeadMinutes    int
	PollInterval   time.Duration
	StatusInterval time.Duration
	RetentionDays  int
}

// Scheduler runs the poll loop that fires announcements and the status loop
// that publishes the next prayer as the bot's presence.
type Scheduler struct {
	cache       *prayer.DailyCache
	tracker     *prayer.TriggerTracker
	clock       prayer.Clock
	broadcaster Broadcaster
	presence    PresenceUpdater
	metrics     *observability.Metrics
	opts        Options
}

func New(cache *prayer.DailyCache, tracker *prayer.TriggerTracker, clock prayer.Clock, b Broadcaster, presence PresenceUpdater, metrics *observability.Metrics, opts Options) *Scheduler {
	if opts.RetentionDays < 1 {
		opts.RetentionDays = 1
	}
	return &Scheduler{
		cache:       cache,
		tracker:     tracker,
		clock:       clock,
		broadcaster: b,
		presence:    presence,
		metrics:     metrics,
		opts:        opts,
	}
}

// Run blocks until ctx is cancelled. Both loops run once immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("scheduler started",
		"lead_minutes", s.opts.LeadMinutes,
		"poll_interval", s.opts.PollInterval,
		"status_interval", s.opts.StatusInterval,
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.loop(ctx, s.opts.PollInterval, func() { s.Poll(ctx) })
	}()
	go func() {
		defer wg.Done()
		s.loop(ctx, s.opts.StatusInterval, func() { s.UpdateStatus(ctx) })
	}()
	wg.Wait()
	slog.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, tick func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.safely(tick)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.safely(tick)
		}
	}
}

func (s *Scheduler) safely(tick func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduler cycle panicked", "panic", r)
		}
	}()
	tick()
}

// Poll runs one cycle of the poll loop and returns the prayers it fired.
func (s *Scheduler) Poll(ctx context.Context) []prayer.Name {
	now := s.clock.Now()
	sched, err := s.cache.EnsureFresh(ctx, now)
	if err != nil {
		slog.Error("prayer schedule unavailable; skipping poll cycle", "error", err)
		return nil
	}
	defer s.prune(now)

	nowMin := prayer.MinuteOfDayAt(now)
	var fired []prayer.Name
	for _, p := range sched.Prayers() {
		m, ok := prayer.ParseClock(p.Time)
		if !ok {
			continue
		}
		if m-nowMin != s.opts.LeadMinutes {
			continue
		}
		key := prayer.NewTriggerKey(now, p.Name)
		if s.tracker.HasFired(key) {
			continue
		}
		s.tracker.MarkFired(key)
		s.metrics.ObserveTrigger(string(p.Name))
		slog.Info("announcement triggered", "prayer", string(p.Name), "prayer_time", p.Time, "trigger_key", key.String())
		s.broadcaster.Launch(ctx, broadcast.Scheduled(p.Name))
		fired = append(fired, p.Name)
	}
	return fired
}

func (s *Scheduler) prune(now time.Time) {
	cutoff := now.AddDate(0, 0, -(s.opts.RetentionDays - 1)).Format(prayer.DateLayout)
	if n := s.tracker.PruneBefore(cutoff); n > 0 {
		slog.Debug("pruned fired trigger keys", "removed", n, "cutoff", cutoff)
	}
}

// UpdateStatus publishes the next prayer. It returns the published text, or
// an empty string when nothing was published.
func (s *Scheduler) UpdateStatus(ctx context.Context) string {
	now := s.clock.Now()
	sched, err := s.cache.EnsureFresh(ctx, now)
	if err != nil {
		slog.Warn("prayer schedule unavailable; status not updated", "error", err)
		return ""
	}
	next := prayer.NextPrayer(sched, now)
	text := presenceText(next)
	if err := s.presence.UpdatePresence(text); err != nil {
		slog.Error("failed to update presence", "error", err)
		return ""
	}
	slog.Debug("presence updated", "prayer", string(next.Name), "prayer_time", next.Time)
	return text
}
