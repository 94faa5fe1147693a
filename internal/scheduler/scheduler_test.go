package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/adhan/internal/broadcast"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeTimeSource struct {
	mu       sync.Mutex
	schedule prayer.Schedule
	err      error
	calls    int
}

func (f *fakeTimeSource) Fetch(_ context.Context, _ time.Time) (prayer.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return prayer.Schedule{}, f.err
	}
	return f.schedule, nil
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	triggers []broadcast.Trigger
}

func (f *fakeBroadcaster) Launch(_ context.Context, trigger broadcast.Trigger) <-chan broadcast.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	done := make(chan broadcast.Result, 1)
	done <- broadcast.Result{Trigger: trigger}
	close(done)
	return done
}

func (f *fakeBroadcaster) launched() []broadcast.Trigger {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]broadcast.Trigger(nil), f.triggers...)
}

type fakePresence struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakePresence) UpdatePresence(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakePresence) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func at(day, hour, minute, second int) time.Time {
	return time.Date(2026, 10, day, hour, minute, second, 0, time.UTC)
}

func testSchedule() prayer.Schedule {
	return prayer.Schedule{Times: map[prayer.Name]string{
		prayer.Fajr:    "05:10",
		prayer.Dhuhr:   "12:30",
		prayer.Asr:     "15:45",
		prayer.Maghrib: "18:20",
		prayer.Isha:    "19:50",
	}}
}

type harness struct {
	clock    *fakeClock
	source   *fakeTimeSource
	bc       *fakeBroadcaster
	presence *fakePresence
	tracker  *prayer.TriggerTracker
	s        *Scheduler
}

func newHarness(start time.Time) *harness {
	h := &harness{
		clock:    &fakeClock{now: start},
		source:   &fakeTimeSource{schedule: testSchedule()},
		bc:       &fakeBroadcaster{},
		presence: &fakePresence{},
		tracker:  prayer.NewTriggerTracker(),
	}
	h.s = New(prayer.NewDailyCache(h.source, nil), h.tracker, h.clock, h.bc, h.presence, nil, Options{
		LeadMinutes:    5,
		PollInterval:   10 * time.Millisecond,
		StatusInterval: 10 * time.Millisecond,
		RetentionDays:  2,
	})
	return h
}

func TestPoll_FiresExactlyAtThreshold(t *testing.T) {
	h := newHarness(at(18, 5, 5, 0))

	fired := h.s.Poll(context.Background())
	assert.Equal(t, []prayer.Name{prayer.Fajr}, fired)
	require.Len(t, h.bc.launched(), 1)
	assert.Equal(t, prayer.Fajr, h.bc.launched()[0].Prayer)
	assert.True(t, h.tracker.HasFired(prayer.TriggerKey{Date: "2026-10-18", Prayer: prayer.Fajr}))
}

func TestPoll_SecondTickInSameMinuteDoesNotRefire(t *testing.T) {
	h := newHarness(at(18, 5, 5, 0))
	h.s.Poll(context.Background())

	h.clock.set(at(18, 5, 5, 30))
	assert.Empty(t, h.s.Poll(context.Background()))
	assert.Len(t, h.bc.launched(), 1)
}

func TestPoll_MissedMinuteIsNotCaughtUp(t *testing.T) {
	h := newHarness(at(18, 5, 4, 30))
	assert.Empty(t, h.s.Poll(context.Background()))

	h.clock.set(at(18, 5, 6, 0))
	assert.Empty(t, h.s.Poll(context.Background()))
	assert.Empty(t, h.bc.launched())
}

func TestPoll_BeforeThresholdDoesNothing(t *testing.T) {
	h := newHarness(at(18, 5, 4, 59))
	assert.Empty(t, h.s.Poll(context.Background()))
	assert.Empty(t, h.bc.launched())
}

func TestPoll_UnavailablePrayerIsSkipped(t *testing.T) {
	h := newHarness(at(18, 19, 45, 0))
	h.source.schedule.Times[prayer.Isha] = prayer.Unavailable

	assert.Empty(t, h.s.Poll(context.Background()))
	assert.Empty(t, h.bc.launched())
}

func TestPoll_FetchFailureSkipsCycle(t *testing.T) {
	h := newHarness(at(18, 5, 5, 0))
	h.source.err = prayer.ErrTimeSource

	assert.Empty(t, h.s.Poll(context.Background()))
	assert.Empty(t, h.bc.launched())

	h.source.err = nil
	h.clock.set(at(18, 5, 5, 30))
	assert.Equal(t, []prayer.Name{prayer.Fajr}, h.s.Poll(context.Background()))
}

func TestPoll_NextDayFiresAgain(t *testing.T) {
	h := newHarness(at(18, 5, 5, 0))
	require.Len(t, h.s.Poll(context.Background()), 1)

	h.clock.set(at(19, 5, 5, 0))
	assert.Equal(t, []prayer.Name{prayer.Fajr}, h.s.Poll(context.Background()))
	assert.Len(t, h.bc.launched(), 2)
	assert.Equal(t, 2, h.source.calls)
}

func TestPoll_PrunesOldKeys(t *testing.T) {
	h := newHarness(at(18, 5, 5, 0))
	h.tracker.MarkFired(prayer.TriggerKey{Date: "2026-10-15", Prayer: prayer.Isha})
	h.tracker.MarkFired(prayer.TriggerKey{Date: "2026-10-17", Prayer: prayer.Isha})

	h.s.Poll(context.Background())

	assert.False(t, h.tracker.HasFired(prayer.TriggerKey{Date: "2026-10-15", Prayer: prayer.Isha}))
	assert.True(t, h.tracker.HasFired(prayer.TriggerKey{Date: "2026-10-17", Prayer: prayer.Isha}))
	assert.Equal(t, 2, h.tracker.Len())
}

func TestUpdateStatus_PublishesNearestPrayer(t *testing.T) {
	h := newHarness(at(18, 13, 0, 0))

	text := h.s.UpdateStatus(context.Background())
	assert.Equal(t, "يترقب صلاة العصر 15:45", text)
	assert.Equal(t, text, h.presence.last())
}

func TestUpdateStatus_AfterIshaFallsBackToFajr(t *testing.T) {
	h := newHarness(at(18, 22, 0, 0))
	assert.Equal(t, "يترقب صلاة الفجر 05:10", h.s.UpdateStatus(context.Background()))
}

func TestUpdateStatus_AfterIshaShowsFajrEvenWhenUnavailable(t *testing.T) {
	h := newHarness(at(18, 22, 0, 0))
	h.source.schedule.Times[prayer.Fajr] = prayer.Unavailable
	assert.Equal(t, "يترقب صلاة الفجر --:--", h.s.UpdateStatus(context.Background()))
}

func TestUpdateStatus_FetchFailureLeavesPresence(t *testing.T) {
	h := newHarness(at(18, 13, 0, 0))
	h.source.err = errors.New("timeout")
	assert.Empty(t, h.s.UpdateStatus(context.Background()))
	assert.Empty(t, h.presence.last())
}

func TestUpdateStatus_PresenceErrorIsSwallowed(t *testing.T) {
	h := newHarness(at(18, 13, 0, 0))
	h.presence.err = errors.New("gateway not ready")
	assert.Empty(t, h.s.UpdateStatus(context.Background()))
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := newHarness(at(18, 5, 5, 0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(h.bc.launched()) == 1 && h.presence.last() != ""
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Len(t, h.bc.launched(), 1)
}
