package prayer

import (
	"sync"
	"time"
)

// TriggerKey identifies one prayer on one calendar day.
type TriggerKey struct {
	Date   string
	Prayer Name
}

func NewTriggerKey(now time.Time, name Name) TriggerKey {
	return TriggerKey{Date: now.Format(DateLayout), Prayer: name}
}

func (k TriggerKey) String() string {
	return k.Date + "-" + string(k.Prayer)
}

// TriggerTracker records which prayer announcements have been started.
// Keys embed the date, so an old key can never suppress a later day's trigger.
type TriggerTracker struct {
	mu    sync.Mutex
	fired map[TriggerKey]struct{}
}

func NewTriggerTracker() *TriggerTracker {
	return &TriggerTracker{fired: make(map[TriggerKey]struct{})}
}

func (t *TriggerTracker) HasFired(key TriggerKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.fired[key]
	return ok
}

func (t *TriggerTracker) MarkFired(key TriggerKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fired[key] = struct{}{}
}

// PruneBefore drops keys whose date sorts before cutoff (DateLayout) and returns how many were removed.
func (t *TriggerTracker) PruneBefore(cutoff string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for k := range t.fired {
		if k.Date < cutoff {
			delete(t.fired, k)
			removed++
		}
	}
	return removed
}

func (t *TriggerTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.fired)
}
