package prayer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchObserver is notified of every external fetch outcome.
type FetchObserver func(err error)

// DailyCache keeps the schedule of a single calendar day and refreshes it at most
// once per day. Concurrent refreshes for the same day share one fetch.
type DailyCache struct {
	source  TimeSource
	observe FetchObserver

	group singleflight.Group

	mu       sync.RWMutex
	schedule Schedule
	date     string
	loaded   bool
}

func NewDailyCache(source TimeSource, observe FetchObserver) *DailyCache {
	return &DailyCache{source: source, observe: observe}
}

// EnsureFresh returns the schedule for now's calendar day, calling the time source
// only when the cached entry belongs to another day. A failed fetch keeps the
// previous entry in place and returns the error.
func (c *DailyCache) EnsureFresh(ctx context.Context, now time.Time) (Schedule, error) {
	date := now.Format(DateLayout)

	c.mu.RLock()
	if c.loaded && c.date == date {
		s := c.schedule
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(date, func() (any, error) {
		c.mu.RLock()
		if c.loaded && c.date == date {
			s := c.schedule
			c.mu.RUnlock()
			return s, nil
		}
		c.mu.RUnlock()

		s, err := c.source.Fetch(ctx, now)
		if c.observe != nil {
			c.observe(err)
		}
		if err != nil {
			return Schedule{}, err
		}
		c.mu.Lock()
		c.schedule = s
		c.date = date
		c.loaded = true
		c.mu.Unlock()
		slog.Info("prayer schedule refreshed", "date", date, "calendar_label", s.CalendarLabel, "times", s.Times)
		return s, nil
	})
	if err != nil {
		return Schedule{}, fmt.Errorf("refresh schedule for %s: %w", date, err)
	}
	return v.(Schedule), nil
}

// Current returns the cached schedule and the date it was fetched for, if any.
func (c *DailyCache) Current() (Schedule, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schedule, c.date, c.loaded
}
