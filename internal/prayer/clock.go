package prayer

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock reports wall time in a fixed location so that calendar days and
// minute offsets follow the configured prayer timezone rather than the host's.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
