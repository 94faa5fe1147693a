package audio

import "time"

// Asset is an announcement clip already encoded as 20ms opus frames.
type Asset struct {
	Name          string
	Frames        [][]byte
	FrameDuration time.Duration
}

func (a *Asset) Duration() time.Duration {
	if a == nil {
		return 0
	}
	return time.Duration(len(a.Frames)) * a.FrameDuration
}

type Loader interface {
	Load(path string) (*Asset, error)
}
