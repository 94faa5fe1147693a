package render

import "github.com/foxseedlab/adhan/internal/prayer"

// CardRenderer draws a day's schedule as a PNG image.
type CardRenderer interface {
	Render(s prayer.Schedule) ([]byte, error)
}
