package aladhan

import (
	"github.com/foxseedlab/adhan/internal/config"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (prayer.TimeSource, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewClient(Options{
			BaseURL:   c.PrayerAPIBaseURL,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			Method:    c.CalculationMethod,
			Timeout:   c.PrayerAPITimeout,
		}), nil
	})
}
