package render

import (
	"github.com/foxseedlab/adhan/internal/config"
	"github.com/foxseedlab/adhan/internal/render"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (render.CardRenderer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewCardRenderer(Options{
			BackgroundPath: c.PrayerImageBackground,
			FontPath:       c.PrayerImageFont,
		})
	})
}
