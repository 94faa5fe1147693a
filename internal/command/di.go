package command

import (
	"github.com/foxseedlab/adhan/internal/broadcast"
	"github.com/foxseedlab/adhan/internal/config"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/foxseedlab/adhan/internal/render"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewHandler(
			cfg.DiscordGuildID,
			do.MustInvoke[prayer.TimeSource](i),
			do.MustInvoke[prayer.Clock](i),
			do.MustInvoke[render.CardRenderer](i),
			do.MustInvoke[*broadcast.Orchestrator](i),
		), nil
	})
}
