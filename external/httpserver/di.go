package httpserver

import (
	"github.com/foxseedlab/adhan/internal/config"
	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/foxseedlab/adhan/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return New(
			cfg.HTTPBindAddr,
			do.MustInvoke[*prayer.DailyCache](i),
			do.MustInvoke[prayer.Clock](i),
			do.MustInvoke[*observability.Metrics](i),
			do.MustInvoke[repository.Repository](i),
		), nil
	})
}
