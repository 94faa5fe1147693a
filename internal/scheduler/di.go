package scheduler

import (
	"github.com/foxseedlab/adhan/internal/broadcast"
	"github.com/foxseedlab/adhan/internal/config"
	"github.com/foxseedlab/adhan/internal/discord"
	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return New(
			do.MustInvoke[*prayer.DailyCache](i),
			do.MustInvoke[*prayer.TriggerTracker](i),
			do.MustInvoke[prayer.Clock](i),
			do.MustInvoke[*broadcast.Orchestrator](i),
			do.MustInvoke[discord.Client](i),
			do.MustInvoke[*observability.Metrics](i),
			Options{
				LeadMinutes:    cfg.AnnouncementLeadMinutes,
				PollInterval:   cfg.PollInterval,
				StatusInterval: cfg.StatusInterval,
				RetentionDays:  cfg.TriggerRetentionDays,
			},
		), nil
	})
}
