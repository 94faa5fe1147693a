package broadcast

import (
	"github.com/foxseedlab/adhan/internal/audio"
	"github.com/foxseedlab/adhan/internal/config"
	"github.com/foxseedlab/adhan/internal/discord"
	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/foxseedlab/adhan/internal/repository"
	"github.com/foxseedlab/adhan/internal/webhook"
	"github.com/samber/do/v2"
)

// RegisterDI expects the loaded *audio.Asset to be provided as a value.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Orchestrator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		asset := do.MustInvoke[*audio.Asset](i)
		repo := do.MustInvoke[repository.Repository](i)
		wh := do.MustInvoke[webhook.Sender](i)
		metrics := do.MustInvoke[*observability.Metrics](i)
		return NewOrchestrator(dc, asset, repo, wh, metrics, Options{
			ReadyTimeout: cfg.VoiceReadyTimeout,
			Location:     cfg.Location(),
		}), nil
	})
}
