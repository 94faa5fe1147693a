package prayer

import (
	"github.com/foxseedlab/adhan/internal/config"
	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/samber/do/v2"
)

// RegisterDI expects a TimeSource to be registered by an adapter.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (Clock, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return SystemClock{Location: cfg.Location()}, nil
	})
	do.Provide(injector, func(i do.Injector) (*DailyCache, error) {
		source := do.MustInvoke[TimeSource](i)
		metrics := do.MustInvoke[*observability.Metrics](i)
		return NewDailyCache(source, metrics.ObserveFetch), nil
	})
	do.Provide(injector, func(i do.Injector) (*TriggerTracker, error) {
		return NewTriggerTracker(), nil
	})
}
