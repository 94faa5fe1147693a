package observability

import (
	"github.com/foxseedlab/adhan/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Metrics, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewMetrics(c.MetricsNamespace), nil
	})
}
