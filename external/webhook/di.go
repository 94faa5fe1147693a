package webhook

import (
	"log/slog"

	"github.com/foxseedlab/adhan/internal/config"
	"github.com/foxseedlab/adhan/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (webhook.Sender, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.BroadcastWebhookURL == "" {
			slog.Info("BROADCAST_WEBHOOK_URL is empty; broadcast webhook disabled")
		}
		return NewBroadcastSender(Options{URL: c.BroadcastWebhookURL}), nil
	})
}
