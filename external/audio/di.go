package audio

import (
	"github.com/foxseedlab/adhan/internal/audio"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.Loader, error) {
		return NewFileLoader(), nil
	})
}
