package scheduler

import (
	"fmt"

	"github.com/foxseedlab/adhan/internal/prayer"
)

const presenceFormat = "يترقب صلاة %s %s"

func presenceText(p prayer.Prayer) string {
	return fmt.Sprintf(presenceFormat, p.Name.ArabicName(), p.Time)
}
