package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the current time for audit timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// New returns a Clock backed by the wall clock, always in UTC.
func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
