package engine

import "time"

// Clock supplies the current time. Injecting it keeps the historical-window
// validation deterministic in tests.
type Clock interface {
	Now() time.Time
}

// realClock uses the system clock.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
