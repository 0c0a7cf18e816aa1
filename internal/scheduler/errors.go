package scheduler

import "errors"

// Sentinel errors for the scheduler package.
// Use errors.Is to check: errors.Is(err, scheduler.ErrSuspendedCard)
var (
	ErrSuspendedCard = errors.New("scheduler: cannot schedule a suspended card")
	ErrBuriedCard    = errors.New("scheduler: cannot schedule a buried card")
	ErrStaleSchedule = errors.New("scheduler: schedule was modified concurrently")
)
