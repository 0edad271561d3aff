package generator

import "time"

// violatesCausality reports whether a dependent row timestamped at would
// predate its owner's registration. Such candidates are discarded and
// resampled, never clamped.
func violatesCausality(ownerRegisteredAt, at time.Time) bool {
	return at.Before(ownerRegisteredAt)
}
