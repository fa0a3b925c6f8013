package utils

import "time"

// StoreOptions are shared by the in-memory stores
type StoreOptions struct {
	// Clock decides what "today" is; nil means the system clock
	Clock Clock
	// Latency is an artificial delay applied to every store call
	Latency time.Duration
}

// Now returns the current time from the configured clock
func (o StoreOptions) Now() time.Time {
	if o.Clock == nil {
		return SystemClock()
	}
	return o.Clock()
}

// Today returns the configured clock's date as YYYY-MM-DD
func (o StoreOptions) Today() string {
	return FormatDate(o.Now())
}
