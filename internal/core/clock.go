package core

import "time"

// Clock supplies "today" for the reporting windows.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock in Location, or the server's local
// zone when Location is nil.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() Date {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return DateOf(now)
}

// FixedClock always reports the same date.
type FixedClock Date

func (c FixedClock) Today() Date {
	return Date(c)
}

// Resolve returns asOf, or the clock's today when asOf is zero.
func Resolve(c Clock, asOf Date) Date {
	if !asOf.IsZero() {
		return asOf
	}
	if c == nil {
		c = SystemClock{}
	}
	return c.Today()
}
