package dates

import "time"

// Clock supplies the current instant. Everything that needs "now" or
// "today" takes one so that tests can pin time.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// SystemClock reads the wall clock and reports it in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	t time.Time
}

func FixedClock(t time.Time) Clock {
	return fixedClock{t: t}
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// Today is the calendar day of c.Now() in the clock's location.
func Today(c Clock) Date {
	return Of(c.Now())
}

func IsToday(c Clock, d Date) bool {
	return Today(c).Equal(d)
}

// Location returns the zone the clock reports in.
func Location(c Clock) *time.Location {
	return c.Now().Location()
}
