package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location falls back to DefaultTimezone, then UTC when tzdata is missing.
func Location(tz string) *time.Location {
	if loc, err := time.LoadLocation(tz); err == nil && tz != "" {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// Clock returns the service's notion of "now".
type Clock func() time.Time

func ClockIn(tz string) Clock {
	loc := Location(tz)
	return func() time.Time { return time.Now().In(loc) }
}

// Today is the current calendar date as YYYY-MM-DD.
func (c Clock) Today() string {
	return c().Format("2006-01-02")
}
