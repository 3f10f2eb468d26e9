package appointment

import (
	"time"

	"github.com/BruksfildServices01/barberflow/internal/httperr"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Slot is the unit of booking exclusivity for one barber.
type Slot struct {
	BarberID uint
	Date     string
	Time     string
}

// ParseDate returns d in canonical form, so stored dates compare lexically.
func ParseDate(d string) (string, error) {
	t, err := time.Parse(DateLayout, d)
	if err != nil {
		return "", httperr.ErrBusiness("invalid_date")
	}
	return t.Format(DateLayout), nil
}

// ParseTime returns hm in canonical zero-padded 24h form.
func ParseTime(hm string) (string, error) {
	t, err := time.Parse(TimeLayout, hm)
	if err != nil {
		return "", httperr.ErrBusiness("invalid_time")
	}
	return t.Format(TimeLayout), nil
}

// ParseDateTime validates both parts and reports a single error code.
func ParseDateTime(d, hm string) (string, string, error) {
	date, err := ParseDate(d)
	if err != nil {
		return "", "", httperr.ErrBusiness("invalid_date_or_time")
	}
	clock, err := ParseTime(hm)
	if err != nil {
		return "", "", httperr.ErrBusiness("invalid_date_or_time")
	}
	return date, clock, nil
}
