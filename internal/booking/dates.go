package booking

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrDateFormat     = errors.New("date must be formatted as YYYY-MM-DD")
	ErrDateOutOfRange = errors.New("date outside the booking window")
	ErrSunday         = errors.New("closed on Sundays")
)

// dateWindow is the inclusive range of bookable days.
type dateWindow struct {
	min time.Time
	max time.Time
}

func newDateWindow(now time.Time, loc *time.Location, months int) dateWindow {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return dateWindow{min: today, max: today.AddDate(0, months, 0)}
}

// check parses raw and applies the client-side guard. The server stays the
// final authority on whether a day is bookable.
func (w dateWindow) check(raw string) (time.Time, error) {
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	if day.Before(w.min) || day.After(w.max) {
		return time.Time{}, ErrDateOutOfRange
	}
	if day.Weekday() == time.Sunday {
		return time.Time{}, ErrSunday
	}
	return day, nil
}

func (w dateWindow) rejection(err error) string {
	switch {
	case errors.Is(err, ErrSunday):
		return "We are closed on Sundays. Please choose another day."
	case errors.Is(err, ErrDateOutOfRange):
		return fmt.Sprintf("Please choose a date between %s and %s.", w.min.Format(dateLayout), w.max.Format(dateLayout))
	default:
		return "Please enter a valid date."
	}
}

func (w dateWindow) bounds() DateBounds {
	return DateBounds{Min: w.min.Format(dateLayout), Max: w.max.Format(dateLayout)}
}
