// Package clock converts naive wall-clock times into absolute instants for a
// named timezone.
package clock

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Zone rules even on hosts without a zoneinfo database

	"github.com/harrisonrobin/tasknotify/pkg/model"
)

// ISOLayout is the UTC layout sent to providers, millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// LocalDateTime is a calendar date and time of day with no offset attached.
type LocalDateTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// WallClock takes the wall-clock fields of t in its own location.
func WallClock(t time.Time) LocalDateTime {
	return LocalDateTime{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// ParseLocal parses "2006-01-02 15:04" or "2006-01-02 15:04:05".
func ParseLocal(s string) (LocalDateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return WallClock(t), nil
		}
	}
	return LocalDateTime{}, model.Fail(model.KindValidation, "parse date", fmt.Errorf("unrecognized date-time %q", s))
}

// Validate rejects fields that do not name a real calendar date and time.
func (l LocalDateTime) Validate() error {
	switch {
	case l.Month < time.January || l.Month > time.December:
		return l.invalid("month")
	case l.Day < 1 || l.Day > daysIn(l.Year, l.Month):
		return l.invalid("day")
	case l.Hour < 0 || l.Hour > 23:
		return l.invalid("hour")
	case l.Minute < 0 || l.Minute > 59:
		return l.invalid("minute")
	case l.Second < 0 || l.Second > 59:
		return l.invalid("second")
	}
	return nil
}

func (l LocalDateTime) invalid(field string) error {
	return model.Fail(model.KindValidation, "zoned instant", fmt.Errorf("%w: %s out of range in %s", model.ErrInvalidDate, field, l))
}

func (l LocalDateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", l.Year, int(l.Month), l.Day, l.Hour, l.Minute, l.Second)
}

// In reinterprets the wall clock as belonging to loc and returns the UTC instant.
// Times inside a DST gap move forward by the gap. Ambiguous times repeated by a
// fall-back resolve to the later instant, the one after the transition.
func (l LocalDateTime) In(loc *time.Location) (time.Time, error) {
	if err := l.Validate(); err != nil {
		return time.Time{}, err
	}

	wall := time.Date(l.Year, l.Month, l.Day, l.Hour, l.Minute, l.Second, 0, time.UTC)
	guess := time.Date(l.Year, l.Month, l.Day, l.Hour, l.Minute, l.Second, 0, loc)
	_, before := guess.Add(-12 * time.Hour).Zone()
	_, after := guess.Add(12 * time.Hour).Zone()

	var resolved time.Time
	for _, offset := range []int{before, after} {
		u := wall.Add(-time.Duration(offset) * time.Second)
		if WallClock(u.In(loc)) == l && u.After(resolved) {
			resolved = u
		}
	}
	if resolved.IsZero() {
		// Gap: read the wall clock with the offset in force before the jump.
		resolved = wall.Add(-time.Duration(before) * time.Second)
	}
	return resolved.UTC(), nil
}

// ToZonedInstant resolves zoneID and reinterprets local in it.
func ToZonedInstant(local LocalDateTime, zoneID string) (time.Time, error) {
	loc, err := LoadZone(zoneID)
	if err != nil {
		return time.Time{}, err
	}
	return local.In(loc)
}

// LoadZone resolves an IANA zone name. "Local" is the host zone and "" means UTC.
func LoadZone(zoneID string) (*time.Location, error) {
	switch zoneID {
	case "", "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return nil, model.Fail(model.KindValidation, "load zone", err)
	}
	return loc, nil
}

// FormatISO renders t as a UTC ISO-8601 timestamp.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
