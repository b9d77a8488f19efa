package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Moment is one instant seen from the configured civil timezone. A single
// Moment is computed per request and every schedule is judged against it.
type Moment struct {
	Instant time.Time
	Day     string // lower-case weekday name
	Clock   string // HH:MM
	Date    string // YYYY-MM-DD
	Minutes int    // minutes since local midnight
}

// Normalize converts now into loc's calendar day, clock and date.
func Normalize(now time.Time, loc *time.Location) Moment {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return Moment{
		Instant: local,
		Day:     strings.ToLower(local.Weekday().String()),
		Clock:   local.Format(clockLayout),
		Date:    local.Format(dateLayout),
		Minutes: local.Hour()*60 + local.Minute(),
	}
}

// Clock yields the current Moment.
type Clock interface {
	Now() Moment
	Location() *time.Location
}

// ZoneClock reads the system clock and normalizes it into a fixed zone.
type ZoneClock struct {
	loc *time.Location
	now func() time.Time
}

func NewZoneClock(loc *time.Location) *ZoneClock {
	if loc == nil {
		loc = time.UTC
	}
	return &ZoneClock{loc: loc, now: time.Now}
}

// LoadZoneClock resolves an IANA zone name such as "Europe/Berlin".
func LoadZoneClock(name string) (*ZoneClock, error) {
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return NewZoneClock(loc), nil
}

// WithNow returns a copy of the clock that reads time from now.
func (c *ZoneClock) WithNow(now func() time.Time) *ZoneClock {
	return &ZoneClock{loc: c.loc, now: now}
}

func (c *ZoneClock) Now() Moment {
	return Normalize(c.now(), c.loc)
}

func (c *ZoneClock) Location() *time.Location {
	return c.loc
}
