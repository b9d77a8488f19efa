package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// Reason explains why a schedule did or did not win.
type Reason string

const (
	ReasonEligible      Reason = "eligible"
	ReasonWinner        Reason = "winner"
	ReasonLostPriority  Reason = "lost_priority"
	ReasonInactive      Reason = "inactive"
	ReasonNoRepeatDays  Reason = "no_repeat_days"
	ReasonDayMismatch   Reason = "day_mismatch"
	ReasonNotStarted    Reason = "not_started"
	ReasonExpired       Reason = "expired"
	ReasonInvalidWindow Reason = "invalid_window"
	ReasonOvernight     Reason = "overnight_window"
	ReasonOutsideWindow Reason = "outside_window"
)

// Verdict pairs a schedule with the reason it was kept or rejected.
type Verdict struct {
	Schedule model.Schedule
	Reason   Reason
}

// Evaluate judges a single schedule against m. Checks run in a fixed order
// so the first failing constraint is the one reported.
func Evaluate(s model.Schedule, m Moment) Reason {
	if !s.IsActive {
		return ReasonInactive
	}
	if len(s.RepeatDays) == 0 {
		return ReasonNoRepeatDays
	}
	if !repeatsOn(s.RepeatDays, m.Day) {
		return ReasonDayMismatch
	}
	if s.StartDate != nil && calendarDate(*s.StartDate) > m.Date {
		return ReasonNotStarted
	}
	if s.EndDate != nil && m.Date > calendarDate(*s.EndDate) {
		return ReasonExpired
	}

	start, err := parseClock(s.StartTime.String())
	if err != nil {
		return ReasonInvalidWindow
	}
	end, err := parseClock(s.EndTime.String())
	if err != nil {
		return ReasonInvalidWindow
	}
	if start > end {
		return ReasonOvernight
	}
	if m.Minutes < start || m.Minutes > end {
		return ReasonOutsideWindow
	}
	return ReasonEligible
}

// Filter keeps the candidates that are eligible at m, in input order, and
// returns a verdict for every candidate.
func Filter(candidates []model.Schedule, m Moment) ([]model.Schedule, []Verdict) {
	eligible := make([]model.Schedule, 0, len(candidates))
	verdicts := make([]Verdict, 0, len(candidates))
	for _, s := range candidates {
		r := Evaluate(s, m)
		verdicts = append(verdicts, Verdict{Schedule: s, Reason: r})
		if r == ReasonEligible {
			eligible = append(eligible, s)
		}
	}
	return eligible, verdicts
}

func repeatsOn(days []string, day string) bool {
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

// calendarDate takes the date components as stored. DATE columns come back
// as midnight UTC; converting them into the display zone first would shift
// west-of-UTC dates back by a day.
func calendarDate(t time.Time) string {
	return t.Format(dateLayout)
}

// parseClock turns "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are ignored.
func parseClock(v string) (int, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}
