package model

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Schedule binds one piece of content to a recurring day-of-week window.
// Exactly one of LayoutID/PlaylistID is expected to be set; when both are,
// the layout wins.
type Schedule struct {
	ID          int            `db:"id"           json:"id"`
	Name        string         `db:"name"         json:"name"`
	StartTime   ClockTime      `db:"start_time"   json:"start_time"`
	EndTime     ClockTime      `db:"end_time"     json:"end_time"`
	RepeatDays  pq.StringArray `db:"repeat_days"  json:"repeat_days"`
	StartDate   *time.Time     `db:"start_date"   json:"start_date"`
	EndDate     *time.Time     `db:"end_date"     json:"end_date"`
	Priority    int            `db:"priority"     json:"priority"`
	IsActive    bool           `db:"is_active"    json:"is_active"`
	PlaylistID  *int           `db:"playlist_id"  json:"playlist_id"`
	LayoutID    *int           `db:"layout_id"    json:"layout_id"`
	Orientation *string        `db:"orientation"  json:"orientation"`
	CreatedAt   time.Time      `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"   json:"updated_at"`
}

// ClockTime is a time of day in "HH:MM" form. Postgres TIME columns arrive
// from lib/pq as a time.Time on day zero; only the clock part is kept.
type ClockTime string

func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c = ClockTime(v.Format("15:04"))
	case []byte:
		*c = ClockTime(v)
	case string:
		*c = ClockTime(v)
	case nil:
		*c = ""
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
	return nil
}

func (c ClockTime) String() string { return string(c) }
