// internal/db/schedules.go
package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

const scheduleColumns = `
	sc.id, sc.name, sc.start_time, sc.end_time, sc.repeat_days,
	sc.start_date, sc.end_date, sc.priority, sc.is_active,
	sc.playlist_id, sc.layout_id, sc.orientation, sc.created_at, sc.updated_at`

// ListActiveSchedulesForDisplay returns the enabled schedules linked to the
// display. Day, date and time-of-day are left to the caller.
func (s queries) ListActiveSchedulesForDisplay(ctx context.Context, displayID int) ([]model.Schedule, error) {
	out := []model.Schedule{}
	q := `
	SELECT ` + scheduleColumns + `
	  FROM schedules sc
	  JOIN schedule_displays sd ON sd.schedule_id = sc.id
	 WHERE sd.display_id = $1
	   AND sc.is_active = TRUE
	 ORDER BY sc.id;`
	if err := sqlx.SelectContext(ctx, s.q, &out, q, displayID); err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("ListActiveSchedulesForDisplay failed")
		return nil, err
	}
	return out, nil
}

// ListSchedulesForDisplay returns every linked schedule, disabled ones included.
func (s queries) ListSchedulesForDisplay(ctx context.Context, displayID int) ([]model.Schedule, error) {
	out := []model.Schedule{}
	q := `
	SELECT ` + scheduleColumns + `
	  FROM schedules sc
	  JOIN schedule_displays sd ON sd.schedule_id = sc.id
	 WHERE sd.display_id = $1
	 ORDER BY sc.priority DESC, sc.id;`
	if err := sqlx.SelectContext(ctx, s.q, &out, q, displayID); err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("ListSchedulesForDisplay failed")
		return nil, err
	}
	return out, nil
}
