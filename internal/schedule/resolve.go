package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// Source is the read access the resolver needs. db.Reader satisfies it.
type Source interface {
	ListActiveSchedulesForDisplay(ctx context.Context, displayID int) ([]model.Schedule, error)
	GetLayoutByID(ctx context.Context, id int) (model.Layout, error)
	GetPlaylistByID(ctx context.Context, id int) (model.Playlist, error)
}

const (
	SourceSchedule = "schedule"
	SourceLayout   = "layout"
	SourcePlaylist = "playlist"
	SourceNone     = "none"
)

// ReasonMissingContent marks a winning schedule whose content row is gone.
const ReasonMissingContent Reason = "missing_content"

// Resolution is what a display should be showing. It is one of
// ActiveSchedule, DirectLayout, DirectPlaylist or NoContent.
type Resolution interface {
	Source() string
	isResolution()
}

// ActiveSchedule carries the winning schedule and exactly one of Layout or
// Playlist.
type ActiveSchedule struct {
	Schedule model.Schedule
	Layout   *model.Layout
	Playlist *model.Playlist
}

type DirectLayout struct {
	Layout model.Layout
}

type DirectPlaylist struct {
	Playlist model.Playlist
}

type NoContent struct{}

func (ActiveSchedule) Source() string { return SourceSchedule }
func (DirectLayout) Source() string   { return SourceLayout }
func (DirectPlaylist) Source() string { return SourcePlaylist }
func (NoContent) Source() string      { return SourceNone }

func (ActiveSchedule) isResolution() {}
func (DirectLayout) isResolution()   {}
func (DirectPlaylist) isResolution() {}
func (NoContent) isResolution()      {}

// Resolve decides what display shows at m: the winning schedule's content,
// else the display's own layout, else its own playlist, else nothing.
// Only storage failures are returned as errors; dangling references fall
// through to the next tier.
func Resolve(ctx context.Context, src Source, display model.Display, m Moment) (Resolution, error) {
	candidates, err := src.ListActiveSchedulesForDisplay(ctx, display.ID)
	if err != nil {
		return nil, fmt.Errorf("load schedules for display %d: %w", display.ID, err)
	}
	eligible, _ := Filter(candidates, m)
	winner, ok := Arbitrate(eligible)
	return fallback(ctx, src, display, winner, ok)
}

// Explanation is the resolver's reasoning for one display at one moment.
type Explanation struct {
	Moment     Moment
	Verdicts   []Verdict
	Resolution Resolution
}

// Explain runs the same decision as Resolve over an unfiltered schedule list
// and reports a verdict for every schedule, including the ones that lost.
func Explain(ctx context.Context, src Source, display model.Display, all []model.Schedule, m Moment) (Explanation, error) {
	eligible, verdicts := Filter(all, m)
	winner, ok := Arbitrate(eligible)

	res, err := fallback(ctx, src, display, winner, ok)
	if err != nil {
		return Explanation{}, err
	}

	_, won := res.(ActiveSchedule)
	for i := range verdicts {
		if verdicts[i].Reason != ReasonEligible {
			continue
		}
		switch {
		case ok && verdicts[i].Schedule.ID == winner.ID && won:
			verdicts[i].Reason = ReasonWinner
		case ok && verdicts[i].Schedule.ID == winner.ID:
			verdicts[i].Reason = ReasonMissingContent
		default:
			verdicts[i].Reason = ReasonLostPriority
		}
	}

	return Explanation{Moment: m, Verdicts: verdicts, Resolution: res}, nil
}

func fallback(ctx context.Context, src Source, display model.Display, winner model.Schedule, hasWinner bool) (Resolution, error) {
	if hasWinner {
		res, found, err := scheduledContent(ctx, src, winner)
		if err != nil {
			return nil, err
		}
		if found {
			return res, nil
		}
		log.Debug().Int("display_id", display.ID).Int("schedule_id", winner.ID).
			Msg("winning schedule has no resolvable content, falling back to direct assignment")
	}

	if display.LayoutID != nil {
		l, err := src.GetLayoutByID(ctx, *display.LayoutID)
		switch {
		case err == nil:
			return DirectLayout{Layout: l}, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("load layout %d for display %d: %w", *display.LayoutID, display.ID, err)
		}
	}

	if display.PlaylistID != nil {
		p, err := src.GetPlaylistByID(ctx, *display.PlaylistID)
		switch {
		case err == nil:
			return DirectPlaylist{Playlist: p}, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("load playlist %d for display %d: %w", *display.PlaylistID, display.ID, err)
		}
	}

	return NoContent{}, nil
}

// scheduledContent resolves the schedule's single content reference. The
// layout is used when both references are set.
func scheduledContent(ctx context.Context, src Source, s model.Schedule) (Resolution, bool, error) {
	if s.LayoutID != nil && s.PlaylistID != nil {
		log.Warn().Int("schedule_id", s.ID).Int("layout_id", *s.LayoutID).Int("playlist_id", *s.PlaylistID).
			Msg("schedule references both a layout and a playlist, using the layout")
	}

	switch {
	case s.LayoutID != nil:
		l, err := src.GetLayoutByID(ctx, *s.LayoutID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("load layout %d for schedule %d: %w", *s.LayoutID, s.ID, err)
		}
		return ActiveSchedule{Schedule: s, Layout: &l}, true, nil

	case s.PlaylistID != nil:
		p, err := src.GetPlaylistByID(ctx, *s.PlaylistID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("load playlist %d for schedule %d: %w", *s.PlaylistID, s.ID, err)
		}
		return ActiveSchedule{Schedule: s, Playlist: &p}, true, nil
	}
	return nil, false, nil
}
