package player

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Nixie-Tech-LLC/marquee/internal/db"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/marquee/internal/metrics"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
	"github.com/Nixie-Tech-LLC/marquee/internal/schedule"
)

const dateLayout = "2006-01-02"

// Service answers player polls. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	store    db.Store
	clock    schedule.Clock
	enricher *Enricher
	metrics  *metrics.Metrics
}

func NewService(store db.Store, clock schedule.Clock, enricher *Enricher, m *metrics.Metrics) *Service {
	return &Service{store: store, clock: clock, enricher: enricher, metrics: m}
}

// Resolve decides what display shows right now. All reads happen in one
// read-only transaction that is closed before Resolve returns. Only Config
// counts toward the resolution metrics.
func (s *Service) Resolve(ctx context.Context, display model.Display) (schedule.Resolution, error) {
	m := s.clock.Now()

	var res schedule.Resolution
	err := s.store.View(ctx, func(r db.Reader) error {
		var err error
		res, err = schedule.Resolve(ctx, r, display, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Config builds the full device payload, including media enrichment.
func (s *Service) Config(ctx context.Context, display model.Display) (packets.PlayerConfigResponse, error) {
	res, err := s.Resolve(ctx, display)
	if err != nil {
		s.metrics.ObserveResolutionFailure()
		return packets.PlayerConfigResponse{}, err
	}
	s.metrics.ObserveResolution(res.Source())

	cfg := Format(res)
	s.enricher.Enrich(ctx, MediaOf(&cfg))
	return cfg, nil
}

// Diagnose reports every schedule linked to display, whether active or not,
// with the verdict it got at the current moment.
func (s *Service) Diagnose(ctx context.Context, display model.Display) (packets.DiagnosticsResponse, error) {
	m := s.clock.Now()

	var exp schedule.Explanation
	err := s.store.View(ctx, func(r db.Reader) error {
		all, err := r.ListSchedulesForDisplay(ctx, display.ID)
		if err != nil {
			return err
		}
		exp, err = schedule.Explain(ctx, r, display, all, m)
		return err
	})
	if err != nil {
		return packets.DiagnosticsResponse{}, err
	}

	out := packets.DiagnosticsResponse{
		Now: packets.NowResponse{
			Timezone: s.clock.Location().String(),
			Day:      m.Day,
			Clock:    m.Clock,
			Date:     m.Date,
		},
		Source:    exp.Resolution.Source(),
		Schedules: make([]packets.ScheduleVerdictResponse, 0, len(exp.Verdicts)),
	}
	if active, ok := exp.Resolution.(schedule.ActiveSchedule); ok {
		out.Winner = Summary(active.Schedule, active.Layout)
	}
	for _, v := range exp.Verdicts {
		out.Schedules = append(out.Schedules, verdictResponse(v))
	}
	return out, nil
}

func verdictResponse(v schedule.Verdict) packets.ScheduleVerdictResponse {
	s := v.Schedule
	out := packets.ScheduleVerdictResponse{
		ID:          s.ID,
		Name:        s.Name,
		Priority:    s.Priority,
		StartTime:   s.StartTime.String(),
		EndTime:     s.EndTime.String(),
		RepeatDays:  []string(s.RepeatDays),
		IsActive:    s.IsActive,
		ContentType: schedule.SourceNone,
		Verdict:     string(v.Reason),
	}
	if out.RepeatDays == nil {
		out.RepeatDays = []string{}
	}
	if s.StartDate != nil {
		d := s.StartDate.Format(dateLayout)
		out.StartDate = &d
	}
	if s.EndDate != nil {
		d := s.EndDate.Format(dateLayout)
		out.EndDate = &d
	}
	switch {
	case s.LayoutID != nil:
		out.ContentType = schedule.SourceLayout
		out.ContentID = s.LayoutID
	case s.PlaylistID != nil:
		out.ContentType = schedule.SourcePlaylist
		out.ContentID = s.PlaylistID
	}
	return out
}

// Fingerprint identifies the formatted content of a resolution. It changes
// whenever anything a screen would render changes.
func Fingerprint(res schedule.Resolution) (string, error) {
	body, err := json.Marshal(struct {
		Source string                       `json:"source"`
		Config packets.PlayerConfigResponse `json:"config"`
	}{res.Source(), Format(res)})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
