package player

import (
	"strings"

	"github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
	"github.com/Nixie-Tech-LLC/marquee/internal/schedule"
)

const (
	DefaultOrientation  = "LANDSCAPE"
	DefaultResizeMode   = "FIT"
	DefaultRotation     = 0
	DefaultItemDuration = 10 // seconds
)

// Format turns a resolution into the device payload. Media enrichment is a
// separate step.
func Format(res schedule.Resolution) packets.PlayerConfigResponse {
	var out packets.PlayerConfigResponse

	switch r := res.(type) {
	case schedule.ActiveSchedule:
		if r.Layout != nil {
			out.Layout = FormatLayout(*r.Layout)
		} else if r.Playlist != nil {
			out.Playlist = FormatPlaylist(*r.Playlist)
		}
		out.ActiveSchedule = Summary(r.Schedule, r.Layout)
	case schedule.DirectLayout:
		out.Layout = FormatLayout(r.Layout)
	case schedule.DirectPlaylist:
		out.Playlist = FormatPlaylist(r.Playlist)
	case schedule.NoContent, nil:
	}

	return out
}

// Summary describes the winning schedule. Orientation comes from the
// schedule, then the layout it shows, then the default.
func Summary(s model.Schedule, layout *model.Layout) *packets.ActiveScheduleResponse {
	orientation := DefaultOrientation
	if layout != nil && strings.TrimSpace(layout.Orientation) != "" {
		orientation = layout.Orientation
	}
	if s.Orientation != nil && strings.TrimSpace(*s.Orientation) != "" {
		orientation = *s.Orientation
	}
	return &packets.ActiveScheduleResponse{
		ID:          s.ID,
		Name:        s.Name,
		Priority:    s.Priority,
		Orientation: orientation,
	}
}

func FormatPlaylist(p model.Playlist) *packets.PlaylistResponse {
	return &packets.PlaylistResponse{
		ID:    p.ID,
		Name:  p.Name,
		Items: FormatItems(p.Items),
	}
}

func FormatLayout(l model.Layout) *packets.LayoutResponse {
	orientation := l.Orientation
	if strings.TrimSpace(orientation) == "" {
		orientation = DefaultOrientation
	}

	sections := make([]packets.SectionResponse, 0, len(l.Sections))
	for _, s := range l.Sections {
		sections = append(sections, packets.SectionResponse{
			ID:        s.ID,
			Name:      s.Name,
			X:         s.X,
			Y:         s.Y,
			Width:     s.Width,
			Height:    s.Height,
			Loop:      s.Loop,
			Frequency: s.Frequency,
			Order:     s.Order,
			Items:     FormatItems(s.Items),
		})
	}

	return &packets.LayoutResponse{
		ID:          l.ID,
		Name:        l.Name,
		Width:       l.Width,
		Height:      l.Height,
		Orientation: orientation,
		Sections:    sections,
	}
}

// FormatItems fills presentation defaults and silently drops items whose
// media no longer exists. Input order is kept.
func FormatItems(items []model.PlaylistItem) []packets.ItemResponse {
	out := make([]packets.ItemResponse, 0, len(items))
	for _, it := range items {
		if it.Media == nil {
			continue
		}
		out = append(out, packets.ItemResponse{
			ID:          it.ID,
			Order:       it.Order,
			Duration:    itemDuration(it),
			Loop:        it.Loop,
			Orientation: stringOr(it.Orientation, DefaultOrientation),
			ResizeMode:  stringOr(it.ResizeMode, DefaultResizeMode),
			Rotation:    intOr(it.Rotation, DefaultRotation),
			Media:       formatMedia(*it.Media),
		})
	}
	return out
}

func formatMedia(m model.Media) *packets.MediaResponse {
	return &packets.MediaResponse{
		ID:       m.ID,
		Name:     m.Name,
		Type:     m.Type,
		URL:      m.URL,
		Duration: m.Duration,
	}
}

// itemDuration prefers the item override, then the media's own length.
func itemDuration(it model.PlaylistItem) int {
	if it.Duration != nil && *it.Duration > 0 {
		return *it.Duration
	}
	if it.Media != nil && it.Media.Duration != nil && *it.Media.Duration > 0 {
		return *it.Media.Duration
	}
	return DefaultItemDuration
}

func stringOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// MediaOf collects every media reference in the payload so it can be
// enriched in place.
func MediaOf(cfg *packets.PlayerConfigResponse) []*packets.MediaResponse {
	var refs []*packets.MediaResponse
	if cfg.Playlist != nil {
		for _, it := range cfg.Playlist.Items {
			refs = append(refs, it.Media)
		}
	}
	if cfg.Layout != nil {
		for _, s := range cfg.Layout.Sections {
			for _, it := range s.Items {
				refs = append(refs, it.Media)
			}
		}
	}
	return refs
}
