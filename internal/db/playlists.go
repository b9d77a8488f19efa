package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// itemRow is a playlist or section item LEFT JOINed with its media. The
// media columns are all NULL when the referenced media row no longer exists.
type itemRow struct {
	ID          int     `db:"id"`
	SectionID   int     `db:"section_id"`
	MediaID     *int    `db:"media_id"`
	Order       int     `db:"sort_order"`
	Duration    *int    `db:"duration"`
	Loop        bool    `db:"loop"`
	Orientation *string `db:"orientation"`
	ResizeMode  *string `db:"resize_mode"`
	Rotation    *int    `db:"rotation"`

	MID        *int       `db:"m_id"`
	MName      *string    `db:"m_name"`
	MType      *string    `db:"m_type"`
	MURL       *string    `db:"m_url"`
	MDuration  *int       `db:"m_duration"`
	MWidth     *int       `db:"m_width"`
	MHeight    *int       `db:"m_height"`
	MUpdatedAt *time.Time `db:"m_updated_at"`
}

const mediaJoinColumns = `
	m.id AS m_id, m.name AS m_name, m.type AS m_type, m.url AS m_url,
	m.duration AS m_duration, m.width AS m_width, m.height AS m_height,
	m.updated_at AS m_updated_at`

func (r itemRow) item() model.PlaylistItem {
	it := model.PlaylistItem{
		ID:          r.ID,
		MediaID:     r.MediaID,
		Order:       r.Order,
		Duration:    r.Duration,
		Loop:        r.Loop,
		Orientation: r.Orientation,
		ResizeMode:  r.ResizeMode,
		Rotation:    r.Rotation,
	}
	if r.MID != nil {
		m := &model.Media{
			ID:       *r.MID,
			Duration: r.MDuration,
			Width:    r.MWidth,
			Height:   r.MHeight,
		}
		if r.MName != nil {
			m.Name = *r.MName
		}
		if r.MType != nil {
			m.Type = *r.MType
		}
		if r.MURL != nil {
			m.URL = *r.MURL
		}
		if r.MUpdatedAt != nil {
			m.UpdatedAt = *r.MUpdatedAt
		}
		it.Media = m
	}
	return it
}

// GetPlaylistByID loads the playlist with its items in ascending order.
func (s queries) GetPlaylistByID(ctx context.Context, id int) (model.Playlist, error) {
	var p model.Playlist
	if err := sqlx.GetContext(ctx, s.q, &p, `
		SELECT id, name, updated_at
		  FROM playlists
		 WHERE id = $1;`, id); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("playlist_id", id).Msg("failed to get playlist by id")
		}
		return model.Playlist{}, err
	}

	items, err := s.listPlaylistItems(ctx, id)
	if err != nil {
		return model.Playlist{}, err
	}
	p.Items = items
	return p, nil
}

func (s queries) listPlaylistItems(ctx context.Context, playlistID int) ([]model.PlaylistItem, error) {
	var rows []itemRow
	q := `
	SELECT
	  pi.id, 0 AS section_id, pi.media_id, pi.sort_order, pi.duration, pi.loop,
	  pi.orientation, pi.resize_mode, pi.rotation,` + mediaJoinColumns + `
	FROM playlist_items pi
	LEFT JOIN media m ON m.id = pi.media_id
	WHERE pi.playlist_id = $1
	ORDER BY pi.sort_order, pi.id;`
	if err := sqlx.SelectContext(ctx, s.q, &rows, q, playlistID); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to list playlist items")
		return nil, err
	}

	items := make([]model.PlaylistItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.item())
	}
	return items, nil
}
