package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// GetLayoutByID loads the layout, its sections and every section's items,
// each level in ascending order.
func (s queries) GetLayoutByID(ctx context.Context, id int) (model.Layout, error) {
	var l model.Layout
	if err := sqlx.GetContext(ctx, s.q, &l, `
		SELECT id, name, width, height, orientation, updated_at
		  FROM layouts
		 WHERE id = $1;`, id); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("layout_id", id).Msg("failed to get layout by id")
		}
		return model.Layout{}, err
	}

	sections := []model.Section{}
	if err := sqlx.SelectContext(ctx, s.q, &sections, `
		SELECT id, layout_id, name, x, y, width, height, loop, frequency, sort_order
		  FROM layout_sections
		 WHERE layout_id = $1
		 ORDER BY sort_order, id;`, id); err != nil {
		log.Error().Err(err).Int("layout_id", id).Msg("failed to list layout sections")
		return model.Layout{}, err
	}

	var rows []itemRow
	q := `
	SELECT
	  si.id, si.section_id, si.media_id, si.sort_order, si.duration, si.loop,
	  si.orientation, si.resize_mode, si.rotation,` + mediaJoinColumns + `
	FROM section_items si
	JOIN layout_sections ls ON ls.id = si.section_id
	LEFT JOIN media m ON m.id = si.media_id
	WHERE ls.layout_id = $1
	ORDER BY si.section_id, si.sort_order, si.id;`
	if err := sqlx.SelectContext(ctx, s.q, &rows, q, id); err != nil {
		log.Error().Err(err).Int("layout_id", id).Msg("failed to list section items")
		return model.Layout{}, err
	}

	bySection := make(map[int][]model.SectionItem, len(sections))
	for _, r := range rows {
		bySection[r.SectionID] = append(bySection[r.SectionID], r.item())
	}
	for i := range sections {
		sections[i].Items = bySection[sections[i].ID]
	}
	l.Sections = sections
	return l, nil
}
