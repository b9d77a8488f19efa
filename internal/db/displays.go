package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

const displayColumns = `id, name, device_id, device_token, layout_id, playlist_id, paired, created_at, updated_at`

// GetDisplayByToken matches the stored credential verbatim.
func (s queries) GetDisplayByToken(ctx context.Context, token string) (model.Display, error) {
	var d model.Display
	err := sqlx.GetContext(ctx, s.q, &d, `
		SELECT `+displayColumns+`
		FROM displays
		WHERE device_token = $1
		  AND paired = TRUE
		`, token)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error().Err(err).Msg("failed to get display by device token")
	}
	return d, err
}

func (s queries) ListPairedDisplays(ctx context.Context) ([]model.Display, error) {
	var displays []model.Display
	err := sqlx.SelectContext(ctx, s.q, &displays, `
		SELECT `+displayColumns+`
		FROM displays
		WHERE paired = TRUE
		  AND device_id IS NOT NULL
		ORDER BY id
		`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list paired displays")
		return nil, err
	}
	return displays, nil
}
