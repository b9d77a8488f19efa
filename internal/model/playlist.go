package model

import "time"

type Playlist struct {
	ID        int            `db:"id"          json:"id"`
	Name      string         `db:"name"        json:"name"`
	UpdatedAt time.Time      `db:"updated_at"  json:"updated_at"`
	Items     []PlaylistItem `db:"-"           json:"items,omitempty"`
}

// PlaylistItem points at one Media plus per-item presentation overrides.
// A nil Media means the referenced row is gone.
type PlaylistItem struct {
	ID          int     `db:"id"           json:"id"`
	MediaID     *int    `db:"media_id"     json:"media_id"`
	Order       int     `db:"sort_order"   json:"order"`
	Duration    *int    `db:"duration"     json:"duration,omitempty"`
	Loop        bool    `db:"loop"         json:"loop"`
	Orientation *string `db:"orientation"  json:"orientation,omitempty"`
	ResizeMode  *string `db:"resize_mode"  json:"resize_mode,omitempty"`
	Rotation    *int    `db:"rotation"     json:"rotation,omitempty"`
	Media       *Media  `db:"-"            json:"media,omitempty"`
}
