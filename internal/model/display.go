package model

import "time"

// Display represents a paired screen. It is the unit every player-config
// resolution is scoped to.
type Display struct {
	ID          int       `db:"id"            json:"id"`
	Name        string    `db:"name"          json:"name"`
	DeviceID    *string   `db:"device_id"     json:"device_id"`
	DeviceToken *string   `db:"device_token"  json:"-"`
	LayoutID    *int      `db:"layout_id"     json:"layout_id"`
	PlaylistID  *int      `db:"playlist_id"   json:"playlist_id"`
	Paired      bool      `db:"paired"        json:"paired"`
	CreatedAt   time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"    json:"updated_at"`
}
