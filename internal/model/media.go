package model

import "time"

// Media is an uploaded image or video. The player core only reads it.
type Media struct {
	ID        int       `db:"id"          json:"id"`
	Name      string    `db:"name"        json:"name"`
	Type      string    `db:"type"        json:"type"`
	URL       string    `db:"url"         json:"url"`
	Duration  *int      `db:"duration"    json:"duration,omitempty"`
	Width     *int      `db:"width"       json:"width,omitempty"`
	Height    *int      `db:"height"      json:"height,omitempty"`
	UpdatedAt time.Time `db:"updated_at"  json:"updated_at"`
}
