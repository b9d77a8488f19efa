package model

import "time"

// Layout is a fixed-size canvas split into sections, each playing its own
// sequence of items.
type Layout struct {
	ID          int       `db:"id"           json:"id"`
	Name        string    `db:"name"         json:"name"`
	Width       int       `db:"width"        json:"width"`
	Height      int       `db:"height"       json:"height"`
	Orientation string    `db:"orientation"  json:"orientation"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
	Sections    []Section `db:"-"            json:"sections,omitempty"`
}

// Section geometry is expressed in percent of the layout canvas.
type Section struct {
	ID        int           `db:"id"          json:"id"`
	LayoutID  int           `db:"layout_id"   json:"layout_id"`
	Name      string        `db:"name"        json:"name"`
	X         float64       `db:"x"           json:"x"`
	Y         float64       `db:"y"           json:"y"`
	Width     float64       `db:"width"       json:"width"`
	Height    float64       `db:"height"      json:"height"`
	Loop      bool          `db:"loop"        json:"loop"`
	Frequency *int          `db:"frequency"   json:"frequency,omitempty"`
	Order     int           `db:"sort_order"  json:"order"`
	Items     []SectionItem `db:"-"           json:"items,omitempty"`
}

// SectionItem has the same shape as PlaylistItem.
type SectionItem = PlaylistItem
