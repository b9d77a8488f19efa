package packets

// RESPONSES FOR /api/tv/player/*

// PlayerConfigResponse is what a display polls for. At most one of Playlist
// and Layout is set; ActiveSchedule is set only when a schedule won.
type PlayerConfigResponse struct {
	Playlist       *PlaylistResponse       `json:"playlist"`
	Layout         *LayoutResponse         `json:"layout"`
	ActiveSchedule *ActiveScheduleResponse `json:"activeSchedule"`
}

type ActiveScheduleResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Priority    int    `json:"priority"`
	Orientation string `json:"orientation"`
}

type PlaylistResponse struct {
	ID    int            `json:"id"`
	Name  string         `json:"name"`
	Items []ItemResponse `json:"items"`
}

type LayoutResponse struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Orientation string            `json:"orientation"`
	Sections    []SectionResponse `json:"sections"`
}

type SectionResponse struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Loop      bool           `json:"loop"`
	Frequency *int           `json:"frequency"`
	Order     int            `json:"order"`
	Items     []ItemResponse `json:"items"`
}

// ItemResponse is a playlist or section item with every presentation field
// filled in.
type ItemResponse struct {
	ID          int            `json:"id"`
	Order       int            `json:"order"`
	Duration    int            `json:"duration"`
	Loop        bool           `json:"loop"`
	Orientation string         `json:"orientation"`
	ResizeMode  string         `json:"resizeMode"`
	Rotation    int            `json:"rotation"`
	Media       *MediaResponse `json:"media"`
}

// MediaResponse carries FileSize and Checksum only when enrichment succeeded.
type MediaResponse struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	URL      string  `json:"url"`
	Duration *int    `json:"duration"`
	FileSize *int64  `json:"fileSize,omitempty"`
	Checksum *string `json:"checksum,omitempty"`
}

// RESPONSES FOR /api/tv/player/schedules

type DiagnosticsResponse struct {
	Now       NowResponse               `json:"now"`
	Source    string                    `json:"source"`
	Winner    *ActiveScheduleResponse   `json:"winner"`
	Schedules []ScheduleVerdictResponse `json:"schedules"`
}

type NowResponse struct {
	Timezone string `json:"timezone"`
	Day      string `json:"day"`
	Clock    string `json:"clock"`
	Date     string `json:"date"`
}

type ScheduleVerdictResponse struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Priority    int      `json:"priority"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	RepeatDays  []string `json:"repeatDays"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	IsActive    bool     `json:"isActive"`
	ContentType string   `json:"contentType"`
	ContentID   *int     `json:"contentId"`
	Verdict     string   `json:"verdict"`
}
