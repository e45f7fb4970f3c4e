package repository

import "time"

// WrapGuild is a guild's daily-wrap configuration. PostTime is the local
// posting time normalized to UTC, stored as "HH:MM:SS". IntervalHours of 0
// means once daily; 1..6 adds intra-day repeat posts.
type WrapGuild struct {
	GuildID       string
	ChannelID     string
	PostTime      string
	IntervalHours int
	EnrolledAt    time.Time
}

// TrackObservation is one "user was playing this track" sighting.
type TrackObservation struct {
	TrackID    string    `json:"track_id"`
	ObservedAt time.Time `json:"observed_at"`
}

// UserTally accumulates one user's same-UTC-day listening observations in a
// guild. Tracks and Artists grow in parallel; TopTrack/TopArtist are derived
// and recomputed on every observation.
type UserTally struct {
	GuildID   string
	UserID    string
	Tracks    []TrackObservation
	Artists   []string
	TopTrack  string
	TopArtist string
	UpdatedAt time.Time
}
