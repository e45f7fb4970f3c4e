// Package listening extracts track and artist information from gateway
// presence activities.
package listening

import (
	"strings"

	"github.com/plumdale/spinwrap/internal/discord"
)

const UnknownArtist = "Unknown artist"

const spotifySource = "Spotify"

// MusicActivity returns the first streaming-music activity of a presence
// update.
func MusicActivity(activities []discord.Activity) (discord.Activity, bool) {
	for _, a := range activities {
		if a.Kind == discord.ActivityListening {
			return a, true
		}
	}
	return discord.Activity{}, false
}

// TrackID picks the identifier used to tally an activity. The platform's
// catalog identifier wins when present. A Spotify activity without one is a
// podcast episode and is skipped; other platforms never carry a catalog
// identifier, so their title stands in. No identifier at all means the
// activity is not recorded.
func TrackID(a discord.Activity) (string, bool) {
	if a.SyncID != "" {
		return a.SyncID, true
	}
	if a.Source == spotifySource {
		return "", false
	}
	if a.Title != "" {
		return a.Title, true
	}
	return "", false
}

// ArtistName normalizes the credited artists of an activity. The explicit
// subtitle ("state") field wins; failing that the first em-dash-separated
// segment of the detail text is used. Multiple credits separated by ";" or
// "," are joined with ", ".
func ArtistName(a discord.Activity) string {
	raw := a.Subtitle
	if raw == "" {
		raw = firstDetailSegment(a.DetailText)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnknownArtist
	}
	return joinCredits(raw)
}

func firstDetailSegment(detail string) string {
	for _, sep := range []string{" — ", " – ", "—", "–"} {
		if before, _, found := strings.Cut(detail, sep); found {
			return before
		}
	}
	return detail
}

func joinCredits(raw string) string {
	raw = strings.ReplaceAll(raw, ";", ",")
	parts := strings.Split(raw, ",")
	credits := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			credits = append(credits, name)
		}
	}
	if len(credits) == 0 {
		return UnknownArtist
	}
	return strings.Join(credits, ", ")
}
