package listening

import (
	"testing"

	"github.com/plumdale/spinwrap/internal/discord"
)

func TestMusicActivity_PicksFirstListeningActivity(t *testing.T) {
	activities := []discord.Activity{
		{Kind: discord.ActivityOther, Title: "some game"},
		{Kind: discord.ActivityListening, Source: "Spotify", SyncID: "t1"},
		{Kind: discord.ActivityListening, Source: "Spotify", SyncID: "t2"},
	}

	a, ok := MusicActivity(activities)
	if !ok || a.SyncID != "t1" {
		t.Fatalf("unexpected activity: %+v %v", a, ok)
	}

	if _, ok := MusicActivity(nil); ok {
		t.Fatal("expected no activity for empty presence")
	}
}

func TestTrackID_PrefersCatalogIdentifier(t *testing.T) {
	id, ok := TrackID(discord.Activity{Source: "Spotify", SyncID: "sync-1", Title: "Song"})
	if !ok || id != "sync-1" {
		t.Fatalf("unexpected track id: %q %v", id, ok)
	}
}

func TestTrackID_SkipsSpotifyPodcasts(t *testing.T) {
	// Spotify podcast episodes carry a title but no catalog identifier.
	if _, ok := TrackID(discord.Activity{Source: "Spotify", Title: "Some Podcast Episode"}); ok {
		t.Fatal("expected spotify activity without sync id to be skipped")
	}
}

func TestTrackID_FallsBackToTitleForOtherPlatforms(t *testing.T) {
	id, ok := TrackID(discord.Activity{Source: "YouTube Music", Title: "Song Title"})
	if !ok || id != "Song Title" {
		t.Fatalf("unexpected track id: %q %v", id, ok)
	}

	if _, ok := TrackID(discord.Activity{Source: "YouTube Music"}); ok {
		t.Fatal("expected activity without any identifier to be skipped")
	}
}

func TestArtistName(t *testing.T) {
	cases := []struct {
		name     string
		activity discord.Activity
		want     string
	}{
		{"subtitle wins", discord.Activity{Subtitle: "Artist A", DetailText: "Other — Thing"}, "Artist A"},
		{"detail text em dash", discord.Activity{DetailText: "Artist B — Album"}, "Artist B"},
		{"detail text en dash", discord.Activity{DetailText: "Artist C – Album"}, "Artist C"},
		{"semicolon credits", discord.Activity{Subtitle: "Artist A; Artist B"}, "Artist A, Artist B"},
		{"comma credits normalized", discord.Activity{Subtitle: "Artist A,Artist B , Artist C"}, "Artist A, Artist B, Artist C"},
		{"no artist info", discord.Activity{}, "Unknown artist"},
		{"blank subtitle", discord.Activity{Subtitle: "   "}, "Unknown artist"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ArtistName(tc.activity); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
