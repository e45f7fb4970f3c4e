package wrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/discord"
	"github.com/plumdale/spinwrap/internal/listening"
	"github.com/plumdale/spinwrap/internal/repository"
)

const tallyWriteTimeout = 10 * time.Second

// Aggregator folds presence changes into per-(guild,user) daily tallies.
// Top track and artist are recomputed from the full same-day history on
// every event; the retained window is at most one UTC day, which keeps the
// rescan bounded.
type Aggregator struct {
	repo       repository.TallyRepository
	membership *Membership
	clock      clock.Clock
}

func NewAggregator(repo repository.TallyRepository, membership *Membership, clk clock.Clock) *Aggregator {
	return &Aggregator{repo: repo, membership: membership, clock: clk}
}

func (a *Aggregator) HandlePresenceUpdate(event discord.PresenceEvent) {
	if event.GuildID == "" || event.UserID == "" {
		return
	}
	if !a.membership.IsEnabled(event.GuildID) {
		return
	}
	activity, ok := listening.MusicActivity(event.Activities)
	if !ok {
		return
	}
	trackID, ok := listening.TrackID(activity)
	if !ok {
		return
	}
	artist := listening.ArtistName(activity)

	ctx, cancel := context.WithTimeout(context.Background(), tallyWriteTimeout)
	defer cancel()

	tally, err := a.repo.GetTally(ctx, event.GuildID, event.UserID)
	if err != nil {
		slog.Error("failed to load tally", "error", err, "guild_id", event.GuildID, "user_id", event.UserID)
		return
	}
	if tally == nil {
		tally = &repository.UserTally{GuildID: event.GuildID, UserID: event.UserID}
	}

	now := a.clock.Now().UTC()
	if tally.UpdatedAt.Before(dayStartUTC(now)) {
		// Daily rollover: everything before today's UTC midnight is stale.
		tally.Tracks = nil
		tally.Artists = nil
	}

	tally.Tracks = append(tally.Tracks, repository.TrackObservation{TrackID: trackID, ObservedAt: now})
	tally.Artists = append(tally.Artists, artist)
	tally.TopTrack = topTrack(tally.Tracks)
	tally.TopArtist = topValue(tally.Artists)
	tally.UpdatedAt = now

	if err := a.repo.UpsertTally(ctx, *tally); err != nil {
		slog.Error("failed to upsert tally", "error", err, "guild_id", event.GuildID, "user_id", event.UserID)
	}
}

func dayStartUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func topTrack(observations []repository.TrackObservation) string {
	ids := make([]string, 0, len(observations))
	for _, o := range observations {
		ids = append(ids, o.TrackID)
	}
	return topValue(ids)
}

// topValue returns the most frequent value; equal counts resolve to the
// value seen first.
func topValue(values []string) string {
	counts := make(map[string]int, len(values))
	firstSeen := make(map[string]int, len(values))
	for i, v := range values {
		if _, ok := firstSeen[v]; !ok {
			firstSeen[v] = i
		}
		counts[v]++
	}
	best := ""
	for _, v := range values {
		if best == "" {
			best = v
			continue
		}
		if counts[v] > counts[best] || (counts[v] == counts[best] && firstSeen[v] < firstSeen[best]) {
			best = v
		}
	}
	return best
}
