package wrap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/repository"
)

func newTestScheduler(repo *mockRepository, poster *mockPoster, clk clock.Clock, enabledGuilds ...string) (*Scheduler, *Membership) {
	m := NewMembership(repo)
	for _, g := range enabledGuilds {
		m.ApplyChange(g, true)
	}
	return NewScheduler(repo, m, poster, clk), m
}

func seedGuild(repo *mockRepository, guildID, postTime string, intervalHours int) {
	repo.guilds[guildID] = repository.WrapGuild{
		GuildID:       guildID,
		ChannelID:     "chan-" + guildID,
		PostTime:      postTime,
		IntervalHours: intervalHours,
	}
}

func seedTally(repo *mockRepository, guildID, userID, topTrack, topArtist string, at time.Time) {
	repo.tallies[tallyKey(guildID, userID)] = repository.UserTally{
		GuildID:   guildID,
		UserID:    userID,
		Tracks:    []repository.TrackObservation{{TrackID: topTrack, ObservedAt: at}},
		Artists:   []string{topArtist},
		TopTrack:  topTrack,
		TopArtist: topArtist,
		UpdatedAt: at,
	}
}

func TestScheduler_PostsOncePerDueWindow(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewMock(day)
	s, _ := newTestScheduler(repo, poster, clk, "g1")
	seedGuild(repo, "g1", "00:00:00", 0)
	seedTally(repo, "g1", "u1", "t1", "A", day.Add(10*time.Second))

	s.Tick(context.Background(), day.Add(2*time.Minute))
	s.Tick(context.Background(), day.Add(4*time.Minute))

	if poster.pageCount() != 1 {
		t.Fatalf("expected exactly one post within the due window, got %d", poster.pageCount())
	}
	if len(repo.resetCalls) != 1 || repo.resetCalls[0] != "g1" {
		t.Fatalf("expected one tally reset for g1, got %v", repo.resetCalls)
	}
	if poster.pageChannels[0] != "chan-g1" {
		t.Fatalf("unexpected target channel: %q", poster.pageChannels[0])
	}
	if !strings.Contains(poster.pages[0].Description, "t1") || !strings.Contains(poster.pages[0].Description, "A") {
		t.Fatalf("expected summary to carry top track and artist, got %q", poster.pages[0].Description)
	}
}

func TestScheduler_OutsideWindowDoesNotPost(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day), "g1")
	seedGuild(repo, "g1", "12:00:00", 0)

	s.Tick(context.Background(), day.Add(11*time.Hour+54*time.Minute))
	s.Tick(context.Background(), day.Add(12*time.Hour+6*time.Minute))

	if poster.pageCount() != 0 {
		t.Fatalf("expected no posts outside the due window, got %d", poster.pageCount())
	}
}

func TestScheduler_WindowSpansMidnight(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	// The wall clock is still on the previous day; the summary must be
	// dated by the tick instant, not the wall clock.
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day.Add(-time.Hour)), "g1")
	seedGuild(repo, "g1", "23:58:00", 0)

	// 00:01 is three minutes past a 23:58 target across midnight.
	s.Tick(context.Background(), day.Add(1*time.Minute))

	if poster.pageCount() != 1 {
		t.Fatalf("expected a post inside the wrapped window, got %d", poster.pageCount())
	}
	if !strings.Contains(poster.pages[0].Title, "2026-03-02") {
		t.Fatalf("expected summary dated by the tick time, got %q", poster.pages[0].Title)
	}
}

func TestScheduler_PostsAgainNextDay(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day), "g1")
	seedGuild(repo, "g1", "00:00:00", 0)

	s.Tick(context.Background(), day.Add(1*time.Minute))
	s.Tick(context.Background(), day.Add(3*time.Minute))
	s.Tick(context.Background(), day.AddDate(0, 0, 1).Add(1*time.Minute))

	if poster.pageCount() != 2 {
		t.Fatalf("expected one post per day, got %d", poster.pageCount())
	}
}

func TestScheduler_IntervalSchedulesIntraDayRepeats(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day), "g1")
	seedGuild(repo, "g1", "06:00:00", 2)

	s.Tick(context.Background(), day.Add(6*time.Hour))
	s.Tick(context.Background(), day.Add(6*time.Hour+3*time.Minute))
	s.Tick(context.Background(), day.Add(7*time.Hour))
	s.Tick(context.Background(), day.Add(8*time.Hour))

	if poster.pageCount() != 2 {
		t.Fatalf("expected the interval to trigger a second post at 08:00, got %d", poster.pageCount())
	}
}

func TestScheduler_PostTimeChangeTakesEffectSameDay(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day), "g1")
	seedGuild(repo, "g1", "09:00:00", 0)

	// An early tick caches the day's state before the change.
	s.Tick(context.Background(), day.Add(1*time.Minute))
	if poster.pageCount() != 0 {
		t.Fatalf("expected no post before the configured time, got %d", poster.pageCount())
	}

	if err := repo.SetWrapGuildPostTime(context.Background(), "g1", "06:00:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Tick(context.Background(), day.Add(6*time.Hour))
	if poster.pageCount() != 1 {
		t.Fatalf("expected a post at the new 06:00 time, got %d", poster.pageCount())
	}

	s.Tick(context.Background(), day.Add(9*time.Hour))
	if poster.pageCount() != 1 {
		t.Fatalf("expected no post at the stale 09:00 time, got %d", poster.pageCount())
	}
}

func TestScheduler_PostTimeChangeAfterPostAllowsLaterTime(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day), "g1")
	seedGuild(repo, "g1", "00:00:00", 0)

	s.Tick(context.Background(), day.Add(1*time.Minute))
	if poster.pageCount() != 1 {
		t.Fatalf("expected a post at the original time, got %d", poster.pageCount())
	}

	if err := repo.SetWrapGuildPostTime(context.Background(), "g1", "06:00:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Tick(context.Background(), day.Add(6*time.Hour))
	if poster.pageCount() != 2 {
		t.Fatalf("expected a post at the new later time, got %d", poster.pageCount())
	}
}

func TestScheduler_PostTimeChangeToElapsedTimeDoesNotRepost(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day), "g1")
	seedGuild(repo, "g1", "06:00:00", 0)

	s.Tick(context.Background(), day.Add(6*time.Hour))
	if poster.pageCount() != 1 {
		t.Fatalf("expected a post at the configured time, got %d", poster.pageCount())
	}

	// Moving the post time to an hour that already passed must not produce
	// a second post today.
	if err := repo.SetWrapGuildPostTime(context.Background(), "g1", "03:00:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Tick(context.Background(), day.Add(10*time.Hour))
	s.Tick(context.Background(), day.Add(12*time.Hour))
	if poster.pageCount() != 1 {
		t.Fatalf("expected no re-post after moving to an elapsed time, got %d", poster.pageCount())
	}
}

func TestScheduler_DisabledGuildIsSkipped(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, membership := newTestScheduler(repo, poster, clock.NewMock(day), "g1")
	seedGuild(repo, "g1", "00:00:00", 0)

	membership.ApplyChange("g1", false)
	s.Tick(context.Background(), day.Add(1*time.Minute))

	if poster.pageCount() != 0 {
		t.Fatalf("expected no post for a disabled guild, got %d", poster.pageCount())
	}
}

func TestScheduler_GuildFailureDoesNotAbortTick(t *testing.T) {
	repo := newMockRepository()
	repo.listTalliesErrBy = map[string]error{"g1": errors.New("channel gone")}
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day), "g1", "g2")
	seedGuild(repo, "g1", "00:00:00", 0)
	seedGuild(repo, "g2", "00:00:00", 0)
	seedTally(repo, "g2", "u2", "t2", "B", day)

	s.Tick(context.Background(), day.Add(1*time.Minute))

	if poster.pageCount() != 1 {
		t.Fatalf("expected the healthy guild to post despite the failing one, got %d", poster.pageCount())
	}
	if poster.pageChannels[0] != "chan-g2" {
		t.Fatalf("unexpected channel: %q", poster.pageChannels[0])
	}
}

func TestScheduler_FailedPostDoesNotMarkWindowDone(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{sendErr: errors.New("channel gone")}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestScheduler(repo, poster, clock.NewMock(day), "g1")
	seedGuild(repo, "g1", "00:00:00", 0)

	s.Tick(context.Background(), day.Add(1*time.Minute))
	if len(repo.resetCalls) != 0 {
		t.Fatal("expected no tally reset after a failed post")
	}

	poster.sendErr = nil
	s.Tick(context.Background(), day.Add(2*time.Minute))
	if poster.pageCount() != 1 {
		t.Fatalf("expected a successful post on the next tick, got %d", poster.pageCount())
	}
	if len(repo.resetCalls) != 1 {
		t.Fatalf("expected a tally reset after the successful post, got %d", len(repo.resetCalls))
	}
}

func TestScheduler_EndToEndSingleWindow(t *testing.T) {
	repo := newMockRepository()
	poster := &mockPoster{}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewMock(day)
	s, membership := newTestScheduler(repo, poster, clk, "g1")
	seedGuild(repo, "g1", "00:00:00", 0)
	agg := NewAggregator(repo, membership, clk)

	clk.Set(day.Add(10 * time.Second))
	agg.HandlePresenceUpdate(spotifyEvent("g1", "u1", "t1", "A"))

	s.Tick(context.Background(), day.Add(2*time.Minute))

	if poster.pageCount() != 1 {
		t.Fatalf("expected one summary post, got %d", poster.pageCount())
	}
	if !strings.Contains(poster.pages[0].Description, "t1") {
		t.Fatalf("expected top track t1 in summary, got %q", poster.pages[0].Description)
	}

	// The second event of the day arrives after the post; the already-posted
	// window must not fire again.
	clk.Set(day.Add(5 * time.Minute))
	agg.HandlePresenceUpdate(spotifyEvent("g1", "u1", "t1", "A"))
	s.Tick(context.Background(), day.Add(4*time.Minute))

	if poster.pageCount() != 1 {
		t.Fatalf("expected no re-post in the same window, got %d", poster.pageCount())
	}
}

func TestSummaryLines_SkipsEmptyTallies(t *testing.T) {
	lines := SummaryLines([]repository.UserTally{
		{UserID: "u1", TopTrack: "t1", TopArtist: "A"},
		{UserID: "u2"},
		{UserID: "u3", TopTrack: "t3"},
	})

	if len(lines) != 2 {
		t.Fatalf("expected tallies without a top track to be skipped, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Unknown artist") {
		t.Fatalf("expected artist placeholder, got %q", lines[1])
	}
}

func TestMinuteDistance(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{0, 0, 0},
		{10, 5, 5},
		{5, 10, 5},
		{1, 1438, 3},
		{1438, 1, 3},
		{720, 0, 720},
	}
	for _, tc := range cases {
		if got := minuteDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("minuteDistance(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNormalizePostTime(t *testing.T) {
	normalized, err := NormalizePostTime("21:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if normalized != "21:30:00" {
		t.Fatalf("unexpected normalized time: %q", normalized)
	}

	if _, err := NormalizePostTime("25:00"); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
	if _, err := NormalizePostTime("evening"); err == nil {
		t.Fatal("expected error for non-time input")
	}
}
