package wrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/discord"
	"github.com/plumdale/spinwrap/internal/repository"
	"github.com/robfig/cron/v3"
)

const (
	// Poll cadence and the tolerance around a guild's configured post time.
	// A guild is due when the current UTC minute-of-day is within
	// dueWindowMinutes of its effective post minute.
	tickCronSpec     = "@every 1m"
	dueWindowMinutes = 5

	minutesPerDay = 24 * 60

	postTimeLayout = "15:04:05"

	tickTimeout = 60 * time.Second

	summaryTitleFormat = ":headphones: Daily wrap — %s"
	summaryLineFormat  = "<@%s> — **%s** by **%s**"
)

// Scheduler polls every wrap-enabled guild once a minute and posts the daily
// summary when the guild's configured UTC post time comes due, at most once
// per due window. A successful post resets the guild's tallies; an optional
// 1-6 hour interval advances the effective due time for intra-day repeats.
type Scheduler struct {
	repo       repository.Repository
	membership *Membership
	poster     discord.Poster
	clock      clock.Clock
	cron       *cron.Cron

	mu    sync.Mutex
	state map[string]*guildState
}

// guildState is the per-guild due-window memory for the current UTC day.
// It resets at day rollover, restoring dueMinute to the configured time.
// baseMinute tracks the configured post time so a mid-day change rebases
// the due minute on the next tick.
type guildState struct {
	day        string
	baseMinute int
	dueMinute  int
	posted     bool
}

func NewScheduler(repo repository.Repository, membership *Membership, poster discord.Poster, clk clock.Clock) *Scheduler {
	return &Scheduler{
		repo:       repo,
		membership: membership,
		poster:     poster,
		clock:      clk,
		state:      make(map[string]*guildState),
	}
}

// Start launches the recurring tick. The scheduler runs for the lifetime of
// the process; Stop is only called on shutdown.
func (s *Scheduler) Start() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(tickCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()
		s.Tick(ctx, s.clock.Now())
	}); err != nil {
		return fmt.Errorf("failed to schedule wrap tick: %w", err)
	}
	c.Start()
	s.cron = c
	slog.Info("wrap scheduler started", "cadence", tickCronSpec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	s.cron.Stop()
	s.cron = nil
}

// Tick evaluates every member guild sequentially. Guild failures are
// isolated so one broken guild cannot starve the rest of the tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	now = now.UTC()
	for _, guildID := range s.membership.Snapshot() {
		s.evaluateGuild(ctx, guildID, now)
	}
}

func (s *Scheduler) evaluateGuild(ctx context.Context, guildID string, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while evaluating wrap guild", "guild_id", guildID, "panic", r)
		}
	}()

	// Disabling wrap mid-tick must stop the guild's evaluation.
	if !s.membership.IsEnabled(guildID) {
		return
	}

	cfg, err := s.repo.GetWrapGuild(ctx, guildID)
	if err != nil {
		slog.Error("failed to load wrap guild config", "error", err, "guild_id", guildID)
		return
	}
	if cfg == nil || cfg.ChannelID == "" {
		return
	}
	baseMinute, err := postTimeMinute(cfg.PostTime)
	if err != nil {
		slog.Error("wrap guild has malformed post time", "error", err, "guild_id", guildID, "post_time", cfg.PostTime)
		return
	}

	day := now.Format(time.DateOnly)
	nowMinute := now.Hour()*60 + now.Minute()

	s.mu.Lock()
	st, ok := s.state[guildID]
	if !ok || st.day != day {
		st = &guildState{day: day, baseMinute: baseMinute, dueMinute: baseMinute}
		s.state[guildID] = st
	} else if st.baseMinute != baseMinute {
		// The configured time changed mid-day: rebase the due minute and,
		// unless the new time already elapsed today, allow a post at it.
		st.baseMinute = baseMinute
		st.dueMinute = baseMinute
		st.posted = st.posted && nowMinute > baseMinute+dueWindowMinutes
	}
	due := minuteDistance(nowMinute, st.dueMinute) <= dueWindowMinutes
	alreadyPosted := st.posted
	s.mu.Unlock()

	if !due || alreadyPosted {
		return
	}

	if err := s.postSummary(ctx, *cfg, now); err != nil {
		slog.Error("failed to post wrap summary", "error", err, "guild_id", guildID, "channel_id", cfg.ChannelID)
		return
	}

	if err := s.repo.ResetGuildTallies(ctx, guildID); err != nil {
		slog.Error("failed to reset guild tallies", "error", err, "guild_id", guildID)
	}

	s.mu.Lock()
	st.posted = true
	if cfg.IntervalHours >= 1 && cfg.IntervalHours <= 6 {
		st.dueMinute = (st.dueMinute + cfg.IntervalHours*60) % minutesPerDay
		st.posted = false
	}
	s.mu.Unlock()
	slog.Info("wrap summary posted", "guild_id", guildID, "channel_id", cfg.ChannelID, "interval_hours", cfg.IntervalHours)
}

func (s *Scheduler) postSummary(ctx context.Context, cfg repository.WrapGuild, now time.Time) error {
	tallies, err := s.repo.ListGuildTallies(ctx, cfg.GuildID)
	if err != nil {
		return fmt.Errorf("failed to list guild tallies: %w", err)
	}
	lines := SummaryLines(tallies)
	title := fmt.Sprintf(summaryTitleFormat, now.Format(time.DateOnly))
	page := BuildGuildPage(cfg.GuildID, lines, 0, title)
	return s.poster.SendChannelPage(cfg.ChannelID, page)
}

// SummaryLines renders one line per user with a derived top track. Tallies
// that never produced a top value are omitted.
func SummaryLines(tallies []repository.UserTally) []string {
	lines := make([]string, 0, len(tallies))
	for _, t := range tallies {
		if t.TopTrack == "" {
			continue
		}
		artist := t.TopArtist
		if artist == "" {
			artist = "Unknown artist"
		}
		lines = append(lines, fmt.Sprintf(summaryLineFormat, t.UserID, t.TopTrack, artist))
	}
	return lines
}

// minuteDistance is the circular distance between two minutes-of-day, so a
// window around midnight spans both sides of 00:00.
func minuteDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > minutesPerDay-d {
		d = minutesPerDay - d
	}
	return d
}

func postTimeMinute(postTime string) (int, error) {
	t, err := time.Parse(postTimeLayout, postTime)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NormalizePostTime validates a user-supplied "HH:MM" and returns the stored
// "HH:MM:SS" form.
func NormalizePostTime(input string) (string, error) {
	t, err := time.Parse("15:04", input)
	if err != nil {
		return "", fmt.Errorf("post time must be HH:MM (24-hour): %w", err)
	}
	return t.Format(postTimeLayout), nil
}
