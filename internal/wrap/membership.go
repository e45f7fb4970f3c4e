package wrap

import (
	"context"
	"log/slog"
	"sync"

	"github.com/plumdale/spinwrap/internal/repository"
)

// Membership is the in-memory set of guilds with daily wrap tracking
// enabled. It mirrors the persisted wrap_guilds table and is consulted on
// every presence event, so reads never touch storage.
type Membership struct {
	repo repository.WrapGuildRepository

	mu     sync.RWMutex
	guilds map[string]struct{}
}

func NewMembership(repo repository.WrapGuildRepository) *Membership {
	return &Membership{
		repo:   repo,
		guilds: make(map[string]struct{}),
	}
}

// Load bulk-populates the set from storage. A storage failure leaves the set
// empty rather than aborting startup.
func (m *Membership) Load(ctx context.Context) {
	guilds, err := m.repo.ListWrapGuilds(ctx)
	if err != nil {
		slog.Error("failed to load wrap guilds; starting with empty membership", "error", err)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range guilds {
		m.guilds[g.GuildID] = struct{}{}
	}
	slog.Info("wrap membership loaded", "guilds", len(guilds))
}

// Enable adds the guild to the set and persists its config. The in-memory
// add is optimistic: a persistence failure is reported to the caller but not
// rolled back.
func (m *Membership) Enable(ctx context.Context, guild repository.WrapGuild) bool {
	m.mu.Lock()
	m.guilds[guild.GuildID] = struct{}{}
	m.mu.Unlock()

	if err := m.repo.UpsertWrapGuild(ctx, guild); err != nil {
		slog.Error("failed to persist wrap guild", "error", err, "guild_id", guild.GuildID)
		return false
	}
	return true
}

// Disable removes the guild from the set and best-effort deletes its
// persisted config.
func (m *Membership) Disable(ctx context.Context, guildID string) {
	m.mu.Lock()
	delete(m.guilds, guildID)
	m.mu.Unlock()

	if err := m.repo.DeleteWrapGuild(ctx, guildID); err != nil {
		slog.Error("failed to delete wrap guild", "error", err, "guild_id", guildID)
	}
}

func (m *Membership) IsEnabled(guildID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.guilds[guildID]
	return ok
}

// ApplyChange folds an external change-feed notification into the set.
// Adding a present guild or removing an absent one is a no-op.
func (m *Membership) ApplyChange(guildID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if enabled {
		m.guilds[guildID] = struct{}{}
		return
	}
	delete(m.guilds, guildID)
}

// Snapshot returns the current member guild IDs for iteration outside the
// lock.
func (m *Membership) Snapshot() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.guilds))
	for id := range m.guilds {
		ids = append(ids, id)
	}
	return ids
}
