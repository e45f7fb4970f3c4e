package wrap

import (
	"context"
	"sync"

	"github.com/plumdale/spinwrap/internal/discord"
	"github.com/plumdale/spinwrap/internal/repository"
)

type mockRepository struct {
	mu sync.Mutex

	guilds  map[string]repository.WrapGuild
	tallies map[string]repository.UserTally

	listGuildsErr    error
	upsertGuildErr   error
	getTallyErr      error
	upsertTallyErr   error
	listTalliesErrBy map[string]error

	upsertTallyCalls []repository.UserTally
	resetCalls       []string
	deletedGuilds    []string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		guilds:  make(map[string]repository.WrapGuild),
		tallies: make(map[string]repository.UserTally),
	}
}

func tallyKey(guildID, userID string) string {
	return guildID + "|" + userID
}

func (m *mockRepository) ListWrapGuilds(_ context.Context) ([]repository.WrapGuild, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listGuildsErr != nil {
		return nil, m.listGuildsErr
	}
	list := make([]repository.WrapGuild, 0, len(m.guilds))
	for _, g := range m.guilds {
		list = append(list, g)
	}
	return list, nil
}

func (m *mockRepository) GetWrapGuild(_ context.Context, guildID string) (*repository.WrapGuild, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guilds[guildID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *mockRepository) UpsertWrapGuild(_ context.Context, guild repository.WrapGuild) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertGuildErr != nil {
		return m.upsertGuildErr
	}
	m.guilds[guild.GuildID] = guild
	return nil
}

func (m *mockRepository) DeleteWrapGuild(_ context.Context, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.guilds, guildID)
	m.deletedGuilds = append(m.deletedGuilds, guildID)
	return nil
}

func (m *mockRepository) SetWrapGuildPostTime(_ context.Context, guildID, postTime string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.guilds[guildID]
	g.PostTime = postTime
	m.guilds[guildID] = g
	return nil
}

func (m *mockRepository) SetWrapGuildChannel(_ context.Context, guildID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.guilds[guildID]
	g.ChannelID = channelID
	m.guilds[guildID] = g
	return nil
}

func (m *mockRepository) SetWrapGuildInterval(_ context.Context, guildID string, intervalHours int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.guilds[guildID]
	g.IntervalHours = intervalHours
	m.guilds[guildID] = g
	return nil
}

func (m *mockRepository) GetTally(_ context.Context, guildID, userID string) (*repository.UserTally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getTallyErr != nil {
		return nil, m.getTallyErr
	}
	t, ok := m.tallies[tallyKey(guildID, userID)]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *mockRepository) UpsertTally(_ context.Context, tally repository.UserTally) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertTallyErr != nil {
		return m.upsertTallyErr
	}
	m.tallies[tallyKey(tally.GuildID, tally.UserID)] = tally
	m.upsertTallyCalls = append(m.upsertTallyCalls, tally)
	return nil
}

func (m *mockRepository) ListGuildTallies(_ context.Context, guildID string) ([]repository.UserTally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.listTalliesErrBy[guildID]; err != nil {
		return nil, err
	}
	var list []repository.UserTally
	for _, t := range m.tallies {
		if t.GuildID == guildID {
			list = append(list, t)
		}
	}
	return list, nil
}

func (m *mockRepository) ResetGuildTallies(_ context.Context, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalls = append(m.resetCalls, guildID)
	for key, t := range m.tallies {
		if t.GuildID != guildID {
			continue
		}
		t.Tracks = nil
		t.Artists = nil
		t.TopTrack = ""
		t.TopArtist = ""
		m.tallies[key] = t
	}
	return nil
}

type mockPoster struct {
	mu           sync.Mutex
	messages     []string
	pageChannels []string
	pages        []discord.PageView
	sendErr      error
}

func (m *mockPoster) SendChannelMessage(_ string, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages, content)
	return nil
}

func (m *mockPoster) SendChannelPage(channelID string, page discord.PageView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.pageChannels = append(m.pageChannels, channelID)
	m.pages = append(m.pages, page)
	return nil
}

func (m *mockPoster) pageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}
