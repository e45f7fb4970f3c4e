package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/discord"
	"github.com/plumdale/spinwrap/internal/facts"
	"github.com/plumdale/spinwrap/internal/listening"
)

const (
	listenTimeout = 10 * time.Minute
	chatTimeout   = 2 * time.Minute
	musicTimeout  = 7 * time.Minute

	// A listen session ends after this many posted facts regardless of how
	// recently it was touched.
	listenFactCap = 10

	factRequestTimeout = 30 * time.Second
)

// Manager owns the three transient engagement registries: listen sessions
// keyed by user, chat and music sessions keyed by channel. Every record
// carries a single-shot inactivity timer that is always stopped before being
// replaced.
type Manager struct {
	clock  clock.Clock
	poster discord.Poster
	facts  facts.Generator

	mu           sync.Mutex
	listen       map[string]*listenSession
	chat         map[string]*chatSession
	chatChannels map[string]struct{}
	music        map[string]*musicSession
}

type listenSession struct {
	channelID   string
	guildID     string
	lastTrackID string
	factCount   int
	timer       clock.Timer
}

type chatSession struct {
	timer clock.Timer
}

type musicSession struct {
	botUserID string
	factCount int
	timer     clock.Timer
}

func NewManager(clk clock.Clock, poster discord.Poster, gen facts.Generator) *Manager {
	return &Manager{
		clock:        clk,
		poster:       poster,
		facts:        gen,
		listen:       make(map[string]*listenSession),
		chat:         make(map[string]*chatSession),
		chatChannels: make(map[string]struct{}),
		music:        make(map[string]*musicSession),
	}
}

// StartListen inserts or replaces the listen session for userID. Any timer
// belonging to a previous session is stopped first.
func (m *Manager) StartListen(userID, channelID, guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.listen[userID]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	ls := &listenSession{channelID: channelID, guildID: guildID}
	m.listen[userID] = ls
	m.armListenLocked(userID, ls)
	slog.Info("listen session started", "user_id", userID, "channel_id", channelID, "guild_id", guildID)
}

// EndListen removes the listen session for userID and reports whether one
// existed.
func (m *Manager) EndListen(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ls, ok := m.listen[userID]
	if !ok {
		return false
	}
	if ls.timer != nil {
		ls.timer.Stop()
	}
	delete(m.listen, userID)
	slog.Info("listen session ended by command", "user_id", userID)
	return true
}

func (m *Manager) IsListening(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.listen[userID]
	return ok
}

func (m *Manager) armListenLocked(userID string, ls *listenSession) {
	if ls.timer != nil {
		ls.timer.Stop()
	}
	ls.timer = m.clock.AfterFunc(listenTimeout, func() {
		m.expireListen(userID, ls)
	})
}

func (m *Manager) expireListen(userID string, ls *listenSession) {
	m.mu.Lock()
	if m.listen[userID] != ls {
		// The session was replaced between the timer firing and this
		// callback running.
		m.mu.Unlock()
		return
	}
	delete(m.listen, userID)
	channelID := ls.channelID
	m.mu.Unlock()

	slog.Info("listen session timed out", "user_id", userID, "channel_id", channelID)
	if err := m.poster.SendChannelMessage(channelID, messageListenTimedOut); err != nil {
		slog.Error("failed to post listen timeout notice", "error", err, "user_id", userID, "channel_id", channelID)
	}
}

// HandlePresenceUpdate feeds a gateway presence change into the listen
// registry: a new track on a tracked user's presence produces a fun-fact
// post, re-arms the inactivity timer and counts against the fact cap.
func (m *Manager) HandlePresenceUpdate(event discord.PresenceEvent) {
	activity, ok := listening.MusicActivity(event.Activities)
	if !ok {
		return
	}
	trackID, ok := listening.TrackID(activity)
	if !ok {
		return
	}

	m.mu.Lock()
	ls, ok := m.listen[event.UserID]
	if !ok || ls.lastTrackID == trackID {
		m.mu.Unlock()
		return
	}
	ls.lastTrackID = trackID
	ls.factCount++
	capped := ls.factCount >= listenFactCap
	channelID := ls.channelID
	if capped {
		if ls.timer != nil {
			ls.timer.Stop()
		}
		delete(m.listen, event.UserID)
	} else {
		m.armListenLocked(event.UserID, ls)
	}
	m.mu.Unlock()

	m.postTrackFact(channelID, activity)
	if capped {
		slog.Info("listen session reached fact cap", "user_id", event.UserID, "channel_id", channelID)
		if err := m.poster.SendChannelMessage(channelID, messageListenFactCapReached); err != nil {
			slog.Error("failed to post fact cap notice", "error", err, "channel_id", channelID)
		}
	}
}

func (m *Manager) postTrackFact(channelID string, activity discord.Activity) {
	title := activity.Title
	artist := listening.ArtistName(activity)
	content := fmt.Sprintf(messageNowPlayingFormat, title, artist)
	if m.facts.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), factRequestTimeout)
		defer cancel()
		fact, err := m.facts.TrackFact(ctx, title, artist)
		if err != nil {
			slog.Error("failed to generate track fact", "error", err, "track", title, "artist", artist)
		} else {
			content = fmt.Sprintf(messageTrackFactFormat, title, artist, fact)
		}
	}
	if err := m.poster.SendChannelMessage(channelID, content); err != nil {
		slog.Error("failed to post track fact", "error", err, "channel_id", channelID)
	}
}

// StartChat enables chat mode for a channel. The channel is chat-enabled iff
// it is present in both the session map and the active-channel set.
func (m *Manager) StartChat(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.chat[channelID]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	cs := &chatSession{}
	m.chat[channelID] = cs
	m.chatChannels[channelID] = struct{}{}
	m.armChatLocked(channelID, cs)
	slog.Info("chat session started", "channel_id", channelID)
}

// TouchChat re-arms the chat inactivity timer. No-op when the channel is not
// chat-enabled.
func (m *Manager) TouchChat(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.chat[channelID]
	if !ok {
		return
	}
	m.armChatLocked(channelID, cs)
}

func (m *Manager) EndChat(channelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.chat[channelID]
	if !ok {
		return false
	}
	if cs.timer != nil {
		cs.timer.Stop()
	}
	delete(m.chat, channelID)
	delete(m.chatChannels, channelID)
	slog.Info("chat session ended by command", "channel_id", channelID)
	return true
}

func (m *Manager) IsChatEnabled(channelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, inSet := m.chatChannels[channelID]
	_, inMap := m.chat[channelID]
	return inSet && inMap
}

func (m *Manager) armChatLocked(channelID string, cs *chatSession) {
	if cs.timer != nil {
		cs.timer.Stop()
	}
	cs.timer = m.clock.AfterFunc(chatTimeout, func() {
		m.expireChat(channelID, cs)
	})
}

func (m *Manager) expireChat(channelID string, cs *chatSession) {
	m.mu.Lock()
	if m.chat[channelID] != cs {
		m.mu.Unlock()
		return
	}
	delete(m.chat, channelID)
	delete(m.chatChannels, channelID)
	m.mu.Unlock()

	slog.Info("chat session timed out", "channel_id", channelID)
	if err := m.poster.SendChannelMessage(channelID, messageChatTimedOut); err != nil {
		slog.Error("failed to post chat timeout notice", "error", err, "channel_id", channelID)
	}
}

// TouchMusic records music-bot activity in a channel, creating the session
// on first sight. Music sessions have no fact cap; only the inactivity timer
// ends them.
func (m *Manager) TouchMusic(channelID, botUserID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.music[channelID]
	if !ok {
		ms = &musicSession{botUserID: botUserID}
		m.music[channelID] = ms
		slog.Info("music session started", "channel_id", channelID, "bot_user_id", botUserID)
	}
	ms.factCount++
	m.armMusicLocked(channelID, ms)
}

func (m *Manager) EndMusic(channelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.music[channelID]
	if !ok {
		return false
	}
	if ms.timer != nil {
		ms.timer.Stop()
	}
	delete(m.music, channelID)
	return true
}

func (m *Manager) MusicBotUserID(channelID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.music[channelID]
	if !ok {
		return "", false
	}
	return ms.botUserID, true
}

func (m *Manager) armMusicLocked(channelID string, ms *musicSession) {
	if ms.timer != nil {
		ms.timer.Stop()
	}
	ms.timer = m.clock.AfterFunc(musicTimeout, func() {
		m.expireMusic(channelID, ms)
	})
}

func (m *Manager) expireMusic(channelID string, ms *musicSession) {
	m.mu.Lock()
	if m.music[channelID] != ms {
		m.mu.Unlock()
		return
	}
	delete(m.music, channelID)
	m.mu.Unlock()

	slog.Info("music session timed out", "channel_id", channelID, "facts", ms.factCount)
	if err := m.poster.SendChannelMessage(channelID, messageMusicTimedOut); err != nil {
		slog.Error("failed to post music timeout notice", "error", err, "channel_id", channelID)
	}
}

// HandleMessageCreate keeps chat and music sessions alive from the message
// stream: human messages touch chat sessions, a tracked music bot's
// now-playing posts touch music sessions, and any bot's now-playing post
// starts tracking it.
func (m *Manager) HandleMessageCreate(event discord.MessageEvent) {
	if !event.AuthorIsBot {
		m.TouchChat(event.ChannelID)
		return
	}
	if botID, ok := m.MusicBotUserID(event.ChannelID); ok {
		if botID == event.AuthorID {
			m.TouchMusic(event.ChannelID, event.AuthorID)
		}
		return
	}
	if looksLikeNowPlaying(event.Content) {
		m.TouchMusic(event.ChannelID, event.AuthorID)
	}
}

func looksLikeNowPlaying(content string) bool {
	c := strings.ToLower(content)
	return strings.Contains(c, "now playing") || strings.Contains(c, "started playing")
}
