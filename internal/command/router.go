// Package command routes slash commands and button interactions to the
// session registries and wrap configuration operations, and formats short
// user-facing replies.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/discord"
	"github.com/plumdale/spinwrap/internal/repository"
	"github.com/plumdale/spinwrap/internal/session"
	"github.com/plumdale/spinwrap/internal/wrap"
)

const (
	commandListen      = "listen"
	commandEndListen   = "endlisten"
	commandChat        = "chat"
	commandEndChat     = "endchat"
	commandWrap        = "wrap"
	commandUnwrap      = "unwrap"
	commandUpdate      = "update"
	commandSetTime     = "settime"
	commandSetChannel  = "setchannel"
	commandSetInterval = "setinterval"

	commandTimeout = 10 * time.Second

	defaultPostTime = "00:00:00"

	maxIntervalHours = 6
)

type Router struct {
	sessions   *session.Manager
	membership *wrap.Membership
	repo       repository.Repository
	clock      clock.Clock
}

func NewRouter(sessions *session.Manager, membership *wrap.Membership, repo repository.Repository, clk clock.Clock) *Router {
	return &Router{sessions: sessions, membership: membership, repo: repo, clock: clk}
}

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: commandListen, Description: "Post fun facts about the songs you play on Spotify."},
		{Name: commandEndListen, Description: "Stop your listen session."},
		{Name: commandChat, Description: "Enable chat mode in this channel."},
		{Name: commandEndChat, Description: "Disable chat mode in this channel."},
		{Name: commandWrap, Description: "Enable the daily listening wrap for this server.", Options: []discord.SlashCommandOption{
			{Name: "time", Description: "Daily post time in UTC, HH:MM (default 00:00)."},
		}},
		{Name: commandUnwrap, Description: "Disable the daily listening wrap for this server."},
		{Name: commandUpdate, Description: "Show today's listening tallies so far."},
		{Name: commandSetTime, Description: "Change the wrap post time.", Options: []discord.SlashCommandOption{
			{Name: "time", Description: "Post time in UTC, HH:MM.", Required: true},
		}},
		{Name: commandSetChannel, Description: "Post the wrap in this channel."},
		{Name: commandSetInterval, Description: "Repeat the wrap every N hours (0 = once daily).", Options: []discord.SlashCommandOption{
			{Name: "hours", Description: "Repeat interval, 0-6 hours.", Required: true},
		}},
	}
}

func (r *Router) HandleSlashCommand(event discord.SlashCommandEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var reply string
	switch event.CommandName {
	case commandListen:
		r.sessions.StartListen(event.UserID, event.ChannelID, event.GuildID)
		reply = messageListenStarted
	case commandEndListen:
		if r.sessions.EndListen(event.UserID) {
			reply = messageListenEnded
		} else {
			reply = messageNoListenSession
		}
	case commandChat:
		r.sessions.StartChat(event.ChannelID)
		reply = messageChatStarted
	case commandEndChat:
		if r.sessions.EndChat(event.ChannelID) {
			reply = messageChatEnded
		} else {
			reply = messageNoChatSession
		}
	case commandWrap:
		reply = r.handleWrap(ctx, event)
	case commandUnwrap:
		r.membership.Disable(ctx, event.GuildID)
		reply = messageWrapDisabled
	case commandUpdate:
		r.handleUpdate(ctx, event)
		return
	case commandSetTime:
		reply = r.handleSetTime(ctx, event)
	case commandSetChannel:
		reply = r.handleSetChannel(ctx, event)
	case commandSetInterval:
		reply = r.handleSetInterval(ctx, event)
	default:
		reply = messageUnknownCommand
	}

	if err := event.RespondEphemeral(reply); err != nil {
		slog.Error("failed to respond to slash command", "error", err, "command", event.CommandName, "guild_id", event.GuildID)
	}
}

func (r *Router) handleWrap(ctx context.Context, event discord.SlashCommandEvent) string {
	postTime := defaultPostTime
	if input, ok := event.Options["time"]; ok && input != "" {
		normalized, err := wrap.NormalizePostTime(input)
		if err != nil {
			return messageBadPostTime
		}
		postTime = normalized
	}
	ok := r.membership.Enable(ctx, repository.WrapGuild{
		GuildID:    event.GuildID,
		ChannelID:  event.ChannelID,
		PostTime:   postTime,
		EnrolledAt: r.clock.Now().UTC(),
	})
	if !ok {
		return messageWrapEnableFailed
	}
	return fmt.Sprintf(messageWrapEnabledFormat, postTime[:5])
}

func (r *Router) handleUpdate(ctx context.Context, event discord.SlashCommandEvent) {
	if !r.membership.IsEnabled(event.GuildID) {
		if err := event.RespondEphemeral(messageNotWrapped); err != nil {
			slog.Error("failed to respond to slash command", "error", err, "command", commandUpdate, "guild_id", event.GuildID)
		}
		return
	}
	page, err := r.buildTallyPage(ctx, event.GuildID, 0)
	if err != nil {
		slog.Error("failed to build tally page", "error", err, "guild_id", event.GuildID)
		if err := event.RespondEphemeral(messageUpdateFailed); err != nil {
			slog.Error("failed to respond to slash command", "error", err, "command", commandUpdate, "guild_id", event.GuildID)
		}
		return
	}
	if err := event.RespondPage(page); err != nil {
		slog.Error("failed to respond with tally page", "error", err, "guild_id", event.GuildID)
	}
}

func (r *Router) handleSetTime(ctx context.Context, event discord.SlashCommandEvent) string {
	if !r.membership.IsEnabled(event.GuildID) {
		return messageNotWrapped
	}
	normalized, err := wrap.NormalizePostTime(event.Options["time"])
	if err != nil {
		return messageBadPostTime
	}
	if err := r.repo.SetWrapGuildPostTime(ctx, event.GuildID, normalized); err != nil {
		slog.Error("failed to set wrap post time", "error", err, "guild_id", event.GuildID)
		return messageSettingFailed
	}
	return fmt.Sprintf(messageTimeSetFormat, normalized[:5])
}

func (r *Router) handleSetChannel(ctx context.Context, event discord.SlashCommandEvent) string {
	if !r.membership.IsEnabled(event.GuildID) {
		return messageNotWrapped
	}
	if err := r.repo.SetWrapGuildChannel(ctx, event.GuildID, event.ChannelID); err != nil {
		slog.Error("failed to set wrap channel", "error", err, "guild_id", event.GuildID)
		return messageSettingFailed
	}
	return messageChannelSet
}

func (r *Router) handleSetInterval(ctx context.Context, event discord.SlashCommandEvent) string {
	if !r.membership.IsEnabled(event.GuildID) {
		return messageNotWrapped
	}
	hours, err := strconv.Atoi(event.Options["hours"])
	if err != nil || hours < 0 || hours > maxIntervalHours {
		return messageBadInterval
	}
	if err := r.repo.SetWrapGuildInterval(ctx, event.GuildID, hours); err != nil {
		slog.Error("failed to set wrap interval", "error", err, "guild_id", event.GuildID)
		return messageSettingFailed
	}
	if hours == 0 {
		return messageIntervalCleared
	}
	return fmt.Sprintf(messageIntervalSetFormat, hours)
}

// HandleComponent replays the tally pagination for nav button clicks. The
// button's custom ID carries the guild and target page, so the handler is a
// stateless rebuild from current tallies.
func (r *Router) HandleComponent(event discord.ComponentEvent) {
	guildID, page, ok := wrap.ParseNavCustomID(event.CustomID)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	view, err := r.buildTallyPage(ctx, guildID, page)
	if err != nil {
		slog.Error("failed to rebuild tally page", "error", err, "guild_id", guildID, "page", page)
		return
	}
	if err := event.UpdatePage(view); err != nil {
		slog.Error("failed to update tally page", "error", err, "guild_id", guildID, "page", page)
	}
}

func (r *Router) buildTallyPage(ctx context.Context, guildID string, page int) (discord.PageView, error) {
	tallies, err := r.repo.ListGuildTallies(ctx, guildID)
	if err != nil {
		return discord.PageView{}, fmt.Errorf("failed to list guild tallies: %w", err)
	}
	lines := wrap.SummaryLines(tallies)
	title := fmt.Sprintf(updateTitleFormat, r.clock.Now().UTC().Format(time.DateOnly))
	return wrap.BuildGuildPage(guildID, lines, page, title), nil
}
