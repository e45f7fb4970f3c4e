package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plumdale/spinwrap/internal/wrap"
)

const (
	changeChannel       = "wrap_guild_changes"
	listenRetryInterval = 5 * time.Second
)

// MembershipListener pushes wrap_guilds changes into the in-memory
// membership set via Postgres LISTEN/NOTIFY. The bot works without it
// (membership is loaded at startup); this keeps multiple bot processes in
// sync with out-of-band table edits.
type MembershipListener struct {
	pool       *pgxpool.Pool
	membership *wrap.Membership
}

func NewMembershipListener(pool *pgxpool.Pool, membership *wrap.Membership) *MembershipListener {
	return &MembershipListener{pool: pool, membership: membership}
}

// Run blocks until ctx is canceled, reconnecting after failures.
func (l *MembershipListener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("wrap change feed interrupted; reconnecting", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetryInterval):
		}
	}
}

func (l *MembershipListener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		return err
	}
	slog.Info("wrap change feed listening", "channel", changeChannel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.apply(notification.Payload)
	}
}

func (l *MembershipListener) apply(payload string) {
	op, guildID, found := strings.Cut(payload, ":")
	if !found || guildID == "" {
		slog.Warn("ignoring malformed wrap change notification", "payload", payload)
		return
	}
	enabled := op != "DELETE"
	l.membership.ApplyChange(guildID, enabled)
	slog.Info("wrap membership changed via feed", "guild_id", guildID, "enabled", enabled)
}
