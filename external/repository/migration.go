package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS wrap_guilds (
		guild_id TEXT PRIMARY KEY,
		channel_id TEXT NOT NULL,
		post_time TEXT NOT NULL DEFAULT '00:00:00',
		interval_hours INTEGER NOT NULL DEFAULT 0,
		enrolled_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_tracks (
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		tracks JSONB NOT NULL DEFAULT '[]'::jsonb,
		artists JSONB NOT NULL DEFAULT '[]'::jsonb,
		top_track TEXT NOT NULL DEFAULT '',
		top_artist TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (guild_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_tracks_guild ON user_tracks (guild_id)`,
	`CREATE OR REPLACE FUNCTION notify_wrap_guild_change() RETURNS trigger AS $$
	BEGIN
		IF TG_OP = 'DELETE' THEN
			PERFORM pg_notify('wrap_guild_changes', TG_OP || ':' || OLD.guild_id);
			RETURN OLD;
		END IF;
		PERFORM pg_notify('wrap_guild_changes', TG_OP || ':' || NEW.guild_id);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS trg_wrap_guilds_notify ON wrap_guilds`,
	`CREATE TRIGGER trg_wrap_guilds_notify
	 AFTER INSERT OR UPDATE OR DELETE ON wrap_guilds
	 FOR EACH ROW EXECUTE FUNCTION notify_wrap_guild_change()`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
