package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plumdale/spinwrap/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListWrapGuilds(ctx context.Context) ([]repository.WrapGuild, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild_id, channel_id, post_time, interval_hours, enrolled_at
		 FROM wrap_guilds`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.WrapGuild
	for rows.Next() {
		var g repository.WrapGuild
		if err := rows.Scan(&g.GuildID, &g.ChannelID, &g.PostTime, &g.IntervalHours, &g.EnrolledAt); err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) GetWrapGuild(ctx context.Context, guildID string) (*repository.WrapGuild, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT guild_id, channel_id, post_time, interval_hours, enrolled_at
		 FROM wrap_guilds WHERE guild_id = $1`,
		guildID)
	var g repository.WrapGuild
	err := row.Scan(&g.GuildID, &g.ChannelID, &g.PostTime, &g.IntervalHours, &g.EnrolledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *PostgresRepository) UpsertWrapGuild(ctx context.Context, guild repository.WrapGuild) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wrap_guilds (guild_id, channel_id, post_time, interval_hours, enrolled_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (guild_id) DO UPDATE
		 SET channel_id = EXCLUDED.channel_id,
		     post_time = EXCLUDED.post_time,
		     interval_hours = EXCLUDED.interval_hours`,
		guild.GuildID, guild.ChannelID, guild.PostTime, guild.IntervalHours, guild.EnrolledAt)
	return err
}

func (r *PostgresRepository) DeleteWrapGuild(ctx context.Context, guildID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wrap_guilds WHERE guild_id = $1`, guildID)
	return err
}

func (r *PostgresRepository) SetWrapGuildPostTime(ctx context.Context, guildID, postTime string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE wrap_guilds SET post_time = $2 WHERE guild_id = $1`,
		guildID, postTime)
	return err
}

func (r *PostgresRepository) SetWrapGuildChannel(ctx context.Context, guildID, channelID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE wrap_guilds SET channel_id = $2 WHERE guild_id = $1`,
		guildID, channelID)
	return err
}

func (r *PostgresRepository) SetWrapGuildInterval(ctx context.Context, guildID string, intervalHours int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE wrap_guilds SET interval_hours = $2 WHERE guild_id = $1`,
		guildID, intervalHours)
	return err
}

func (r *PostgresRepository) GetTally(ctx context.Context, guildID, userID string) (*repository.UserTally, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT guild_id, user_id, tracks, artists, top_track, top_artist, updated_at
		 FROM user_tracks WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID)
	t, err := scanTally(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) UpsertTally(ctx context.Context, tally repository.UserTally) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_tracks (guild_id, user_id, tracks, artists, top_track, top_artist, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (guild_id, user_id) DO UPDATE
		 SET tracks = EXCLUDED.tracks,
		     artists = EXCLUDED.artists,
		     top_track = EXCLUDED.top_track,
		     top_artist = EXCLUDED.top_artist,
		     updated_at = EXCLUDED.updated_at`,
		tally.GuildID, tally.UserID, tally.Tracks, tally.Artists, tally.TopTrack, tally.TopArtist, tally.UpdatedAt)
	return err
}

func (r *PostgresRepository) ListGuildTallies(ctx context.Context, guildID string) ([]repository.UserTally, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild_id, user_id, tracks, artists, top_track, top_artist, updated_at
		 FROM user_tracks WHERE guild_id = $1 ORDER BY user_id ASC`,
		guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.UserTally
	for rows.Next() {
		t, err := scanTally(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) ResetGuildTallies(ctx context.Context, guildID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_tracks
		 SET tracks = '[]'::jsonb, artists = '[]'::jsonb, top_track = '', top_artist = '', updated_at = $2
		 WHERE guild_id = $1`,
		guildID, time.Now().UTC())
	return err
}

func scanTally(row pgx.Row) (*repository.UserTally, error) {
	var t repository.UserTally
	err := row.Scan(&t.GuildID, &t.UserID, &t.Tracks, &t.Artists, &t.TopTrack, &t.TopArtist, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
