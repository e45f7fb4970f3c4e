package repository

import "context"

type WrapGuildRepository interface {
	ListWrapGuilds(ctx context.Context) ([]WrapGuild, error)
	GetWrapGuild(ctx context.Context, guildID string) (*WrapGuild, error)
	UpsertWrapGuild(ctx context.Context, guild WrapGuild) error
	DeleteWrapGuild(ctx context.Context, guildID string) error
	SetWrapGuildPostTime(ctx context.Context, guildID, postTime string) error
	SetWrapGuildChannel(ctx context.Context, guildID, channelID string) error
	SetWrapGuildInterval(ctx context.Context, guildID string, intervalHours int) error
}

type TallyRepository interface {
	GetTally(ctx context.Context, guildID, userID string) (*UserTally, error)
	UpsertTally(ctx context.Context, tally UserTally) error
	ListGuildTallies(ctx context.Context, guildID string) ([]UserTally, error)
	ResetGuildTallies(ctx context.Context, guildID string) error
}

type Repository interface {
	WrapGuildRepository
	TallyRepository
}
