package discord

import "context"

type SlashCommandDefinition struct {
	Name        string
	Description string
	Options     []SlashCommandOption
}

type SlashCommandOption struct {
	Name        string
	Description string
	Required    bool
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	Options          map[string]string
	RespondEphemeral func(content string) error
	RespondPage      func(page PageView) error
}

// ComponentEvent fires when a user clicks a message component. CustomID is
// the opaque identifier attached when the component was posted; UpdatePage
// edits the originating message in place.
type ComponentEvent struct {
	GuildID    string
	ChannelID  string
	UserID     string
	CustomID   string
	UpdatePage func(page PageView) error
}

// PresenceEvent is the normalized shape of a gateway presence update. Only
// the fields the aggregator and listen sessions consume are carried.
type PresenceEvent struct {
	UserID     string
	GuildID    string
	Activities []Activity
}

// Activity is a single presence activity. Source names the streaming
// platform when known ("Spotify" for Spotify activities). SyncID is the
// platform's stable catalog identifier and may be empty.
type Activity struct {
	Kind       ActivityKind
	Source     string
	Title      string
	Subtitle   string
	DetailText string
	SyncID     string
}

type ActivityKind int

const (
	ActivityOther ActivityKind = iota
	ActivityListening
)

type MessageEvent struct {
	GuildID     string
	ChannelID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
}

// PageView is the renderer-agnostic shape of one paginated summary page.
// The discord layer turns it into an embed plus optional nav buttons.
type PageView struct {
	Title        string
	Description  string
	Footer       string
	Page         int
	TotalPages   int
	HasNav       bool
	PrevDisabled bool
	NextDisabled bool
	PrevCustomID string
	NextCustomID string
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	SendChannelMessage(channelID, content string) error
	SendChannelPage(channelID string, page PageView) error
	RegisterPresenceUpdateHandler(handler func(PresenceEvent))
	RegisterMessageCreateHandler(handler func(MessageEvent))
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	RegisterComponentHandler(handler func(ComponentEvent))
	UpsertGlobalSlashCommands(defs []SlashCommandDefinition) error
	GetBotUserID() (string, error)
	Run() error
}

// Poster is the narrow outbound surface used by the session registries and
// the wrap scheduler. Client satisfies it.
type Poster interface {
	SendChannelMessage(channelID, content string) error
	SendChannelPage(channelID string, page PageView) error
}
