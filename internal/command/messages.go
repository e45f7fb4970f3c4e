package command

const (
	messageUnknownCommand = ":warning: **Unknown command.**"

	messageListenStarted   = ":ear: **Listening along!** Play something on Spotify and facts will follow."
	messageListenEnded     = ":wave: **Listen session ended.**"
	messageNoListenSession = ":warning: **You don't have a listen session running.**"

	messageChatStarted   = ":speech_balloon: **Chat mode enabled in this channel.**"
	messageChatEnded     = ":wave: **Chat mode disabled.**"
	messageNoChatSession = ":warning: **Chat mode isn't enabled in this channel.**"

	messageWrapEnabledFormat = ":headphones: **Daily wrap enabled!** Summaries post here at %s UTC."
	messageWrapEnableFailed  = ":warning: **Couldn't save the wrap settings.** Tracking is on for now, but it may not survive a restart."
	messageWrapDisabled      = ":wave: **Daily wrap disabled.**"
	messageNotWrapped        = ":warning: **The daily wrap isn't enabled here.** Use /wrap first."
	messageUpdateFailed      = ":warning: **Couldn't load today's tallies.**"

	messageBadPostTime       = ":warning: **That time doesn't look right.** Use HH:MM in 24-hour UTC, like 21:30."
	messageBadInterval       = ":warning: **Interval must be between 0 and 6 hours.**"
	messageSettingFailed     = ":warning: **Couldn't save that setting.**"
	messageTimeSetFormat     = ":clock3: **Wrap time set to %s UTC.**"
	messageChannelSet        = ":inbox_tray: **Wrap summaries will post in this channel.**"
	messageIntervalSetFormat = ":repeat: **Wrap repeats every %d hours.**"
	messageIntervalCleared   = ":repeat_one: **Wrap posts once daily.**"

	updateTitleFormat = ":headphones: Listening so far — %s"
)
