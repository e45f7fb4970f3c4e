package session

const (
	messageListenTimedOut       = ":zzz: **Listen session closed due to inactivity.** Use /listen to start again."
	messageListenFactCapReached = ":checkered_flag: **That's 10 songs — listen session complete!** Use /listen to start a new one."
	messageChatTimedOut         = ":zzz: **Chat mode turned off due to inactivity.**"
	messageMusicTimedOut        = ":zzz: **Stopped following the music bot in this channel.**"

	messageNowPlayingFormat = ":musical_note: **%s** by **%s**"
	messageTrackFactFormat  = ":musical_note: **%s** by **%s**\n-# %s"
)
