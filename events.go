package tmi

// Sink receives every server-initiated event the session dispatches. Each
// method is called synchronously from the worker goroutine, in arrival
// order; implementations must not block for long, since doing so stalls
// the worker's ability to process further input and submitted actions.
//
// Embed NoOpSink to satisfy Sink without implementing every method.
type Sink interface {
	OnLogIn()
	OnLogOut()
	OnDoom()
	OnNameList(NameList)
	OnJoin(Join)
	OnLeave(Leave)
	OnMessage(ChatMessage)
	OnPrivateMessage(PrivateMessage)
	OnWhisper(Whisper)
	OnNotice(Notice)
	OnHost(Host)
	OnRoomModeChange(RoomModeChange)
	OnSub(Sub)
	OnRitual(Ritual)
	OnRaid(Raid)
	OnMod(Mod)
	OnClear(Clear)
	OnUserState(UserState)
}

// NoOpSink implements Sink with empty methods. Embed it in a type that only
// cares about a handful of events, or use it directly as Config.Sink.
type NoOpSink struct{}

func (NoOpSink) OnLogIn()                        {}
func (NoOpSink) OnLogOut()                       {}
func (NoOpSink) OnDoom()                         {}
func (NoOpSink) OnNameList(NameList)             {}
func (NoOpSink) OnJoin(Join)                     {}
func (NoOpSink) OnLeave(Leave)                   {}
func (NoOpSink) OnMessage(ChatMessage)           {}
func (NoOpSink) OnPrivateMessage(PrivateMessage) {}
func (NoOpSink) OnWhisper(Whisper)               {}
func (NoOpSink) OnNotice(Notice)                 {}
func (NoOpSink) OnHost(Host)                     {}
func (NoOpSink) OnRoomModeChange(RoomModeChange) {}
func (NoOpSink) OnSub(Sub)                       {}
func (NoOpSink) OnRitual(Ritual)                 {}
func (NoOpSink) OnRaid(Raid)                     {}
func (NoOpSink) OnMod(Mod)                       {}
func (NoOpSink) OnClear(Clear)                   {}
func (NoOpSink) OnUserState(UserState)           {}

var _ Sink = NoOpSink{}

// NameList carries the usernames currently visible in a channel, from
// RPL_NAMREPLY (353).
type NameList struct {
	Channel string
	Names   []string
}

// Join is fired when a user (including, sometimes, ourselves) joins a
// channel. Anonymous "justinfanNNNNN" joins are not surfaced.
type Join struct {
	User    string
	Channel string
}

// Leave is fired when a user departs a channel.
type Leave struct {
	User    string
	Channel string
}

// ChatMessage is a channel chat message.
type ChatMessage struct {
	User      string
	Channel   string
	Content   string
	IsAction  bool
	MessageID string
	Bits      int
	Tags      TagSet
}

// PrivateMessage is a PRIVMSG whose target was not a channel (the rare case
// where Twitch delivers a PRIVMSG outside of #channel form).
type PrivateMessage struct {
	User      string
	Content   string
	IsAction  bool
	MessageID string
	Bits      int
	Tags      TagSet
}

// Whisper is an incoming WHISPER.
type Whisper struct {
	User     string
	Message  string
	ThreadID string
	Tags     TagSet
}

// Notice is a server NOTICE, either channel-scoped or global (Channel=="").
type Notice struct {
	Channel string
	Message string
	ID      string
}

// Host is fired on HOSTTARGET. BeingHosted is empty when the host ended
// (target was "-").
type Host struct {
	Hosting     string
	BeingHosted string
	On          bool
	Viewers     int
}

// RoomModeChange is fired once per recognized mode present in a ROOMSTATE's
// tags (slow, followers-only, r9k, emote-only, subs-only).
type RoomModeChange struct {
	Channel   string
	ChannelID int64
	Mode      string
	Param     int
}

// SubType distinguishes the four USERNOTICE msg-id values that represent a
// subscription event.
type SubType int

const (
	SubNew SubType = iota
	SubResub
	SubGift
	SubMysteryGift
)

// Sub is fired for sub/resub/subgift/submysterygift USERNOTICE events.
type Sub struct {
	Type          SubType
	User          string
	Channel       string
	Months        int
	Plan          string
	RecipientUser string
	RecipientID   int64
	SenderCount   int
	SystemMessage string
	Tags          TagSet
}

// Ritual is fired for msg-id=ritual USERNOTICE events (e.g. new-chatter).
type Ritual struct {
	User          string
	Channel       string
	SystemMessage string
	Tags          TagSet
}

// Raid is fired for msg-id=raid USERNOTICE events.
type Raid struct {
	FromChannel   string
	ToChannel     string
	Viewers       int
	SystemMessage string
	Tags          TagSet
}

// Mod is fired for MODE +o/-o changes.
type Mod struct {
	Channel string
	User    string
	IsMod   bool
}

// ClearKind distinguishes the three CLEARCHAT shapes and the CLEARMSG
// single-message deletion.
type ClearKind int

const (
	ClearAll ClearKind = iota
	ClearTimeout
	ClearBan
	ClearMessageDelete
)

// Clear is fired for CLEARCHAT (ClearAll/ClearTimeout/ClearBan) and CLEARMSG
// (ClearMessageDelete) events.
type Clear struct {
	Kind     ClearKind
	Channel  string
	User     string
	Duration int // seconds, ClearTimeout only

	Reason string // decoded ban-reason, ClearTimeout/ClearBan only

	// OffendingContent/OffendingID are set only for ClearMessageDelete.
	OffendingContent string
	OffendingID      string
}

// UserState is fired for USERSTATE (Global=false) and GLOBALUSERSTATE
// (Global=true).
type UserState struct {
	Global  bool
	Channel string
	Tags    TagSet
}

// ChannelState is the worker-owned, per-channel cache of the most recently
// observed USERSTATE/ROOMSTATE tags, queryable through Client.ChannelState
// without waiting on the next server push.
type ChannelState struct {
	UserTags TagSet
	RoomTags TagSet
}
