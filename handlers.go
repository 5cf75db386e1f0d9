package tmi

import (
	"strconv"
	"strings"
)

// handleSteadyState dispatches a parsed inbound line to the handler for its
// command. Unrecognized commands are dropped silently; Twitch's IRC
// surface grows numerics and tags over time and an unhandled one is not an
// error condition worth logging on every line.
func (c *Client) handleSteadyState(m Message) {
	switch m.Command {
	case cmdPing:
		c.handlePing(m)
	case cmdNamReply:
		c.handleNamReply(m)
	case cmdJoin:
		c.handleJoin(m)
	case cmdPart:
		c.handlePart(m)
	case cmdPrivmsg:
		c.handlePrivmsg(m)
	case cmdWhisper:
		c.handleWhisper(m)
	case cmdNotice:
		c.handleNotice(m)
	case cmdHostTarget:
		c.handleHostTarget(m)
	case cmdRoomState:
		c.handleRoomState(m)
	case cmdClearChat:
		c.handleClearChat(m)
	case cmdClearMsg:
		c.handleClearMsg(m)
	case cmdMode:
		c.handleMode(m)
	case cmdGlobalUser:
		c.handleGlobalUserState(m)
	case cmdUserState:
		c.handleUserState(m)
	case cmdReconnect:
		c.handleReconnect(m)
	case cmdUserNotice:
		c.handleUserNotice(m)
	}
}

// handlePing always answers, regardless of login phase: Twitch pings the
// connection before the handshake completes too.
func (c *Client) handlePing(m Message) {
	c.send(linePong(m.ParamAt(0)))
}

func (c *Client) handleNamReply(m Message) {
	c.cfg.Sink.OnNameList(NameList{
		Channel: stripChannelHash(m.ParamAt(2)),
		Names:   strings.Fields(m.ParamAt(3)),
	})
}

func (c *Client) handleJoin(m Message) {
	nick := m.nick()
	if isAnonymousNick(nick) {
		return
	}
	c.cfg.Sink.OnJoin(Join{User: nick, Channel: stripChannelHash(m.ParamAt(0))})
}

func (c *Client) handlePart(m Message) {
	nick := m.nick()
	if isAnonymousNick(nick) {
		return
	}
	c.cfg.Sink.OnLeave(Leave{User: nick, Channel: stripChannelHash(m.ParamAt(0))})
}

// ctcpAction wraps /me-style messages; stripping it here means callers see
// the plain text either way, with IsAction telling them which it was.
const (
	ctcpActionPrefix = "\x01ACTION "
	ctcpActionSuffix = "\x01"
)

func splitAction(text string) (content string, isAction bool) {
	if strings.HasPrefix(text, ctcpActionPrefix) && strings.HasSuffix(text, ctcpActionSuffix) {
		return strings.TrimSuffix(strings.TrimPrefix(text, ctcpActionPrefix), ctcpActionSuffix), true
	}
	return text, false
}

func (c *Client) handlePrivmsg(m Message) {
	target := m.ParamAt(0)
	content, isAction := splitAction(m.ParamAt(1))
	bits, _ := strconv.Atoi(m.Tags.Get("bits"))

	if strings.HasPrefix(target, "#") {
		c.cfg.Sink.OnMessage(ChatMessage{
			User:      m.nick(),
			Channel:   stripChannelHash(target),
			Content:   content,
			IsAction:  isAction,
			MessageID: m.Tags.MessageID,
			Bits:      bits,
			Tags:      m.Tags,
		})
		return
	}
	c.cfg.Sink.OnPrivateMessage(PrivateMessage{
		User:      m.nick(),
		Content:   content,
		IsAction:  isAction,
		MessageID: m.Tags.MessageID,
		Bits:      bits,
		Tags:      m.Tags,
	})
}

func (c *Client) handleWhisper(m Message) {
	c.cfg.Sink.OnWhisper(Whisper{
		User:     m.nick(),
		Message:  m.ParamAt(1),
		ThreadID: m.Tags.Get("thread-id"),
		Tags:     m.Tags,
	})
}

// authFailureLoginUnsuccessful and authFailureAuthFailed are the exact NOTICE
// bodies Twitch sends for a bad PASS/NICK combination during login.
const (
	authFailureLoginUnsuccessful = "Login unsuccessful"
	authFailureAuthFailed        = "Login authentication failed"
)

func (c *Client) handleNotice(m Message) {
	target := m.ParamAt(0)
	var channel string
	if target != "*" {
		channel = stripChannelHash(target)
	}
	text := m.ParamAt(1)
	c.cfg.Sink.OnNotice(Notice{Channel: channel, Message: text, ID: m.Tags.Get("msg-id")})

	if !c.sess.loggedIn && (text == authFailureLoginUnsuccessful || text == authFailureAuthFailed) {
		c.handleAuthFailureNotice()
	}
}

func (c *Client) handleHostTarget(m Message) {
	hosting := stripChannelHash(m.ParamAt(0))
	fields := strings.Fields(m.ParamAt(1))

	on := true
	var beingHosted string
	if len(fields) > 0 {
		if fields[0] == "-" {
			on = false
		} else {
			beingHosted = fields[0]
		}
	}
	var viewers int
	if len(fields) > 1 {
		viewers, _ = strconv.Atoi(fields[1])
	}
	c.cfg.Sink.OnHost(Host{Hosting: hosting, BeingHosted: beingHosted, On: on, Viewers: viewers})
}

// roomModeTags lists the ROOMSTATE tags this package surfaces as
// RoomModeChange events, in the order Twitch documents them.
var roomModeTags = []string{"slow", "followers-only", "r9k", "emote-only", "subs-only"}

func (c *Client) handleRoomState(m Message) {
	channel := stripChannelHash(m.ParamAt(0))
	for _, mode := range roomModeTags {
		if !m.Tags.Has(mode) {
			continue
		}
		param, _ := strconv.Atoi(m.Tags.Get(mode))
		c.cfg.Sink.OnRoomModeChange(RoomModeChange{
			Channel:   channel,
			ChannelID: m.Tags.ChannelID,
			Mode:      mode,
			Param:     param,
		})
	}
	c.setRoomState(channel, m.Tags)
}

func (c *Client) handleClearChat(m Message) {
	channel := stripChannelHash(m.ParamAt(0))
	user := m.ParamAt(1)
	if user == "" {
		c.cfg.Sink.OnClear(Clear{Kind: ClearAll, Channel: channel})
		return
	}
	reason := unescapeTagValue(m.Tags.Get("ban-reason"))
	if dur := m.Tags.Get("ban-duration"); dur != "" {
		seconds, _ := strconv.Atoi(dur)
		c.cfg.Sink.OnClear(Clear{Kind: ClearTimeout, Channel: channel, User: user, Duration: seconds, Reason: reason})
		return
	}
	c.cfg.Sink.OnClear(Clear{Kind: ClearBan, Channel: channel, User: user, Reason: reason})
}

func (c *Client) handleClearMsg(m Message) {
	c.cfg.Sink.OnClear(Clear{
		Kind:             ClearMessageDelete,
		Channel:          stripChannelHash(m.ParamAt(0)),
		User:             m.Tags.Get("login"),
		OffendingContent: m.ParamAt(1),
		OffendingID:      m.Tags.Get("target-msg-id"),
	})
}

func (c *Client) handleMode(m Message) {
	flag := m.ParamAt(1)
	if flag != "+o" && flag != "-o" {
		return
	}
	c.cfg.Sink.OnMod(Mod{
		Channel: stripChannelHash(m.ParamAt(0)),
		User:    m.ParamAt(2),
		IsMod:   flag == "+o",
	})
}

func (c *Client) handleGlobalUserState(m Message) {
	c.cfg.Sink.OnUserState(UserState{Global: true, Tags: m.Tags})
}

func (c *Client) handleUserState(m Message) {
	channel := stripChannelHash(m.ParamAt(0))
	c.cfg.Sink.OnUserState(UserState{Channel: channel, Tags: m.Tags})
	c.setUserState(channel, m.Tags)
}

func (c *Client) handleReconnect(m Message) {
	c.cfg.Sink.OnDoom()
}

func (c *Client) handleUserNotice(m Message) {
	channel := stripChannelHash(m.ParamAt(0))
	msgID := m.Tags.Get("msg-id")
	user := m.Tags.Get("login")
	systemMsg := unescapeTagValue(m.Tags.Get("system-msg"))

	switch msgID {
	case "ritual":
		c.cfg.Sink.OnRitual(Ritual{User: user, Channel: channel, SystemMessage: systemMsg, Tags: m.Tags})
	case "raid":
		viewers, _ := strconv.Atoi(m.Tags.Get("msg-param-viewerCount"))
		c.cfg.Sink.OnRaid(Raid{
			FromChannel:   m.Tags.Get("msg-param-displayName"),
			ToChannel:     channel,
			Viewers:       viewers,
			SystemMessage: systemMsg,
			Tags:          m.Tags,
		})
	case "sub", "resub", "subgift", "submysterygift":
		c.handleSubNotice(msgID, channel, user, systemMsg, m.Tags)
	}
}

func (c *Client) handleSubNotice(msgID, channel, user, systemMsg string, tags TagSet) {
	var kind SubType
	switch msgID {
	case "sub":
		kind = SubNew
	case "resub":
		kind = SubResub
	case "subgift":
		kind = SubGift
	case "submysterygift":
		kind = SubMysteryGift
	}

	months, _ := strconv.Atoi(tags.Get("msg-param-cumulative-months"))
	if months == 0 {
		months, _ = strconv.Atoi(tags.Get("msg-param-months"))
	}
	senderCount, _ := strconv.Atoi(tags.Get("msg-param-sender-count"))

	c.cfg.Sink.OnSub(Sub{
		Type:          kind,
		User:          user,
		Channel:       channel,
		Months:        months,
		Plan:          tags.Get("msg-param-sub-plan"),
		RecipientUser: tags.Get("msg-param-recipient-user-name"),
		RecipientID:   decodeUint(tags.Get("msg-param-recipient-id")),
		SenderCount:   senderCount,
		SystemMessage: systemMsg,
		Tags:          tags,
	})
}
