package tmi

import (
	"strings"

	"go.uber.org/zap"
)

// session is the worker-exclusive state of one connection attempt: the
// transport handle, the partial-line buffer, negotiated capabilities, the
// pending-action table, and the per-channel state cache. Nothing outside
// the worker goroutine reads or writes these fields; cross-goroutine reads
// go through Client's request/reply channels instead.
type session struct {
	conn Connection

	recvBuf []byte

	nickname  string
	token     string
	anonymous bool
	loggedIn  bool

	capsSupported map[string]struct{}
	pending       pendingTable

	channelStates map[string]ChannelState
}

func (s *session) reset() {
	s.conn = nil
	s.recvBuf = nil
	s.loggedIn = false
	s.capsSupported = nil
	s.pending.clear()
}

// doLogIn starts a new connection attempt. A LogIn already in flight, or a
// live connection, makes this a no-op: retrying here would otherwise queue
// up a second handshake racing the first one against the same server state.
func (c *Client) doLogIn(a Action) {
	if c.sess.conn != nil {
		c.cfg.Logger.Debug("tmi: login ignored", zap.Error(errAlreadyConnected))
		return
	}
	if c.sess.pending.hasKind(ActionLogIn) || c.sess.pending.hasKind(ActionRequestCaps) || c.sess.pending.hasKind(ActionAwaitMotd) {
		c.cfg.Logger.Debug("tmi: login ignored", zap.Error(errAlreadyConnected))
		return
	}

	conn := c.cfg.ConnectionFactory.NewConnection()
	conn.SetMessageReceivedHandler(func(data string) {
		c.submit(Action{Kind: ActionProcessReceivedData, Message: data})
	})
	conn.SetDisconnectedHandler(func() {
		c.submit(Action{Kind: ActionServerDisconnected})
	})

	if !conn.Connect() {
		c.cfg.Logger.Warn("tmi: transport connect failed", zap.Error(errTransportFailure))
		c.cfg.Sink.OnLogOut()
		return
	}

	c.sess.conn = conn
	c.sess.nickname = a.Nickname
	c.sess.token = a.Token
	c.sess.anonymous = a.Anonymous
	c.sess.capsSupported = make(map[string]struct{})

	c.send(lineCapLS())
	exp, hasExp := c.expireIn(handshakeTimeout)
	c.sess.pending.add(Action{Kind: ActionLogIn, Expiration: exp, HasExpiration: hasExp})
}

// doLogOut is the caller-initiated logout path: QUIT only if farewell is
// non-empty (the public façade never supplies one), then full teardown.
func (c *Client) doLogOut() {
	c.teardown("")
}

func (c *Client) doJoin(channel string) {
	if c.sess.conn == nil {
		return
	}
	c.send(lineJoin(channel))
}

func (c *Client) doLeave(channel string) {
	if c.sess.conn == nil {
		return
	}
	c.send(linePart(channel))
}

// doSendMessage and doSendWhisper are silently dropped for anonymous
// sessions; an anonymous login is read-only by protocol design, and the
// server would reject these anyway.
func (c *Client) doSendMessage(channel, text, parentMessageID string) {
	if c.sess.conn == nil || c.sess.anonymous {
		return
	}
	if parentMessageID != "" {
		c.send(linePrivmsgReply(channel, text, parentMessageID))
		return
	}
	c.send(linePrivmsg(channel, text))
}

func (c *Client) doSendWhisper(toUser, text string) {
	if c.sess.conn == nil || c.sess.anonymous {
		return
	}
	c.send(lineWhisper(toUser, text))
}

// doServerDisconnected handles a transport-initiated close. If the session
// already tore itself down (e.g. on an authentication-failure NOTICE), conn
// is already nil and there is nothing left to report.
func (c *Client) doServerDisconnected() {
	if c.sess.conn == nil {
		return
	}
	c.sess.reset()
	c.cfg.Sink.OnLogOut()
}

// doProcessReceivedData appends a chunk of transport bytes to the
// line-framing buffer and dispatches every complete line it yields.
func (c *Client) doProcessReceivedData(data string) {
	if c.sess.conn == nil {
		return
	}
	c.sess.recvBuf = append(c.sess.recvBuf, data...)
	for {
		line, rest, ok := readLine(c.sess.recvBuf)
		if !ok {
			break
		}
		c.sess.recvBuf = rest
		if len(line) == 0 {
			continue
		}
		raw := string(line)
		c.logLine(DirectionInbound, raw+"\r\n")
		m := parseMessage(raw)
		if m.Command == "" {
			c.cfg.Logger.Debug("tmi: dropping malformed line")
			continue
		}
		c.dispatch(m)
	}
}

func (c *Client) dispatch(m Message) {
	switch m.Command {
	case cmdCap:
		c.processCap(m)
	case cmdEndOfMotd:
		c.process376(m)
	default:
		c.handleSteadyState(m)
	}
}

// send writes one outbound line and reports it to diagnostics/logging. It
// is a no-op if there is no live connection (a stray timer-driven call
// racing a just-completed teardown, for instance).
func (c *Client) send(line string) {
	if c.sess.conn == nil {
		return
	}
	c.logLine(DirectionOutbound, line)
	c.sess.conn.Send([]byte(line))
}

func (c *Client) expireIn(seconds float64) (expiration float64, hasExpiration bool) {
	if c.cfg.Clock == nil {
		return 0, false
	}
	return c.cfg.Clock.Now() + seconds, true
}

// processCap drives the CAP LS / CAP REQ / CAP ACK|NAK exchange. Returns
// whether the line was consumed by a pending LogIn/RequestCaps action.
func (c *Client) processCap(m Message) bool {
	switch strings.ToUpper(m.ParamAt(1)) {
	case "LS":
		return c.processCapLS(m)
	case "ACK", "NAK":
		return c.processCapAck(m)
	}
	return false
}

func (c *Client) processCapLS(m Message) bool {
	if !c.sess.pending.hasKind(ActionLogIn) {
		return false
	}

	more := m.ParamAt(2) == "*"
	var capsStr string
	if more {
		capsStr = m.ParamAt(3)
	} else {
		capsStr = m.ParamAt(2)
	}
	for _, tok := range strings.Fields(capsStr) {
		c.sess.capsSupported[tok] = struct{}{}
	}
	if more {
		// Twitch may split CAP LS across multiple lines; keep waiting for
		// the final one before deciding what (if anything) to REQ.
		return false
	}

	if c.hasAllRequiredCaps() {
		c.sess.pending.removeKind(ActionLogIn)
		c.beginAuthentication()
	} else {
		c.send(lineCapReq(requiredCaps))
		exp, hasExp := c.expireIn(handshakeTimeout)
		c.sess.pending.retypeKind(ActionLogIn, ActionRequestCaps, exp, hasExp)
	}
	return true
}

func (c *Client) hasAllRequiredCaps() bool {
	for _, want := range requiredCaps {
		if _, ok := c.sess.capsSupported[want]; !ok {
			return false
		}
	}
	return true
}

func (c *Client) processCapAck(m Message) bool {
	if !c.sess.pending.hasKind(ActionRequestCaps) {
		return false
	}
	c.sess.pending.removeKind(ActionRequestCaps)
	c.beginAuthentication()
	return true
}

// beginAuthentication sends CAP END, PASS (unless anonymous), and NICK, then
// arms the AwaitMotd pending action for the numeric 376 that ends login.
func (c *Client) beginAuthentication() {
	c.send(lineCapEnd())
	if !c.sess.anonymous {
		c.send(linePass(c.sess.token))
	}
	c.send(lineNick(c.sess.nickname))
	exp, hasExp := c.expireIn(handshakeTimeout)
	c.sess.pending.add(Action{Kind: ActionAwaitMotd, Expiration: exp, HasExpiration: hasExp})
}

func (c *Client) process376(m Message) bool {
	if !c.sess.pending.hasKind(ActionAwaitMotd) {
		return false
	}
	c.sess.pending.removeKind(ActionAwaitMotd)
	if !c.sess.loggedIn {
		c.sess.loggedIn = true
		c.cfg.Sink.OnLogIn()
	}
	return true
}

// handleAuthFailureNotice reacts to the two NOTICE texts Twitch sends for a
// bad PASS/NICK. The connection is deliberately left open here: the server
// closes it on its own shortly after, which arrives as an ordinary
// ServerDisconnected action. Closing it ourselves too would either race
// that close or require suppressing the second LogOut, for no benefit.
func (c *Client) handleAuthFailureNotice() {
	c.cfg.Logger.Warn("tmi: login failed", zap.Error(errAuthenticationBad))
	c.sess.pending.removeKind(ActionAwaitMotd)
	c.sess.reset()
	c.cfg.Sink.OnLogOut()
}

// teardown is the shared LogOut path: QUIT (if farewell is non-empty and a
// connection is open), Disconnect, clear all session state, emit LogOut.
// A farewell of "" is the destruction/explicit-LogOut shape; a non-empty
// one is used for handshake-timeout disconnects.
func (c *Client) teardown(farewell string) {
	if c.sess.conn == nil {
		return
	}
	if farewell != "" {
		c.send(lineQuit(farewell))
	}
	c.sess.conn.Disconnect()
	c.sess.reset()
	c.cfg.Sink.OnLogOut()
}

// checkTimeouts sweeps the pending table for expired entries. Only the
// three handshake-phase kinds (LogIn, RequestCaps, AwaitMotd) trigger a
// disconnect; there are no other kinds with expirations armed today, and an
// expired entry of any other kind is skipped and left in the table.
func (c *Client) checkTimeouts() {
	if c.cfg.Clock == nil || len(c.sess.pending.actions) == 0 {
		return
	}
	now := c.cfg.Clock.Now()
	idx := c.sess.pending.expired(now)
	if len(idx) == 0 {
		return
	}
	for _, i := range idx {
		switch c.sess.pending.actions[i].Kind {
		case ActionLogIn, ActionRequestCaps, ActionAwaitMotd:
			c.cfg.Logger.Warn("tmi: handshake timed out", zap.Error(errHandshakeTimeout))
			c.teardown(handshakeTimeoutFarewell(c.sess.pending.actions[i].Kind))
			return
		}
	}
}

func handshakeTimeoutFarewell(k ActionKind) string {
	switch k {
	case ActionLogIn:
		return "Timeout waiting for capability negotiation"
	case ActionRequestCaps:
		return "Timeout waiting for capability acknowledgement"
	default:
		return "Timeout waiting for MOTD"
	}
}

func (c *Client) setUserState(channel string, tags TagSet) {
	st := c.sess.channelStates[channel]
	st.UserTags = tags
	c.sess.channelStates[channel] = st
}

func (c *Client) setRoomState(channel string, tags TagSet) {
	st := c.sess.channelStates[channel]
	st.RoomTags = tags
	c.sess.channelStates[channel] = st
}
