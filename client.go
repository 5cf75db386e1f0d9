package tmi

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config configures a Client. ConnectionFactory is the only required field;
// everything else has a working zero-effort default.
type Config struct {
	// ConnectionFactory produces the transport for each login attempt.
	ConnectionFactory ConnectionFactory

	// Clock arms and checks handshake timeouts. A nil Clock disables
	// timeouts entirely, which is useful for tests that drive a fake
	// connection by hand and don't want a 5-second deadline in the way.
	Clock Clock

	// RandomSource supplies digits for generated anonymous nicknames. If
	// nil, a process-global math/rand source is used.
	RandomSource RandomSource

	// Sink receives every server-initiated event. If nil, events are
	// discarded (NoOpSink).
	Sink Sink

	// Logger receives structured diagnostic logs. If nil, logging is a
	// no-op.
	Logger *zap.Logger

	// Diagnostics, if set, is called with every line sent or received,
	// independent of Logger.
	Diagnostics DiagnosticsFunc
}

func (cfg *Config) setDefaults() {
	if cfg.Sink == nil {
		cfg.Sink = NoOpSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger()
	}
	if cfg.RandomSource == nil {
		cfg.RandomSource = mathRandSource{}
	}
}

// mathRandSource is the default RandomSource, backed by the package-level
// math/rand functions (auto-seeded since Go 1.20).
type mathRandSource struct{}

func (mathRandSource) Intn(n int) int { return rand.Intn(n) }

// channelStateQuery and channelStateReply implement a request/reply
// round-trip into the worker goroutine for reading channelStates, which
// (like the rest of session) is worker-exclusive and must never be read
// from another goroutine directly.
type channelStateQuery struct {
	channel string
	reply   chan channelStateReply
}

type channelStateReply struct {
	state ChannelState
	ok    bool
}

// Client is a single chat session: one login at a time, one worker
// goroutine owning all session state. Every exported method is safe to
// call concurrently from any number of goroutines; none of them block on
// network I/O.
type Client struct {
	cfg Config

	actions    chan Action
	stateQuery chan channelStateQuery
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup

	sess session
}

// New constructs a Client and starts its worker goroutine. The worker runs
// until Close is called.
func New(cfg Config) *Client {
	cfg.setDefaults()
	c := &Client{
		cfg:        cfg,
		actions:    make(chan Action, 64),
		stateQuery: make(chan channelStateQuery),
		stopCh:     make(chan struct{}),
	}
	c.sess.channelStates = make(map[string]ChannelState)
	c.wg.Add(1)
	go c.run()
	return c
}

// submit enqueues an action for the worker, preserving submission order
// for actions from any one caller goroutine. Submissions after Close are
// silently dropped rather than blocking forever on a worker that has
// already exited.
func (c *Client) submit(a Action) {
	select {
	case c.actions <- a:
	case <-c.stopCh:
	}
}

// LogIn starts an authenticated session. A LogIn already in progress, or
// an already-open connection, makes this call a no-op.
func (c *Client) LogIn(nickname, token string) {
	c.submit(Action{Kind: ActionLogIn, Nickname: nickname, Token: token})
}

// LogInAnonymous starts a read-only session under a generated
// "justinfanNNNNN" nickname. SendMessage, Reply, and SendWhisper are no-ops
// for the rest of this session's lifetime.
func (c *Client) LogInAnonymous() {
	nick := anonymousNickname(c.cfg.RandomSource)
	c.submit(Action{Kind: ActionLogIn, Nickname: nick, Anonymous: true})
}

func anonymousNickname(r RandomSource) string {
	return "justinfan" + strconv.Itoa(r.Intn(100000))
}

// LogOut closes the current connection, if any, without sending a QUIT
// farewell.
func (c *Client) LogOut() {
	c.submit(Action{Kind: ActionLogOut})
}

// Join requests membership in a channel.
func (c *Client) Join(channel string) {
	c.submit(Action{Kind: ActionJoin, Channel: channel})
}

// Leave departs a channel.
func (c *Client) Leave(channel string) {
	c.submit(Action{Kind: ActionLeave, Channel: channel})
}

// SendMessage sends a chat message to channel.
func (c *Client) SendMessage(channel, text string) {
	c.submit(Action{Kind: ActionSendMessage, Channel: channel, Message: text})
}

// Reply sends a chat message threaded as a reply to parentMessageID (a
// ChatMessage.MessageID or Sub.Tags' "id" tag value).
func (c *Client) Reply(channel, text, parentMessageID string) {
	c.submit(Action{Kind: ActionSendMessage, Channel: channel, Message: text, ParentMessageID: parentMessageID})
}

// SendWhisper sends a whisper to toUser.
func (c *Client) SendWhisper(toUser, text string) {
	c.submit(Action{Kind: ActionSendWhisper, ToUser: toUser, Message: text})
}

// ChannelState returns the most recently observed USERSTATE/ROOMSTATE tags
// for channel, or ok==false if neither has been seen yet. Safe to call
// from any goroutine; it round-trips into the worker rather than reading
// session state directly.
func (c *Client) ChannelState(channel string) (state ChannelState, ok bool) {
	reply := make(chan channelStateReply, 1)
	select {
	case c.stateQuery <- channelStateQuery{channel: channel, reply: reply}:
	case <-c.stopCh:
		return ChannelState{}, false
	}
	select {
	case r := <-reply:
		return r.state, r.ok
	case <-c.stopCh:
		return ChannelState{}, false
	}
}

// Close stops the worker: any connection is closed without a farewell, the
// sink receives a final LogOut if a session was live, and any actions
// still queued are dropped. Close blocks until the worker has exited.
func (c *Client) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

// run is the single worker goroutine: it owns sess exclusively, and is the
// only goroutine that ever touches it. Submitted actions, channel-state
// queries, and the handshake-timeout sweep are all multiplexed through one
// select so nothing here needs a lock.
func (c *Client) run() {
	defer c.wg.Done()
	for {
		var timeout <-chan time.Time
		if c.cfg.Clock != nil && len(c.sess.pending.actions) > 0 {
			timeout = time.After(timerSweepIntervalMillis * time.Millisecond)
		}

		select {
		case a := <-c.actions:
			c.dispatchAction(a)
			c.checkTimeouts()

		case q := <-c.stateQuery:
			st, ok := c.sess.channelStates[q.channel]
			q.reply <- channelStateReply{state: st, ok: ok}

		case <-timeout:
			c.checkTimeouts()

		case <-c.stopCh:
			c.teardown("")
			return
		}
	}
}

// dispatchAction routes one queued Action to its handler. RequestCaps and
// AwaitMotd never reach here: they exist only as pending-table entries
// that processCap/process376 retype and consume, never as actions a
// caller or transport callback submits.
func (c *Client) dispatchAction(a Action) {
	switch a.Kind {
	case ActionLogIn:
		c.doLogIn(a)
	case ActionLogOut:
		c.doLogOut()
	case ActionProcessReceivedData:
		c.doProcessReceivedData(a.Message)
	case ActionServerDisconnected:
		c.doServerDisconnected()
	case ActionJoin:
		c.doJoin(a.Channel)
	case ActionLeave:
		c.doLeave(a.Channel)
	case ActionSendMessage:
		c.doSendMessage(a.Channel, a.Message, a.ParentMessageID)
	case ActionSendWhisper:
		c.doSendWhisper(a.ToUser, a.Message)
	case ActionRequestCaps, ActionAwaitMotd:
	}
}
