package tmi_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ashgrove-dev/tmi"
	"github.com/ashgrove-dev/tmi/tmitest"
)

type fakeClock struct {
	mu  sync.Mutex
	now float64
}

func (c *fakeClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(seconds float64) {
	c.mu.Lock()
	c.now += seconds
	c.mu.Unlock()
}

type loginMarker struct{}
type logoutMarker struct{}

// recordingSink funnels every event of interest into one ordered channel so
// tests can synchronize on "the worker has processed up through here"
// without sleeping.
type recordingSink struct {
	tmi.NoOpSink
	events chan any
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(chan any, 256)}
}

func (s *recordingSink) OnLogIn()                  { s.events <- loginMarker{} }
func (s *recordingSink) OnLogOut()                 { s.events <- logoutMarker{} }
func (s *recordingSink) OnMessage(m tmi.ChatMessage) { s.events <- m }
func (s *recordingSink) OnWhisper(w tmi.Whisper)   { s.events <- w }
func (s *recordingSink) OnNotice(n tmi.Notice)     { s.events <- n }
func (s *recordingSink) OnClear(c tmi.Clear)       { s.events <- c }
func (s *recordingSink) OnJoin(j tmi.Join)         { s.events <- j }

func (s *recordingSink) next(t *testing.T) any {
	t.Helper()
	select {
	case e := <-s.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sink event")
		return nil
	}
}

func newTestClient(t *testing.T, clock tmi.Clock, sink tmi.Sink) (*tmi.Client, *tmitest.Server) {
	t.Helper()
	server := tmitest.NewServer()
	c := tmi.New(tmi.Config{ConnectionFactory: server, Clock: clock, Sink: sink})
	t.Cleanup(c.Close)
	return c, server
}

func mustSent(t *testing.T, server *tmitest.Server, want string) {
	t.Helper()
	got := server.NextSent()
	if got != want {
		t.Fatalf("sent %q, want %q", got, want)
	}
}

func TestLoginHandshake(t *testing.T) {
	sink := newRecordingSink()
	client, server := newTestClient(t, &fakeClock{}, sink)

	client.LogIn("bob", "token123")

	mustSent(t, server, "CAP LS 302")
	server.AcceptHandshake("bob")
	mustSent(t, server, "CAP END")
	mustSent(t, server, "PASS oauth:token123")
	mustSent(t, server, "NICK bob")

	if _, ok := sink.next(t).(loginMarker); !ok {
		t.Fatal("expected LogIn event")
	}
}

func TestLoginAnonymousSendsNoPass(t *testing.T) {
	sink := newRecordingSink()
	client, server := newTestClient(t, &fakeClock{}, sink)

	client.LogInAnonymous()

	mustSent(t, server, "CAP LS 302")
	server.PushLine(":tmi.twitch.tv CAP * LS :twitch.tv/tags twitch.tv/commands twitch.tv/membership")
	mustSent(t, server, "CAP END")

	line := server.NextSent()
	if len(line) < 5 || line[:5] != "NICK " {
		t.Fatalf("expected NICK line (no PASS) for anonymous login, got %q", line)
	}
}

func TestAuthFailureNoticeLogsOutWithoutDisconnect(t *testing.T) {
	sink := newRecordingSink()
	client, server := newTestClient(t, &fakeClock{}, sink)

	client.LogIn("bob", "badtoken")
	mustSent(t, server, "CAP LS 302")
	// Only the CAP LS reply: the end-of-MOTD numeric never arrives, so the
	// session is still waiting on login when the failure NOTICE comes in.
	server.PushLine(":tmi.twitch.tv CAP * LS :twitch.tv/tags twitch.tv/commands twitch.tv/membership")
	mustSent(t, server, "CAP END")
	mustSent(t, server, "PASS oauth:badtoken")
	mustSent(t, server, "NICK bob")

	server.PushLine(":tmi.twitch.tv NOTICE * :Login authentication failed")

	notice, ok := sink.next(t).(tmi.Notice)
	if !ok || notice.Message != "Login authentication failed" {
		t.Fatalf("expected auth failure Notice, got %#v", notice)
	}
	if _, ok := sink.next(t).(logoutMarker); !ok {
		t.Fatal("expected LogOut event after auth failure")
	}
}

func TestHandshakeTimeoutDisconnects(t *testing.T) {
	clock := &fakeClock{}
	sink := newRecordingSink()
	client, server := newTestClient(t, clock, sink)

	client.LogIn("bob", "token123")
	mustSent(t, server, "CAP LS 302")

	clock.Advance(10)
	// Nudge the worker so it re-evaluates pending expirations promptly
	// instead of waiting out the full sweep interval.
	client.Join("somechannel")

	if _, ok := sink.next(t).(logoutMarker); !ok {
		t.Fatal("expected LogOut after handshake timeout")
	}
}

func TestPrivmsgActionAndBits(t *testing.T) {
	sink := newRecordingSink()
	client, server := newTestClient(t, &fakeClock{}, sink)

	client.LogIn("bob", "token123")
	mustSent(t, server, "CAP LS 302")
	server.AcceptHandshake("bob")
	mustSent(t, server, "CAP END")
	mustSent(t, server, "PASS oauth:token123")
	mustSent(t, server, "NICK bob")
	if _, ok := sink.next(t).(loginMarker); !ok {
		t.Fatal("expected LogIn event")
	}

	server.PushLine("@bits=100;id=abc :ronni!ronni@ronni.tmi.twitch.tv PRIVMSG #dallas :\x01ACTION cheers\x01")

	msg, ok := sink.next(t).(tmi.ChatMessage)
	if !ok {
		t.Fatal("expected ChatMessage event")
	}
	if !msg.IsAction || msg.Content != "cheers" || msg.Bits != 100 || msg.Channel != "dallas" {
		t.Fatalf("unexpected message: %#v", msg)
	}
}

func TestWhisperThreadID(t *testing.T) {
	sink := newRecordingSink()
	client, server := newTestClient(t, &fakeClock{}, sink)

	client.LogIn("bob", "token123")
	mustSent(t, server, "CAP LS 302")
	server.AcceptHandshake("bob")
	mustSent(t, server, "CAP END")
	mustSent(t, server, "PASS oauth:token123")
	mustSent(t, server, "NICK bob")
	sink.next(t)

	server.PushLine("@thread-id=123_456 :ronni!ronni@ronni.tmi.twitch.tv WHISPER bob :hey there")

	w, ok := sink.next(t).(tmi.Whisper)
	if !ok || w.ThreadID != "123_456" || w.Message != "hey there" {
		t.Fatalf("unexpected whisper: %#v", w)
	}
}

func TestClearChatKinds(t *testing.T) {
	sink := newRecordingSink()
	client, server := newTestClient(t, &fakeClock{}, sink)

	client.LogIn("bob", "token123")
	mustSent(t, server, "CAP LS 302")
	server.AcceptHandshake("bob")
	mustSent(t, server, "CAP END")
	mustSent(t, server, "PASS oauth:token123")
	mustSent(t, server, "NICK bob")
	sink.next(t)

	server.PushLine(":tmi.twitch.tv CLEARCHAT #dallas")
	if c, ok := sink.next(t).(tmi.Clear); !ok || c.Kind != tmi.ClearAll {
		t.Fatalf("expected ClearAll, got %#v", c)
	}

	server.PushLine("@ban-duration=600;ban-reason=spamming :tmi.twitch.tv CLEARCHAT #dallas :ronni")
	if c, ok := sink.next(t).(tmi.Clear); !ok || c.Kind != tmi.ClearTimeout || c.Duration != 600 {
		t.Fatalf("expected ClearTimeout, got %#v", c)
	}

	server.PushLine(":tmi.twitch.tv CLEARCHAT #dallas :ronni")
	if c, ok := sink.next(t).(tmi.Clear); !ok || c.Kind != tmi.ClearBan {
		t.Fatalf("expected ClearBan, got %#v", c)
	}

	server.PushLine("@login=ronni;target-msg-id=msg-1 :tmi.twitch.tv CLEARMSG #dallas :spam text")
	c, ok := sink.next(t).(tmi.Clear)
	if !ok || c.Kind != tmi.ClearMessageDelete || c.OffendingID != "msg-1" || c.User != "ronni" {
		t.Fatalf("expected ClearMessageDelete, got %#v", c)
	}
}

func TestChannelStateCache(t *testing.T) {
	sink := newRecordingSink()
	client, server := newTestClient(t, &fakeClock{}, sink)

	client.LogIn("bob", "token123")
	mustSent(t, server, "CAP LS 302")
	server.AcceptHandshake("bob")
	mustSent(t, server, "CAP END")
	mustSent(t, server, "PASS oauth:token123")
	mustSent(t, server, "NICK bob")
	sink.next(t)

	if _, ok := client.ChannelState("dallas"); ok {
		t.Fatal("expected no channel state before any ROOMSTATE/USERSTATE")
	}

	server.PushLine("@slow=5;room-id=1234 :tmi.twitch.tv ROOMSTATE #dallas")
	// Use a second round-trip (a Join submission) purely to let the
	// ROOMSTATE action finish processing before we query.
	client.Join("dallas")
	mustSent(t, server, "JOIN #dallas")

	st, ok := client.ChannelState("dallas")
	if !ok {
		t.Fatal("expected channel state after ROOMSTATE")
	}
	if !st.RoomTags.Has("slow") {
		t.Fatalf("expected RoomTags to carry slow tag: %#v", st.RoomTags)
	}
}

// failingConnection always fails to connect, exercising the transport-level
// failure path that tmitest.Server's always-succeeds Connect() cannot.
type failingConnection struct{}

func (failingConnection) Connect() bool                          { return false }
func (failingConnection) Send(data []byte)                        {}
func (failingConnection) Disconnect()                             {}
func (failingConnection) SetMessageReceivedHandler(func(string))  {}
func (failingConnection) SetDisconnectedHandler(func())           {}

type failingConnectionFactory struct{}

func (failingConnectionFactory) NewConnection() tmi.Connection { return failingConnection{} }

func TestLoginTransportFailureEmitsLogOut(t *testing.T) {
	sink := newRecordingSink()
	client := tmi.New(tmi.Config{ConnectionFactory: failingConnectionFactory{}, Sink: sink})
	t.Cleanup(client.Close)

	client.LogIn("bob", "token123")

	if _, ok := sink.next(t).(logoutMarker); !ok {
		t.Fatal("expected LogOut event after transport connect failure")
	}
}

func TestJoinSkipsAnonymousNick(t *testing.T) {
	sink := newRecordingSink()
	client, server := newTestClient(t, &fakeClock{}, sink)

	client.LogIn("bob", "token123")
	mustSent(t, server, "CAP LS 302")
	server.AcceptHandshake("bob")
	mustSent(t, server, "CAP END")
	mustSent(t, server, "PASS oauth:token123")
	mustSent(t, server, "NICK bob")
	sink.next(t)

	server.PushLine(":justinfan12345!justinfan12345@justinfan12345.tmi.twitch.tv JOIN #dallas")
	server.PushLine(":ronni!ronni@ronni.tmi.twitch.tv JOIN #dallas")

	j, ok := sink.next(t).(tmi.Join)
	if !ok || j.User != "ronni" {
		t.Fatalf("expected Join for ronni only, got %#v", j)
	}
}
