// Package tmitest provides an in-memory fake TMI server for exercising a
// tmi.Client without a real network connection.
package tmitest

import (
	"strings"
	"sync"

	"github.com/ashgrove-dev/tmi"
	"github.com/google/uuid"
)

// Server is a tmi.Connection and tmi.ConnectionFactory driven directly by
// test code: PushLine delivers a line as if read off the wire, NextSent
// drains what the client wrote, and SimulateDisconnect fires the
// disconnected handler a real transport would fire on an unexpected close.
type Server struct {
	mu           sync.Mutex
	onMessage    func(data string)
	onDisconnect func()
	closed       bool

	sent chan string
}

// NewServer returns a ready-to-use fake server. The sent-line buffer holds
// up to 256 lines before Send starts silently dropping newly sent lines;
// tests that expect heavier volume should drain NextSent as they go.
func NewServer() *Server {
	return &Server{sent: make(chan string, 256)}
}

// NewConnection implements tmi.ConnectionFactory by returning the server
// itself, so a single Server instance is both factory and connection.
func (s *Server) NewConnection() tmi.Connection { return s }

var (
	_ tmi.Connection        = (*Server)(nil)
	_ tmi.ConnectionFactory = (*Server)(nil)
)

func (s *Server) Connect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = false
	return true
}

func (s *Server) Send(data []byte) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(string(data), "\r\n"), "\r\n") {
		if line == "" {
			continue
		}
		select {
		case s.sent <- line:
		default:
		}
	}
}

func (s *Server) Disconnect() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Server) SetMessageReceivedHandler(f func(data string)) {
	s.mu.Lock()
	s.onMessage = f
	s.mu.Unlock()
}

func (s *Server) SetDisconnectedHandler(f func()) {
	s.mu.Lock()
	s.onDisconnect = f
	s.mu.Unlock()
}

// PushLine delivers one server-to-client line to whatever handler the
// client most recently registered. A trailing CRLF is appended if missing.
func (s *Server) PushLine(line string) {
	if !strings.HasSuffix(line, "\r\n") {
		line += "\r\n"
	}
	s.mu.Lock()
	h := s.onMessage
	s.mu.Unlock()
	if h != nil {
		h(line)
	}
}

// SimulateDisconnect invokes the disconnected handler, as a transport would
// when the remote end closes the connection without the client asking.
func (s *Server) SimulateDisconnect() {
	s.mu.Lock()
	h := s.onDisconnect
	s.mu.Unlock()
	if h != nil {
		h()
	}
}

// NextSent blocks until the client has sent a line, then returns it
// (without the trailing CRLF).
func (s *Server) NextSent() string {
	return <-s.sent
}

// TrySent returns the next client-sent line and true, or ("", false) if
// none is currently buffered.
func (s *Server) TrySent() (string, bool) {
	select {
	case line := <-s.sent:
		return line, true
	default:
		return "", false
	}
}

// NewMessageID returns a fresh synthetic id, used to stamp realistic
// "id" tags onto fake PRIVMSG/USERNOTICE lines.
func NewMessageID() string {
	return uuid.NewString()
}

// PrivmsgLine builds a tagged PRIVMSG line as Twitch would send one for a
// chat message, stamping a fresh id tag so callers don't need to fabricate
// one by hand.
func PrivmsgLine(channel, user, text string) string {
	return "@id=" + NewMessageID() + ";display-name=" + user +
		" :" + user + "!" + user + "@" + user + ".tmi.twitch.tv PRIVMSG #" + channel + " :" + text
}

// AcceptHandshake drives a full login handshake on behalf of a test: it
// replies to CAP LS/REQ and delivers the end-of-MOTD numeric, as Twitch's
// real server does for a well-formed login.
func (s *Server) AcceptHandshake(nickname string) {
	s.PushLine(":tmi.twitch.tv CAP * LS :twitch.tv/tags twitch.tv/commands twitch.tv/membership")
	s.PushLine(":tmi.twitch.tv CAP " + nickname + " ACK :twitch.tv/tags twitch.tv/commands twitch.tv/membership")
	s.PushLine(":tmi.twitch.tv 001 " + nickname + " :Welcome, GLHF!")
	s.PushLine(":tmi.twitch.tv 376 " + nickname + " :>")
}
