package tmi

// ConnectionFactory produces a fresh Connection each time LogIn starts a new
// session. The session owns the returned Connection exclusively; nothing
// else should retain or reuse it once handed over.
type ConnectionFactory interface {
	NewConnection() Connection
}

// ConnectionFactoryFunc adapts a plain function to a ConnectionFactory.
type ConnectionFactoryFunc func() Connection

func (f ConnectionFactoryFunc) NewConnection() Connection { return f() }

// Connection is the transport the worker speaks CRLF-delimited IRC lines
// over. Connect/Send/Disconnect and the two callbacks are the only surface
// the session touches; TLS, DNS, and reconnection are the factory's concern
// entirely, not this package's.
type Connection interface {
	// Connect establishes the transport-level connection. It returns false
	// on failure; the session treats that as a transport-level failure
	// (see the error handling design).
	Connect() bool

	// Send writes raw bytes (already CRLF-terminated) to the connection.
	Send(data []byte)

	// Disconnect tears down the transport. It is always safe to call more
	// than once.
	Disconnect()

	// SetMessageReceivedHandler registers the callback invoked whenever
	// the transport has bytes available. The callback may run on any
	// transport-chosen goroutine; implementations must not call back into
	// the session synchronously from within Send/Connect/Disconnect.
	SetMessageReceivedHandler(func(data string))

	// SetDisconnectedHandler registers the callback invoked when the
	// transport observes the connection was closed, for any reason other
	// than the session calling Disconnect itself.
	SetDisconnectedHandler(func())
}

// Clock abstracts the time source used to arm and check handshake
// timeouts. When Config.Clock is nil, no timeouts are armed and the worker
// never wakes on a timer.
type Clock interface {
	// Now returns the current time in seconds, as a real number so that
	// fake clocks in tests can advance by fractional amounts.
	Now() float64
}

// ClockFunc adapts a plain function to a Clock.
type ClockFunc func() float64

func (f ClockFunc) Now() float64 { return f() }

// RandomSource supplies the digits used for the generated "justinfanNNNNN"
// anonymous-login nickname. Taking this from configuration (rather than
// reaching for a process-global PRNG, as the protocol this package is
// modeled on does) keeps anonymous-login tests deterministic.
type RandomSource interface {
	// Intn returns a non-negative pseudo-random number in [0,n).
	Intn(n int) int
}
