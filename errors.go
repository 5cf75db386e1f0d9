package tmi

import "errors"

// Sentinel errors describing conditions internal to the session. None of
// these are returned from Client's public methods — the library never
// raises; see the package doc and DESIGN.md for the error handling design.
// They exist so that log messages have a single place that names each
// condition; the QUIT farewell text is a separate plain string.
var (
	errAlreadyConnected  = errors.New("tmi: log in already in progress or connected")
	errHandshakeTimeout  = errors.New("tmi: handshake timed out")
	errTransportFailure  = errors.New("tmi: transport connect failed")
	errAuthenticationBad = errors.New("tmi: authentication failed")
)
