/*
Package tmi implements a client session engine for Twitch's IRC-derived
chat protocol (TMI).

It establishes a long-lived connection to a chat server, completes the
capability negotiation and authentication handshake, maintains a logged-in
session, and exposes high-level operations (join, leave, send channel
message, send whisper, reply, log out) while dispatching server-pushed
events (chat messages, subscriptions, raids, rituals, moderation actions,
room-state changes, host announcements, user/global state, reconnect
requests) to a caller-supplied Sink.

# Scope

This package owns the protocol state machine: the line-oriented IRCv3
message parser with tag decoding, the action/event state machine driving
log-in through teardown, and the single-worker concurrency model that
serializes user commands, incoming data, timeouts, and server-initiated
events. It does not implement TLS, DNS resolution, reconnect policy, rate
limiting, or persisted state; those are external collaborators (see
Connection, ConnectionFactory, and Clock) or are left to the caller.

# Usage

	client := tmi.New(tmi.Config{
		ConnectionFactory: myFactory,
		Sink:              mySink,
	})
	client.LogIn("myusername", "mytoken")
	// ... later, from any goroutine:
	client.Join("somechannel")
	client.SendMessage("somechannel", "hello!")
	client.Close()

All Client methods are safe to call concurrently from any goroutine. Events
are delivered to the Sink serially, from a single background worker
goroutine owned by the Client.

# Anonymous sessions

LogInAnonymous connects using a generated "justinfan<digits>" nickname and
sends no PASS. Anonymous sessions may join channels and receive events, but
SendMessage, Reply, and SendWhisper are silently dropped.
*/
package tmi
