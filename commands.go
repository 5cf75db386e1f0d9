package tmi

import (
	"fmt"
	"strings"
)

// The functions in this file build outbound protocol lines, CRLF included.
// They are pure string construction; deciding when to send one is the
// session's job (see session.go).

func lineCapLS() string {
	return cmdCap + " LS 302\r\n"
}

func lineCapReq(caps []string) string {
	return fmt.Sprintf("%s REQ :%s\r\n", cmdCap, strings.Join(caps, " "))
}

func lineCapEnd() string {
	return cmdCap + " END\r\n"
}

func linePass(token string) string {
	return fmt.Sprintf("%s oauth:%s\r\n", cmdPass, token)
}

func lineNick(nickname string) string {
	return fmt.Sprintf("%s %s\r\n", cmdNick, nickname)
}

func lineJoin(channel string) string {
	return fmt.Sprintf("%s #%s\r\n", cmdJoin, channel)
}

func linePart(channel string) string {
	return fmt.Sprintf("%s #%s\r\n", cmdPart, channel)
}

func linePrivmsg(channel, text string) string {
	return fmt.Sprintf("%s #%s :%s\r\n", cmdPrivmsg, channel, text)
}

// linePrivmsgReply is linePrivmsg with a client-only reply-parent-msg-id tag
// prepended, used when SendMessage is given a ParentMessageID.
func linePrivmsgReply(channel, text, parentMessageID string) string {
	return fmt.Sprintf("@reply-parent-msg-id=%s %s #%s :%s\r\n", parentMessageID, cmdPrivmsg, channel, text)
}

// lineWhisper relays a whisper through the #jtv pseudo-channel, the
// protocol's prescribed mechanism for sending (as opposed to receiving)
// whispers over the chat connection.
func lineWhisper(toUser, text string) string {
	return fmt.Sprintf("%s %s :.w %s %s\r\n", cmdPrivmsg, whisperRelayCh, toUser, text)
}

func linePong(server string) string {
	return fmt.Sprintf("%s :%s\r\n", cmdPong, server)
}

func lineQuit(farewell string) string {
	return fmt.Sprintf("%s :%s\r\n", cmdQuit, farewell)
}
