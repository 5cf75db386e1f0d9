package tmi

import "strings"

// Message is the parsed representation of one CRLF-terminated IRC line.
//
//	line    := ['@' tags ' '] [':' prefix ' '] command (' ' param)* [' :' trailer]
//
// Command is empty when the line failed to parse far enough to identify a
// command; callers must treat that as a malformed, dropped line.
type Message struct {
	Tags    TagSet
	Prefix  string
	Command string
	Params  []string
}

// Param returns the nth parameter (1-indexed), or "" if it does not exist.
func (m Message) Param(n int) string {
	if n < 1 || n > len(m.Params) {
		return ""
	}
	return m.Params[n-1]
}

// ParamAt returns the ith parameter (0-indexed), or "" if it does not exist.
func (m Message) ParamAt(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// stripChannelHash removes the leading '#' Twitch channel names carry on
// the wire; the library surfaces bare channel names in events.
func stripChannelHash(s string) string {
	return strings.TrimPrefix(s, "#")
}

// nick extracts the nickname portion of an RFC1459 prefix of the form
// "nick!user@host". If the prefix does not contain '!', the whole prefix is
// returned (server prefixes look like "tmi.twitch.tv").
func (m Message) nick() string {
	if i := strings.IndexByte(m.Prefix, '!'); i >= 0 {
		return m.Prefix[:i]
	}
	return m.Prefix
}

// readLine extracts one CRLF-terminated line from buf. ok is false if no
// complete line is present yet ("need more data"); rest is the unconsumed
// remainder of buf, byte-exact.
func readLine(buf []byte) (line []byte, rest []byte, ok bool) {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == '\r' && buf[i+1] == '\n' {
			return buf[:i], buf[i+2:], true
		}
	}
	return nil, buf, false
}

// lineState names the states of the single-pass line grammar: tags, an
// optional prefix, the command, and space-delimited params with an optional
// colon-led trailer.
type lineState int

const (
	stateLineFirstCharacter lineState = iota
	stateTags
	statePrefixOrCommandFirstCharacter
	statePrefix
	stateCommandChar
	stateParameterFirstCharacter
	stateParameterNotFirstCharacter
	stateTrailer
)

// parseMessage parses one line (without the trailing CRLF) into a Message.
// A single forward pass over the bytes follows the grammar's states; no
// goroutine or channel is spun up per line since this runs on every inbound
// chat message and the extra scheduling would show up in profiles for no
// benefit here.
func parseMessage(line string) Message {
	var m Message
	state := stateLineFirstCharacter
	i := 0
	n := len(line)

	for i < n {
		switch state {
		case stateLineFirstCharacter:
			switch line[i] {
			case '@':
				i++
				state = stateTags
			case ':':
				i++
				state = statePrefix
			default:
				state = stateCommandChar
			}

		case stateTags:
			start := i
			for i < n && line[i] != ' ' {
				i++
			}
			m.Tags = parseTags(line[start:i])
			for i < n && line[i] == ' ' {
				i++
			}
			state = statePrefixOrCommandFirstCharacter

		case statePrefixOrCommandFirstCharacter:
			if i < n && line[i] == ':' {
				i++
				state = statePrefix
			} else {
				state = stateCommandChar
			}

		case statePrefix:
			start := i
			for i < n && line[i] != ' ' {
				i++
			}
			m.Prefix = line[start:i]
			for i < n && line[i] == ' ' {
				i++
			}
			state = stateCommandChar

		case stateCommandChar:
			start := i
			for i < n && line[i] != ' ' {
				i++
			}
			m.Command = line[start:i]
			for i < n && line[i] == ' ' {
				i++
			}
			state = stateParameterFirstCharacter

		case stateParameterFirstCharacter:
			if i < n && line[i] == ':' {
				i++
				state = stateTrailer
			} else if i < n {
				state = stateParameterNotFirstCharacter
			} else {
				return m
			}

		case stateParameterNotFirstCharacter:
			start := i
			for i < n && line[i] != ' ' {
				i++
			}
			m.Params = append(m.Params, line[start:i])
			for i < n && line[i] == ' ' {
				i++
			}
			state = stateParameterFirstCharacter

		case stateTrailer:
			m.Params = append(m.Params, line[i:])
			return m
		}
	}

	// Ran out of input. A command was consumed if and only if the state
	// machine progressed past command parsing.
	switch state {
	case stateLineFirstCharacter, stateTags, statePrefixOrCommandFirstCharacter, statePrefix, stateCommandChar:
		m.Command = ""
	case stateTrailer:
		// A ':' at the very end of the line introduces an empty trailer.
		m.Params = append(m.Params, "")
	}
	return m
}
