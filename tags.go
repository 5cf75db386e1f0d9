package tmi

import (
	"strconv"
	"strings"
)

// EmoteSpan is one [begin,end] occurrence of an emote within a message's
// text, as decoded from the "emotes" tag.
type EmoteSpan struct {
	Begin int
	End   int
}

// TagSet holds the raw name->value tag mapping for one parsed line plus the
// specialized fields this package decodes eagerly, since every inbound
// PRIVMSG/USERNOTICE/etc. carries tags and decoding them once up front is
// simpler than re-parsing the same handful of fields in every handler.
type TagSet struct {
	raw map[string]string

	Badges                   map[string]struct{}
	Color                    uint32 // 24-bit RGB, 0 if absent or malformed
	DisplayName              string
	Emotes                   map[int][]EmoteSpan
	TimestampSeconds         int64
	TimestampMillisRemainder int
	ChannelID                int64
	UserID                   int64
	MessageID                string
}

// Get returns the raw (undecoded) value for a tag name, or "" if absent.
func (t TagSet) Get(name string) string {
	if t.raw == nil {
		return ""
	}
	return t.raw[name]
}

// Has reports whether name was present in the line's tags.
func (t TagSet) Has(name string) bool {
	if t.raw == nil {
		return false
	}
	_, ok := t.raw[name]
	return ok
}

// parseTags decodes the tags portion of a line (without the leading '@' or
// trailing space, e.g. "badges=broadcaster/1;color=#FF0000;id=abc"). Tags
// are split on ';'; each tag's value is split from its name at the first
// unescaped '='. Malformed individual tags (or fields) degrade to their
// zero value rather than failing the whole line.
func parseTags(s string) TagSet {
	t := TagSet{raw: make(map[string]string)}
	if s == "" {
		return t
	}

	for _, entry := range strings.Split(s, ";") {
		if entry == "" {
			continue
		}
		key, value, hasValue := splitTagEntry(entry)
		if key == "" {
			continue
		}
		if hasValue {
			t.raw[key] = value
		} else {
			t.raw[key] = ""
		}

		switch key {
		case "badges":
			t.Badges = decodeBadges(value)
		case "color":
			t.Color = decodeColor(value)
		case "display-name":
			t.DisplayName = value
		case "emotes":
			t.Emotes = decodeEmotes(value)
		case "tmi-sent-ts":
			t.TimestampSeconds, t.TimestampMillisRemainder = decodeTimestamp(value)
		case "room-id":
			t.ChannelID = decodeUint(value)
		case "user-id", "target-user-id":
			t.UserID = decodeUint(value)
		case "id":
			t.MessageID = value
		}
	}
	return t
}

// splitTagEntry splits "name=value" (or bare "name") at the first '=' not
// preceded by an odd number of backslashes.
func splitTagEntry(entry string) (name, value string, hasValue bool) {
	for i := 0; i < len(entry); i++ {
		if entry[i] != '=' {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && entry[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return entry[:i], entry[i+1:], true
		}
	}
	return entry, "", false
}

func decodeBadges(raw string) map[string]struct{} {
	if raw == "" {
		return nil
	}
	set := make(map[string]struct{})
	for _, b := range strings.Split(raw, ",") {
		if b != "" {
			set[b] = struct{}{}
		}
	}
	return set
}

func decodeColor(raw string) uint32 {
	if len(raw) != 7 || raw[0] != '#' {
		return 0
	}
	v, err := strconv.ParseUint(raw[1:], 16, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

// decodeEmotes parses "id:begin-end,begin-end/id:begin-end...". Entries
// that don't match the expected shape are dropped rather than failing the
// whole tag.
func decodeEmotes(raw string) map[int][]EmoteSpan {
	if raw == "" {
		return nil
	}
	out := make(map[int][]EmoteSpan)
	for _, entry := range strings.Split(raw, "/") {
		idStr, ranges, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		for _, rng := range strings.Split(ranges, ",") {
			beginStr, endStr, ok := strings.Cut(rng, "-")
			if !ok {
				continue
			}
			begin, err1 := strconv.Atoi(beginStr)
			end, err2 := strconv.Atoi(endStr)
			if err1 != nil || err2 != nil {
				continue
			}
			out[id] = append(out[id], EmoteSpan{Begin: begin, End: end})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func decodeTimestamp(raw string) (seconds int64, millisRemainder int) {
	ms, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, 0
	}
	return int64(ms / 1000), int(ms % 1000)
}

func decodeUint(raw string) int64 {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

// unescapeTagValue is a left inverse of escapeTagValue for the four-symbol
// alphabet the protocol requires escaping for (space, newline, ';', '\').
// Applied only to the specific documented fields (e.g. ban-reason,
// system-msg) that are handed to callers as decoded text; TagSet.raw itself
// is left undecoded.
func unescapeTagValue(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 's':
			b.WriteByte(' ')
		case 'n':
			b.WriteByte('\n')
		case ':':
			b.WriteByte(';')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

// escapeTagValue escapes a string for transmission as a tag value.
func escapeTagValue(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\:",
		" ", "\\s",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}
