package tmi

import (
	"strings"

	"go.uber.org/zap"
)

// Direction indicates whether a diagnostics line was sent to, or received
// from, the server.
type Direction int

const (
	DirectionOutbound Direction = iota
	DirectionInbound
)

func (d Direction) prefix() string {
	if d == DirectionOutbound {
		return "> "
	}
	return "< "
}

// DiagnosticsFunc receives every line sent or received, prefixed by
// direction for display. Lines beginning with "PASS oauth:" are redacted
// before either the diagnostics callback or the structured logger sees
// them; everything else is passed through verbatim.
type DiagnosticsFunc func(direction Direction, line string)

func redactLine(line string) string {
	if strings.HasPrefix(line, "PASS oauth:") {
		return "PASS oauth:***REDACTED***"
	}
	return line
}

// logLine reports one outbound or inbound protocol line to both the
// diagnostics subscription and the structured logger, redacting secrets
// first.
func (c *Client) logLine(dir Direction, line string) {
	trimmed := strings.TrimSuffix(line, "\r\n")
	redacted := redactLine(trimmed)

	if c.cfg.Diagnostics != nil {
		c.cfg.Diagnostics(dir, dir.prefix()+redacted)
	}

	if dir == DirectionOutbound {
		c.cfg.Logger.Debug("tmi: sent line", zap.String("line", redacted))
	} else {
		c.cfg.Logger.Debug("tmi: received line", zap.String("line", redacted))
	}
}

// defaultLogger returns a no-op logger, used when Config.Logger is nil.
func defaultLogger() *zap.Logger {
	return zap.NewNop()
}
