// Package tmidebug wraps a tmi.Connection so every line it sends or
// receives is logged, independent of whatever logging the Client that owns
// it is configured with. Useful when composing a ConnectionFactory for
// tooling that wants to observe raw transport traffic on its own terms —
// e.g. a recording proxy sitting in front of several Clients.
package tmidebug

import (
	"go.uber.org/zap"

	"github.com/ashgrove-dev/tmi"
)

// Wrap decorates conn, logging every Send and every line delivered to the
// message-received handler via logger.
func Wrap(conn tmi.Connection, logger *zap.Logger) tmi.Connection {
	return &debugConn{Connection: conn, logger: logger}
}

// WrapFactory decorates every connection f produces with Wrap.
func WrapFactory(f tmi.ConnectionFactory, logger *zap.Logger) tmi.ConnectionFactory {
	return tmi.ConnectionFactoryFunc(func() tmi.Connection {
		return Wrap(f.NewConnection(), logger)
	})
}

type debugConn struct {
	tmi.Connection
	logger *zap.Logger
}

func (d *debugConn) Send(data []byte) {
	d.logger.Debug("tmidebug: sent", zap.ByteString("line", data))
	d.Connection.Send(data)
}

func (d *debugConn) SetMessageReceivedHandler(f func(data string)) {
	d.Connection.SetMessageReceivedHandler(func(data string) {
		d.logger.Debug("tmidebug: received", zap.String("line", data))
		f(data)
	})
}

var _ tmi.Connection = (*debugConn)(nil)
