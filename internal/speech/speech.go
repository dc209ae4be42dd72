// Package speech is the user-facing feedback boundary. Sinks are
// fire-and-forget: they never return an error to the caller.
package speech

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Sink accepts a line of user-facing feedback (voiced or printed).
type Sink interface {
	Say(text string)
}

// LogSink prints feedback through the logger. Used as the default sink and
// in tests.
type LogSink struct {
	log *zap.SugaredLogger
}

func NewLogSink(log *zap.SugaredLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Say(text string) {
	if text == "" {
		return
	}
	s.log.Infof("[Addy] %s", text)
}

// NATSSink publishes feedback to a speech subject for an external TTS
// consumer. Publish failures are logged and swallowed.
type NATSSink struct {
	conn    *nats.Conn
	subject string
	log     *zap.SugaredLogger
}

func NewNATSSink(conn *nats.Conn, subject string, log *zap.SugaredLogger) *NATSSink {
	return &NATSSink{conn: conn, subject: subject, log: log}
}

func (s *NATSSink) Say(text string) {
	if text == "" {
		return
	}
	if err := s.conn.Publish(s.subject, []byte(text)); err != nil {
		s.log.Warnw("speech publish failed", "subject", s.subject, "error", err)
	}
}
