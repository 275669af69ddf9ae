package remark

import (
	"io"

	charmlog "github.com/charmbracelet/log"
)

// LogSink renders remarks as a line-oriented log, one remark per line.
type LogSink struct {
	logger *charmlog.Logger
}

// NewLogSink writes remarks to w without timestamps.
func NewLogSink(w io.Writer) *LogSink {
	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.DebugLevel,
		ReportTimestamp: false,
	})
	logger.SetFormatter(charmlog.TextFormatter)
	return &LogSink{logger: logger}
}

// Record writes r as "WARN <entry key>: <message>" or "INFO ...".
func (s *LogSink) Record(r Remark) {
	l := s.logger.WithPrefix(r.EntryKey)
	switch r.Severity {
	case Warning:
		l.Warn(r.Message)
	default:
		l.Info(r.Message)
	}
}
