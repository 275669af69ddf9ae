// Package remark defines the notices produced while cleaning a library and
// the sinks that receive them.
package remark

import "fmt"

// Severity classifies a remark.
type Severity string

const (
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Remark is a single notice about one entry.
type Remark struct {
	Severity Severity `json:"severity"`
	EntryKey string   `json:"entry_key"`
	Message  string   `json:"message"`
}

func (r Remark) String() string {
	return fmt.Sprintf("%s %s: %s", r.Severity, r.EntryKey, r.Message)
}

// Sink receives remarks in emission order.
type Sink interface {
	Record(r Remark)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Remark)

// Record calls f(r).
func (f SinkFunc) Record(r Remark) {
	f(r)
}

// Discard drops every remark.
var Discard Sink = SinkFunc(func(Remark) {})

// Collector keeps remarks in memory.
type Collector struct {
	Remarks []Remark
}

// Record appends r.
func (c *Collector) Record(r Remark) {
	c.Remarks = append(c.Remarks, r)
}

// Count returns the number of collected remarks of the given severity.
func (c *Collector) Count(sev Severity) int {
	n := 0
	for _, r := range c.Remarks {
		if r.Severity == sev {
			n++
		}
	}
	return n
}

// Messages returns the collected messages, in order.
func (c *Collector) Messages() []string {
	msgs := make([]string, len(c.Remarks))
	for i, r := range c.Remarks {
		msgs[i] = r.Message
	}
	return msgs
}

// Tee forwards every remark to all sinks in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(r Remark) {
		for _, s := range sinks {
			s.Record(r)
		}
	})
}

// Reporter records remarks about one entry.
type Reporter struct {
	sink Sink
	key  string
}

// For returns a Reporter that tags remarks with key.
func For(sink Sink, key string) Reporter {
	if sink == nil {
		sink = Discard
	}
	return Reporter{sink: sink, key: key}
}

// Warnf records a warning.
func (r Reporter) Warnf(format string, args ...interface{}) {
	r.sink.Record(Remark{Severity: Warning, EntryKey: r.key, Message: fmt.Sprintf(format, args...)})
}

// Infof records an informational remark.
func (r Reporter) Infof(format string, args ...interface{}) {
	r.sink.Record(Remark{Severity: Info, EntryKey: r.key, Message: fmt.Sprintf(format, args...)})
}
