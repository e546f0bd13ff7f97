// Package notify defines the user-facing feedback contract: a sink
// accepting severity-tagged messages, decoupled from the coordinator's
// internal error classification. A UI layer renders events as toasts;
// the server wires a zerolog-backed sink.
package notify

import "github.com/rs/zerolog"

// Severity classifies an event for presentation.
type Severity string

// Severities understood by consuming surfaces.
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Event is a single user-visible notification.
type Event struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Sink consumes notification events. Implementations must be safe for
// concurrent use and must not block for long: the coordinator delivers
// events synchronously after releasing its internal lock.
type Sink interface {
	Notify(Event)
}

// FuncSink adapts a plain function to the Sink interface.
type FuncSink func(Event)

// Notify calls f.
func (f FuncSink) Notify(e Event) { f(e) }

// Discard is a Sink that drops every event.
var Discard Sink = FuncSink(func(Event) {})

// LogSink writes events to a zerolog logger, mapping severity to level.
type LogSink struct {
	Logger zerolog.Logger
}

// Notify implements Sink.
func (s LogSink) Notify(e Event) {
	switch e.Severity {
	case SeverityError:
		s.Logger.Warn().Str("severity", string(e.Severity)).Msg(e.Message)
	default:
		s.Logger.Info().Str("severity", string(e.Severity)).Msg(e.Message)
	}
}
