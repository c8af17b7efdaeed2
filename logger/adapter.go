package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogEventAdapter adapts a zerolog event to LogEvent.
// A nil event (level disabled) is safe to use; zerolog ignores calls on it.
type LogEventAdapter struct {
	event  *zerolog.Event
	filter *SensitiveDataFilter
}

// Msg sends the event with the given message
func (a *LogEventAdapter) Msg(msg string) {
	a.event.Msg(msg)
}

// Msgf sends the event with a formatted message
func (a *LogEventAdapter) Msgf(format string, args ...any) {
	a.event.Msgf(format, args...)
}

// Err adds an error to the log event
func (a *LogEventAdapter) Err(err error) LogEvent {
	a.event = a.event.Err(err)
	return a
}

// Str adds a string field, masked when the key is sensitive
func (a *LogEventAdapter) Str(key, value string) LogEvent {
	if a.filter != nil {
		value = a.filter.FilterString(key, value)
	}
	a.event = a.event.Str(key, value)
	return a
}

func (a *LogEventAdapter) Int(key string, value int) LogEvent {
	a.event = a.event.Int(key, value)
	return a
}

func (a *LogEventAdapter) Int64(key string, value int64) LogEvent {
	a.event = a.event.Int64(key, value)
	return a
}

func (a *LogEventAdapter) Bool(key string, value bool) LogEvent {
	a.event = a.event.Bool(key, value)
	return a
}

func (a *LogEventAdapter) Dur(key string, d time.Duration) LogEvent {
	a.event = a.event.Dur(key, d)
	return a
}

// Interface adds an arbitrary field; header maps have sensitive entries masked
func (a *LogEventAdapter) Interface(key string, i any) LogEvent {
	if a.filter != nil {
		i = a.filter.FilterValue(key, i)
	}
	a.event = a.event.Interface(key, i)
	return a
}
