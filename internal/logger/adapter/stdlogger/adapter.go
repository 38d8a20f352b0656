// Package stdlogger bridges printf style loggers onto the global zerolog logger.
//
// gorm's logger.Writer only needs Printf; the leveled helpers serve any
// library expecting Debugf/Infof/Warningf/Errorf.
package stdlogger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes printf style messages to zerolog.
type Logger struct {
	// Level is used by Printf.
	Level zerolog.Level
	// Component is added as "component" field when not empty.
	Component string
}

// New returns a Logger whose Printf logs at debug level.
func New() *Logger {
	return &Logger{Level: zerolog.DebugLevel}
}

// NewComponent returns a Logger tagging every line with component.
func NewComponent(component string, level zerolog.Level) *Logger {
	return &Logger{Level: level, Component: component}
}

// Printf implements gorm's logger.Writer.
func (l *Logger) Printf(format string, args ...any) {
	l.event(log.WithLevel(l.Level)).Msgf(format, args...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.event(log.Debug()).Msgf(format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.event(log.Info()).Msgf(format, args...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, args ...any) {
	l.event(log.Warn()).Msgf(format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.event(log.Error()).Msgf(format, args...)
}

func (l *Logger) event(e *zerolog.Event) *zerolog.Event {
	if l.Component != "" {
		e = e.Str("component", l.Component)
	}

	return e
}
