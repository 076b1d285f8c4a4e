package logger

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Section names the part of the system a message comes from. The values are
// the package names accepted by the log collector.
type Section string

const (
	API       Section = "api"
	Component Section = "component"
	Hook      Section = "hook"
	Page      Section = "page"
	State     Section = "state"
	Utils     Section = "utils"
)

type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
	Fatal Level = "fatal"
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	case Fatal:
		// Fatal is a severity for the collector; it must not exit the process.
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger is passed to every collaborator that reports through the
// section/level scheme.
type Logger interface {
	Log(section Section, level Level, msg string)
}

type AppLogger struct {
	base   zerolog.Logger
	remote *RemoteSink
}

func NewAppLogger(base zerolog.Logger, remote *RemoteSink) *AppLogger {
	return &AppLogger{base: base, remote: remote}
}

func (l *AppLogger) Log(section Section, level Level, msg string) {
	event := l.base.WithLevel(level.zerolog()).Str("package", string(section))
	if level == Fatal {
		event = event.Str("severity", string(Fatal))
	}
	event.Msg(msg)

	if l.remote != nil {
		l.remote.Send(level, section, msg)
	}
}

// Close waits for in-flight remote deliveries.
func (l *AppLogger) Close() {
	if l.remote != nil {
		l.remote.Wait()
	}
}

// Logf formats msg before handing it to logger.
func Logf(logger Logger, section Section, level Level, format string, args ...interface{}) {
	logger.Log(section, level, fmt.Sprintf(format, args...))
}

type nopLogger struct{}

func (nopLogger) Log(Section, Level, string) {}

// Nop discards everything.
func Nop() Logger {
	return nopLogger{}
}
