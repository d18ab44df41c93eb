// Package logger is a thin zerolog wrapper.
// Every line carries the app tag (s) and the module name (m).
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var pid = os.Getpid()

type Logger struct {
	logger *zerolog.Logger
}

type Options struct {
	Debug bool
	// Tag is the name of the app shown in every line.
	Tag string
	// Json writes raw JSON lines instead of the console format.
	Json    bool
	NoColor bool
	// Out is stdout when nil.
	Out io.Writer
}

// New creates a root logger.
func New(opts Options) *Logger {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if !opts.Json {
		out = console(out, opts.NoColor)
	}
	logger := zerolog.New(out).With().
		Str("pid", fmt.Sprintf("%4x", pid)).
		Str("s", opts.Tag).
		Str("m", "").
		Timestamp().Logger()
	return &Logger{logger: &logger}
}

func console(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.0000", NoColor: noColor,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			"pid",
			zerolog.LevelFieldName,
			"s",
			"m",
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{"s", "m", "pid"},
	}
	if noColor {
		w.FormatMessage = func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%v", i)
		}
	}
	return w
}

func Default() *Logger { return &Logger{logger: &log.Logger} }

// Nop returns a disabled logger.
func Nop() *Logger { l := zerolog.Nop(); return &Logger{logger: &l} }

func (l *Logger) With() zerolog.Context { return l.logger.With() }

// Debug starts a new message with debug level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

// Fatal calls os.Exit(1) after the message is sent.
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }

// Extend makes a child logger with the context.
func (l *Logger) Extend(ctx zerolog.Context) *Logger {
	logger := ctx.Logger()
	return &Logger{logger: &logger}
}

// Module returns a child logger tagged with the module name m.
func (l *Logger) Module(m string) *Logger { return l.Extend(l.With().Str("m", m)) }
