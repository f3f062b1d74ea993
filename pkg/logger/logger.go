// Package logger is a thin structured-logging facade over zerolog. Calls take
// a message followed by alternating key/value pairs.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/luxfi/broadcast/pkg/utils"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// Init configures the global logger. Production writes JSON to stderr; every
// other environment gets the console writer.
func Init(environment string, debug bool) {
	var out io.Writer = os.Stderr
	if environment != "production" {
		out = utils.ZerologConsoleWriter()
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	mu.Lock()
	log = zerolog.New(out).With().Timestamp().Str("env", environment).Logger().Level(level)
	mu.Unlock()
}

// SetOutput redirects the logger, keeping its level.
func SetOutput(w io.Writer) {
	mu.Lock()
	log = log.Output(w)
	mu.Unlock()
}

// SetLevel parses a zerolog level name (debug, info, warn, error).
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	mu.Lock()
	log = log.Level(lvl)
	mu.Unlock()
	return nil
}

func current() *zerolog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	return &l
}

func withFields(e *zerolog.Event, keysAndValues []any) *zerolog.Event {
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 >= len(keysAndValues) {
			e = e.Interface(key, nil)
			break
		}
		switch v := keysAndValues[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case fmt.Stringer:
			e = e.Stringer(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

func Debug(msg string, keysAndValues ...any) {
	withFields(current().Debug(), keysAndValues).Msg(msg)
}

func Info(msg string, keysAndValues ...any) {
	withFields(current().Info(), keysAndValues).Msg(msg)
}

func Warn(msg string, keysAndValues ...any) {
	withFields(current().Warn(), keysAndValues).Msg(msg)
}

// Error logs msg with err attached. err may be nil.
func Error(msg string, err error, keysAndValues ...any) {
	withFields(current().Error().Err(err), keysAndValues).Msg(msg)
}

// Fatal logs and exits the process with status 1.
func Fatal(msg string, err error, keysAndValues ...any) {
	withFields(current().Fatal().Err(err), keysAndValues).Msg(msg)
}
